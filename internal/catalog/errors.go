package catalog

import (
	"fmt"

	"github.com/bissquit/hotel-booking/internal/domain"
)

// Catalog errors.
var (
	ErrRoomNotFound    = fmt.Errorf("%w: room not found", domain.ErrNotFound)
	ErrInvalidRoomType = fmt.Errorf("%w: room type is required", domain.ErrValidation)
	ErrRoomHasBookings = fmt.Errorf("%w: room has active bookings", domain.ErrConflict)
)
