package booking

import (
	"fmt"

	"github.com/bissquit/hotel-booking/internal/domain"
)

// Validation errors.
var (
	ErrMissingDates            = domain.ErrMissingDates
	ErrInvalidDateRange        = domain.ErrInvalidDateRange
	ErrMissingRoom             = fmt.Errorf("%w: room is required", domain.ErrValidation)
	ErrInvalidAdults           = fmt.Errorf("%w: at least one adult is required", domain.ErrValidation)
	ErrInvalidChildren         = fmt.Errorf("%w: number of children cannot be negative", domain.ErrValidation)
	ErrInvalidConfirmationCode = fmt.Errorf("%w: confirmation code must look like BOOK-XXXXXXXX", domain.ErrValidation)
	ErrMissingUserID           = fmt.Errorf("%w: user id is required", domain.ErrValidation)
)

// Access errors.
var (
	ErrUnauthenticated = fmt.Errorf("%w: authentication required", domain.ErrAuth)
	ErrForbidden       = fmt.Errorf("%w: only the booking owner or an admin may access this booking", domain.ErrForbidden)
	ErrAdminOnly       = fmt.Errorf("%w: admin role required", domain.ErrForbidden)
)

// Repository errors.
var (
	ErrBookingNotFound           = fmt.Errorf("%w: booking not found", domain.ErrNotFound)
	ErrRoomGone                  = fmt.Errorf("%w: room no longer exists", domain.ErrNotFound)
	ErrRoomNotAvailable          = fmt.Errorf("%w: room is already booked for the selected dates", domain.ErrConflict)
	ErrDuplicateConfirmationCode = fmt.Errorf("%w: confirmation code already issued", domain.ErrConflict)
	ErrConfirmationCodeExhausted = fmt.Errorf("%w: could not issue a unique confirmation code", domain.ErrRepository)
)
