package booking

import (
	"context"

	"github.com/bissquit/hotel-booking/internal/domain"
)

// Repository owns the collection of bookings.
//
// Insert must reject a booking whose confirmation code is already stored
// (ErrDuplicateConfirmationCode) or whose room has an overlapping stay
// (ErrRoomNotAvailable), atomically with respect to concurrent inserts.
type Repository interface {
	Insert(ctx context.Context, b *domain.Booking) error
	FindByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	Remove(ctx context.Context, id string) (bool, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	BookedRoomIDs(ctx context.Context, checkIn, checkOut domain.Date) ([]string, error)
}
