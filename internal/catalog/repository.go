package catalog

import (
	"context"

	"github.com/bissquit/hotel-booking/internal/domain"
)

// Repository defines the interface for room catalog data operations.
type Repository interface {
	CreateRoom(ctx context.Context, room *domain.Room) error
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	ListRoomTypes(ctx context.Context) ([]string, error)
	UpdateRoom(ctx context.Context, room *domain.Room) error
	DeleteRoom(ctx context.Context, id string) error
}

// OccupancyReader reports which rooms are taken during a stay.
type OccupancyReader interface {
	BookedRoomIDs(ctx context.Context, checkIn, checkOut domain.Date) ([]string, error)
}
