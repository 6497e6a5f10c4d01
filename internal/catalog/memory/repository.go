// Package memory provides an in-memory room catalog seeded with mock rooms.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bissquit/hotel-booking/internal/catalog"
	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/google/uuid"
)

// RemovalGuardFunc calls remove unless roomID is still referenced by bookings
// and reports whether it was.
type RemovalGuardFunc func(ctx context.Context, roomID string, remove func() error) (bool, error)

// Repository implements catalog.Repository in process memory.
type Repository struct {
	mu    sync.RWMutex
	rooms map[string]domain.Room
	order []string
	now   func() time.Time

	guard RemovalGuardFunc
}

// NewRepository creates a repository holding rooms.
func NewRepository(rooms ...domain.Room) *Repository {
	r := &Repository{
		rooms: make(map[string]domain.Room, len(rooms)),
		now:   time.Now,
	}
	for _, room := range rooms {
		if room.ID == "" {
			room.ID = uuid.NewString()
		}
		r.rooms[room.ID] = room
		r.order = append(r.order, room.ID)
	}
	return r
}

// SeedRooms returns the mock catalog used by the memory storage driver.
func SeedRooms() []domain.Room {
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Room{
		{
			ID:            "8f14e45f-ceea-4c1e-9b5a-0d4a6b1f0001",
			Type:          "Single",
			PricePerNight: 8000,
			Description:   "Compact room with a single bed and a desk.",
			PhotoURL:      "https://images.example.com/rooms/single.jpg",
			CreatedAt:     created,
			UpdatedAt:     created,
		},
		{
			ID:            "8f14e45f-ceea-4c1e-9b5a-0d4a6b1f0002",
			Type:          "Double",
			PricePerNight: 12000,
			Description:   "Double bed, city view.",
			PhotoURL:      "https://images.example.com/rooms/double.jpg",
			CreatedAt:     created,
			UpdatedAt:     created,
		},
		{
			ID:            "8f14e45f-ceea-4c1e-9b5a-0d4a6b1f0003",
			Type:          "Double",
			PricePerNight: 13500,
			Description:   "Double bed, balcony facing the garden.",
			PhotoURL:      "https://images.example.com/rooms/double-balcony.jpg",
			CreatedAt:     created,
			UpdatedAt:     created,
		},
		{
			ID:            "8f14e45f-ceea-4c1e-9b5a-0d4a6b1f0004",
			Type:          "Suite",
			PricePerNight: 25000,
			Description:   "Separate living area and a king-size bed.",
			PhotoURL:      "https://images.example.com/rooms/suite.jpg",
			CreatedAt:     created,
			UpdatedAt:     created,
		},
		{
			ID:            "8f14e45f-ceea-4c1e-9b5a-0d4a6b1f0005",
			Type:          "Family",
			PricePerNight: 18000,
			Description:   "Two double beds for up to four guests.",
			PhotoURL:      "https://images.example.com/rooms/family.jpg",
			CreatedAt:     created,
			UpdatedAt:     created,
		},
	}
}

// CreateRoom stores a new room and assigns its ID and timestamps.
func (r *Repository) CreateRoom(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	room.ID = uuid.NewString()
	room.CreatedAt = now
	room.UpdatedAt = now

	r.rooms[room.ID] = *room
	r.order = append(r.order, room.ID)
	return nil
}

// GetRoom returns a copy of the room with id.
func (r *Repository) GetRoom(_ context.Context, id string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, catalog.ErrRoomNotFound
	}
	return &room, nil
}

// ListRooms returns rooms in insertion order.
func (r *Repository) ListRooms(_ context.Context) ([]domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]domain.Room, 0, len(r.order))
	for _, id := range r.order {
		rooms = append(rooms, r.rooms[id])
	}
	return rooms, nil
}

// ListRoomTypes returns the distinct room types, sorted.
func (r *Repository) ListRoomTypes(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, room := range r.rooms {
		if _, ok := seen[room.Type]; ok {
			continue
		}
		seen[room.Type] = struct{}{}
		types = append(types, room.Type)
	}
	sort.Strings(types)
	return types, nil
}

// UpdateRoom replaces a stored room.
func (r *Repository) UpdateRoom(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room.ID]; !ok {
		return catalog.ErrRoomNotFound
	}
	room.UpdatedAt = r.now().UTC()
	r.rooms[room.ID] = *room
	return nil
}

// GuardDelete routes DeleteRoom through fn.
func (r *Repository) GuardDelete(fn RemovalGuardFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guard = fn
}

// HasRoom reports whether a room with id exists.
func (r *Repository) HasRoom(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[id]
	return ok, nil
}

// DeleteRoom removes a room. Rooms still referenced by bookings are kept and
// catalog.ErrRoomHasBookings is returned.
func (r *Repository) DeleteRoom(ctx context.Context, id string) error {
	r.mu.RLock()
	guard := r.guard
	r.mu.RUnlock()

	if guard == nil {
		return r.remove(id)
	}

	booked, err := guard(ctx, id, func() error { return r.remove(id) })
	if err != nil {
		return err
	}
	if booked {
		return catalog.ErrRoomHasBookings
	}
	return nil
}

func (r *Repository) remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return catalog.ErrRoomNotFound
	}
	delete(r.rooms, id)
	for i, rid := range r.order {
		if rid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
