// Package memory provides an in-memory booking repository persisted as a
// single JSON document in a key-value store.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bissquit/hotel-booking/internal/booking"
	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/kvstore"
)

// BookingsKey is the storage key holding the bookings document.
const BookingsKey = "bookings"

// RoomExistsFunc reports whether a room is still in the catalog.
type RoomExistsFunc func(ctx context.Context, roomID string) (bool, error)

// Repository implements booking.Repository. Every mutation is written through
// to storage before it becomes visible.
//
// Room checks run under the repository lock, so callers pairing it with a
// catalog must take this lock before the catalog's.
type Repository struct {
	storage kvstore.Store

	mu         sync.RWMutex
	bookings   []domain.Booking
	roomExists RoomExistsFunc
}

// NewRepository loads persisted bookings from storage. A nil storage keeps
// bookings in process memory only.
func NewRepository(ctx context.Context, storage kvstore.Store) (*Repository, error) {
	if storage == nil {
		storage = kvstore.NewMemory()
	}

	r := &Repository{storage: storage}

	raw, err := storage.Get(ctx, BookingsKey)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w: %w", domain.ErrRepository, err)
	}
	if err := json.Unmarshal(raw, &r.bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w: %w", domain.ErrRepository, err)
	}
	return r, nil
}

// Len returns the number of stored bookings.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bookings)
}

// CheckRooms makes Insert refuse bookings for rooms fn does not know.
func (r *Repository) CheckRooms(fn RoomExistsFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roomExists = fn
}

// Insert stores b if its room exists, its code is unused and its room is free
// for the stay.
func (r *Repository) Insert(ctx context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roomExists != nil {
		exists, err := r.roomExists(ctx, b.RoomID)
		if err != nil {
			return err
		}
		if !exists {
			return booking.ErrRoomGone
		}
	}

	for i := range r.bookings {
		existing := &r.bookings[i]
		if existing.ConfirmationCode == b.ConfirmationCode {
			return booking.ErrDuplicateConfirmationCode
		}
		if existing.RoomID == b.RoomID && existing.Overlaps(b.CheckIn, b.CheckOut) {
			return booking.ErrRoomNotAvailable
		}
	}

	next := append(r.snapshot(), *b)
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.bookings = next
	return nil
}

// FindByUser returns the bookings owned by userID.
func (r *Repository) FindByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	return result, nil
}

// FindByID returns a copy of the booking with id.
func (r *Repository) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

// FindByConfirmationCode returns a copy of the booking issued with code.
func (r *Repository) FindByConfirmationCode(_ context.Context, code string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.ConfirmationCode == code {
			return &b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

// ListAll returns every booking.
func (r *Repository) ListAll(_ context.Context) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(), nil
}

// Remove deletes the booking with id and reports whether it existed.
func (r *Repository) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.bookings {
		if r.bookings[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := make([]domain.Booking, 0, len(r.bookings)-1)
	next = append(next, r.bookings[:idx]...)
	next = append(next, r.bookings[idx+1:]...)
	if err := r.persist(ctx, next); err != nil {
		return false, err
	}
	r.bookings = next
	return true, nil
}

// RemoveByUser deletes every booking owned by userID and returns how many
// were removed.
func (r *Repository) RemoveByUser(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]domain.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		if b.UserID != userID {
			next = append(next, b)
		}
	}
	removed := len(r.bookings) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := r.persist(ctx, next); err != nil {
		return 0, err
	}
	r.bookings = next
	return removed, nil
}

// CodeExists reports whether code has already been issued.
func (r *Repository) CodeExists(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.ConfirmationCode == code {
			return true, nil
		}
	}
	return false, nil
}

// RemoveRoomUnlessBooked calls remove unless a booking references roomID and
// reports whether the room was booked. No booking can be inserted for the room
// while remove runs.
func (r *Repository) RemoveRoomUnlessBooked(_ context.Context, roomID string, remove func() error) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.RoomID == roomID {
			return true, nil
		}
	}
	return false, remove()
}

// BookedRoomIDs returns the rooms with a booking overlapping the stay, sorted.
func (r *Repository) BookedRoomIDs(_ context.Context, checkIn, checkOut domain.Date) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for i := range r.bookings {
		b := &r.bookings[i]
		if !b.Overlaps(checkIn, checkOut) {
			continue
		}
		if _, ok := seen[b.RoomID]; ok {
			continue
		}
		seen[b.RoomID] = struct{}{}
		ids = append(ids, b.RoomID)
	}
	sort.Strings(ids)
	return ids, nil
}

// snapshot must be called with r.mu held.
func (r *Repository) snapshot() []domain.Booking {
	out := make([]domain.Booking, len(r.bookings))
	copy(out, r.bookings)
	return out
}

func (r *Repository) persist(ctx context.Context, bookings []domain.Booking) error {
	raw, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("encode bookings: %w: %w", domain.ErrRepository, err)
	}
	if err := r.storage.Set(ctx, BookingsKey, raw); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("persist bookings: %w: %w", domain.ErrTimeout, err)
		}
		return fmt.Errorf("persist bookings: %w: %w", domain.ErrRepository, err)
	}
	return nil
}
