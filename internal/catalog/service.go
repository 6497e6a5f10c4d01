// Package catalog provides HTTP handlers and business logic for the room catalog.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/bissquit/hotel-booking/internal/domain"
)

// Service implements room catalog business logic.
type Service struct {
	repo      Repository
	occupancy OccupancyReader
}

// NewService creates a new catalog service. occupancy may be nil, in which
// case every room counts as free.
func NewService(repo Repository, occupancy OccupancyReader) *Service {
	return &Service{
		repo:      repo,
		occupancy: occupancy,
	}
}

// CreateRoomInput holds data for creating a room.
type CreateRoomInput struct {
	Type          string
	PricePerNight domain.Money
	Description   string
	PhotoURL      string
}

// UpdateRoomInput holds a partial room update. Nil fields are left unchanged.
type UpdateRoomInput struct {
	Type          *string
	PricePerNight *domain.Money
	Description   *string
	PhotoURL      *string
}

// ListRooms returns every room of the catalog.
func (s *Service) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.repo.ListRooms(ctx)
}

// GetRoom returns a room by ID.
func (s *Service) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

// ListRoomTypes returns the distinct room types, sorted.
func (s *Service) ListRoomTypes(ctx context.Context) ([]string, error) {
	return s.repo.ListRoomTypes(ctx)
}

// ListAvailableRooms returns rooms of roomType that have no booking
// overlapping [checkIn, checkOut]. An empty roomType means any type.
func (s *Service) ListAvailableRooms(ctx context.Context, roomType string, checkIn, checkOut domain.Date) ([]domain.Room, error) {
	if err := domain.ValidateStay(checkIn, checkOut); err != nil {
		return nil, err
	}

	rooms, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	if s.occupancy != nil {
		booked, err := s.occupancy.BookedRoomIDs(ctx, checkIn, checkOut)
		if err != nil {
			return nil, fmt.Errorf("get booked rooms: %w", err)
		}
		rooms = withoutRooms(rooms, booked)
	}

	return FilterRooms(rooms, roomType, checkIn, checkOut)
}

func withoutRooms(rooms []domain.Room, ids []string) []domain.Room {
	if len(ids) == 0 {
		return rooms
	}

	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}

	free := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if _, taken := skip[room.ID]; !taken {
			free = append(free, room)
		}
	}
	return free
}

// CreateRoom validates and stores a new room.
func (s *Service) CreateRoom(ctx context.Context, input CreateRoomInput) (*domain.Room, error) {
	roomType := NormalizeRoomType(input.Type)
	if roomType == "" {
		return nil, ErrInvalidRoomType
	}
	if input.PricePerNight <= 0 {
		return nil, fmt.Errorf("%w: price per night must be positive", domain.ErrValidation)
	}

	room := &domain.Room{
		Type:          roomType,
		PricePerNight: input.PricePerNight,
		Description:   strings.TrimSpace(input.Description),
		PhotoURL:      strings.TrimSpace(input.PhotoURL),
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateRoom applies a partial update to a room.
func (s *Service) UpdateRoom(ctx context.Context, id string, input UpdateRoomInput) (*domain.Room, error) {
	room, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Type != nil {
		roomType := NormalizeRoomType(*input.Type)
		if roomType == "" {
			return nil, ErrInvalidRoomType
		}
		room.Type = roomType
	}
	if input.PricePerNight != nil {
		if *input.PricePerNight <= 0 {
			return nil, fmt.Errorf("%w: price per night must be positive", domain.ErrValidation)
		}
		room.PricePerNight = *input.PricePerNight
	}
	if input.Description != nil {
		room.Description = strings.TrimSpace(*input.Description)
	}
	if input.PhotoURL != nil {
		room.PhotoURL = strings.TrimSpace(*input.PhotoURL)
	}

	if err := s.repo.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom removes a room.
func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	return s.repo.DeleteRoom(ctx, id)
}
