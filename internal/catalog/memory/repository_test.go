package memory

import (
	"context"
	"testing"

	"github.com/bissquit/hotel-booking/internal/catalog"
	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SeedRooms(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewRepository(SeedRooms()...)

	// Act
	rooms, err := repo.ListRooms(ctx)
	require.NoError(t, err)
	types, err := repo.ListRoomTypes(ctx)

	// Assert
	require.NoError(t, err)
	assert.Len(t, rooms, 5)
	assert.Equal(t, []string{"Double", "Family", "Single", "Suite"}, types)
}

func TestRepository_CreateUpdateDelete(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewRepository()
	room := &domain.Room{Type: "Suite", PricePerNight: 25000}

	// Act
	require.NoError(t, repo.CreateRoom(ctx, room))
	room.PricePerNight = 20000
	require.NoError(t, repo.UpdateRoom(ctx, room))

	// Assert
	stored, err := repo.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Money(20000), stored.PricePerNight)

	require.NoError(t, repo.DeleteRoom(ctx, room.ID))
	_, err = repo.GetRoom(ctx, room.ID)
	assert.ErrorIs(t, err, catalog.ErrRoomNotFound)
	assert.ErrorIs(t, repo.DeleteRoom(ctx, room.ID), catalog.ErrRoomNotFound)
	assert.ErrorIs(t, repo.UpdateRoom(ctx, room), catalog.ErrRoomNotFound)
}

func TestRepository_GuardDelete(t *testing.T) {
	tests := []struct {
		name    string
		guard   RemovalGuardFunc
		wantErr error
	}{
		{
			name:    "room with bookings is kept",
			guard:   func(context.Context, string, func() error) (bool, error) { return true, nil },
			wantErr: catalog.ErrRoomHasBookings,
		},
		{
			name:    "guard failure is returned",
			guard:   func(context.Context, string, func() error) (bool, error) { return false, domain.ErrTimeout },
			wantErr: domain.ErrTimeout,
		},
		{
			name:  "free room is deleted",
			guard: func(_ context.Context, _ string, remove func() error) (bool, error) { return false, remove() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			repo := NewRepository(domain.Room{ID: "room-1", Type: "Single"})
			repo.GuardDelete(tt.guard)

			// Act
			err := repo.DeleteRoom(ctx, "room-1")

			// Assert
			exists, existsErr := repo.HasRoom(ctx, "room-1")
			require.NoError(t, existsErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, exists)
				return
			}
			assert.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestRepository_GuardDeleteMissingRoom(t *testing.T) {
	repo := NewRepository()
	repo.GuardDelete(func(_ context.Context, _ string, remove func() error) (bool, error) { return false, remove() })

	err := repo.DeleteRoom(context.Background(), "room-1")

	assert.ErrorIs(t, err, catalog.ErrRoomNotFound)
}
