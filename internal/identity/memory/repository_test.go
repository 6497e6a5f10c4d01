package memory

import (
	"context"
	"testing"
	"time"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateUser(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewRepository()
	user := &domain.User{Email: "guest@example.com", Role: domain.RoleUser}

	// Act
	err := repo.CreateUser(ctx, user)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetUserByEmail(ctx, "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	err = repo.CreateUser(ctx, &domain.User{Email: "guest@example.com"})
	assert.ErrorIs(t, err, identity.ErrEmailExists)
}

func TestRepository_ListUsersOrdered(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewRepository()
	base := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	repo.now = func() time.Time {
		calls++
		return base.Add(time.Duration(-calls) * time.Hour)
	}
	require.NoError(t, repo.CreateUser(ctx, &domain.User{Email: "first@example.com"}))
	require.NoError(t, repo.CreateUser(ctx, &domain.User{Email: "second@example.com"}))

	// Act
	users, err := repo.ListUsers(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "second@example.com", users[0].Email)
	assert.Equal(t, "first@example.com", users[1].Email)
}

func TestRepository_UpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	user := &domain.User{Email: "guest@example.com", Role: domain.RoleUser}
	require.NoError(t, repo.CreateUser(ctx, user))

	user.Role = domain.RoleAdmin
	require.NoError(t, repo.UpdateUser(ctx, user))

	stored, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)

	err = repo.UpdateUser(ctx, &domain.User{ID: "missing"})
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestRepository_DeleteUserRunsHook(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := NewRepository()
	user := &domain.User{Email: "guest@example.com"}
	require.NoError(t, repo.CreateUser(ctx, user))

	var removed []string
	repo.OnUserRemoved(func(_ context.Context, userID string) {
		removed = append(removed, userID)
	})

	// Act
	err := repo.DeleteUser(ctx, user.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{user.ID}, removed)

	_, err = repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	err = repo.DeleteUser(ctx, user.ID)
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
	assert.Len(t, removed, 1)
}
