package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStorage fails every write and finds nothing on read.
type failingStorage struct{}

func (failingStorage) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, kvstore.ErrKeyNotFound
}

func (failingStorage) Set(_ context.Context, _ string, _ []byte) error {
	return errors.New("disk full")
}

func (failingStorage) Delete(_ context.Context, _ string) error {
	return errors.New("disk full")
}

var alice = domain.Identity{
	ID:          "user-1",
	DisplayName: "Alice",
	Email:       "alice@example.com",
	Role:        domain.RoleUser,
}

func TestStore_StartsSignedOut(t *testing.T) {
	store := New(context.Background(), kvstore.NewMemory(), nil)

	assert.False(t, store.IsAuthenticated())
	assert.Nil(t, store.Current().Identity)
	assert.Empty(t, store.Current().Token)
}

func TestStore_LoginLogout(t *testing.T) {
	ctx := context.Background()
	storage := kvstore.NewMemory()
	store := New(ctx, storage, nil)

	store.Login(ctx, alice, "token-1")

	require.True(t, store.IsAuthenticated())
	current := store.Current()
	require.NotNil(t, current.Identity)
	assert.Equal(t, alice, *current.Identity)
	assert.Equal(t, "token-1", current.Token)

	store.Logout(ctx)

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Current().Token)

	_, err := storage.Get(ctx, UserKey)
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
	_, err = storage.Get(ctx, TokenKey)
	assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
}

func TestStore_LoginReplacesSession(t *testing.T) {
	ctx := context.Background()
	store := New(ctx, kvstore.NewMemory(), nil)

	store.Login(ctx, alice, "token-1")
	bob := domain.Identity{ID: "user-2", Email: "bob@example.com", Role: domain.RoleAdmin}
	store.Login(ctx, bob, "token-2")

	current := store.Current()
	assert.Equal(t, bob, *current.Identity)
	assert.Equal(t, "token-2", current.Token)
}

func TestStore_RoundTripThroughFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first := New(ctx, kvstore.NewFile(path), nil)
	first.Login(ctx, alice, "persisted-token")

	restored := New(ctx, kvstore.NewFile(path), nil)

	require.True(t, restored.IsAuthenticated())
	assert.Equal(t, alice, *restored.Current().Identity)
	assert.Equal(t, "persisted-token", restored.Current().Token)
}

func TestStore_LogoutSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	storage := kvstore.NewMemory()

	store := New(ctx, storage, nil)
	store.Login(ctx, alice, "token-1")
	store.Logout(ctx)

	assert.False(t, New(ctx, storage, nil).IsAuthenticated())
}

func TestStore_PartialPersistedStateStartsSignedOut(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ctx context.Context, s kvstore.Store)
	}{
		{
			name: "token without user",
			setup: func(ctx context.Context, s kvstore.Store) {
				_ = s.Set(ctx, TokenKey, []byte("orphan"))
			},
		},
		{
			name: "user without token",
			setup: func(ctx context.Context, s kvstore.Store) {
				_ = s.Set(ctx, UserKey, []byte(`{"id":"user-1"}`))
			},
		},
		{
			name: "undecodable user",
			setup: func(ctx context.Context, s kvstore.Store) {
				_ = s.Set(ctx, UserKey, []byte(`{broken`))
				_ = s.Set(ctx, TokenKey, []byte("token"))
			},
		},
		{
			name: "user without id",
			setup: func(ctx context.Context, s kvstore.Store) {
				_ = s.Set(ctx, UserKey, []byte(`{"email":"x@example.com"}`))
				_ = s.Set(ctx, TokenKey, []byte("token"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := kvstore.NewMemory()
			tt.setup(ctx, storage)

			store := New(ctx, storage, nil)

			assert.False(t, store.IsAuthenticated())
			assert.Empty(t, store.Current().Token)
		})
	}
}

func TestStore_PersistenceFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := New(ctx, failingStorage{}, nil)

	store.Login(ctx, alice, "token-1")
	require.True(t, store.IsAuthenticated())
	assert.Equal(t, "token-1", store.Current().Token)

	store.Logout(ctx)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := New(ctx, kvstore.NewMemory(), nil)
	store.Login(ctx, alice, "token-1")

	current := store.Current()
	current.Identity.DisplayName = "Mallory"

	assert.Equal(t, "Alice", store.Current().Identity.DisplayName)
}

func TestStore_LoginWithoutCredentialsSignsOut(t *testing.T) {
	tests := []struct {
		name     string
		identity domain.Identity
		token    string
	}{
		{name: "empty token", identity: alice, token: ""},
		{name: "identity without id", identity: domain.Identity{Email: "alice@example.com"}, token: "token-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			storage := kvstore.NewMemory()
			store := New(ctx, storage, nil)
			store.Login(ctx, alice, "token-1")

			// Act
			store.Login(ctx, tt.identity, tt.token)

			// Assert
			assert.False(t, store.IsAuthenticated())
			assert.Empty(t, store.Current().Token)

			restored := New(ctx, storage, nil)
			assert.Equal(t, store.Current(), restored.Current())
			_, err := storage.Get(ctx, TokenKey)
			assert.ErrorIs(t, err, kvstore.ErrKeyNotFound)
		})
	}
}
