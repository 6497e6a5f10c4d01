// Package memory provides an in-memory user repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/identity"
	"github.com/google/uuid"
)

// UserRemovedFunc is called after a user is deleted.
type UserRemovedFunc func(ctx context.Context, userID string)

// Repository implements identity.Repository in process memory.
type Repository struct {
	mu    sync.RWMutex
	users map[string]domain.User
	now   func() time.Time

	onRemove UserRemovedFunc
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		users: make(map[string]domain.User),
		now:   time.Now,
	}
}

// OnUserRemoved registers fn to run after DeleteUser succeeds.
func (r *Repository) OnUserRemoved(fn UserRemovedFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRemove = fn
}

// CreateUser stores a user and assigns its ID.
func (r *Repository) CreateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return identity.ErrEmailExists
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.now().UTC()
	r.users[user.ID] = *user
	return nil
}

// GetUserByID returns a copy of the user with id.
func (r *Repository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return &u, nil
}

// GetUserByEmail returns a copy of the user registered with email.
func (r *Repository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

// ListUsers returns users ordered by creation time.
func (r *Repository) ListUsers(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].Email < users[j].Email
	})
	return users, nil
}

// UpdateUser replaces a stored user.
func (r *Repository) UpdateUser(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return identity.ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

// DeleteUser removes a user.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.users[id]; !ok {
		r.mu.Unlock()
		return identity.ErrUserNotFound
	}
	delete(r.users, id)
	onRemove := r.onRemove
	r.mu.Unlock()

	if onRemove != nil {
		onRemove(ctx, id)
	}
	return nil
}
