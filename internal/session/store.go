// Package session holds the client-side authentication state and persists it
// across restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/kvstore"
)

// Persistence keys.
const (
	UserKey  = "user"
	TokenKey = "token"
)

// Store is the current session of a client. Persistence failures are logged
// and otherwise ignored: the in-memory state stays authoritative for the
// current run.
type Store struct {
	storage kvstore.Store
	logger  *slog.Logger

	mu      sync.RWMutex
	session domain.Session
}

// New creates a store and restores the session persisted in storage.
func New(ctx context.Context, storage kvstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		storage: storage,
		logger:  logger,
	}
	s.session = s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) domain.Session {
	rawUser, userErr := s.storage.Get(ctx, UserKey)
	rawToken, tokenErr := s.storage.Get(ctx, TokenKey)

	if errors.Is(userErr, kvstore.ErrKeyNotFound) && errors.Is(tokenErr, kvstore.ErrKeyNotFound) {
		return domain.Session{}
	}
	if userErr != nil || tokenErr != nil {
		s.logger.Warn("persisted session is incomplete, starting signed out",
			"user_error", userErr,
			"token_error", tokenErr,
		)
		return domain.Session{}
	}

	var identity domain.Identity
	if err := json.Unmarshal(rawUser, &identity); err != nil || !identity.IsAuthenticated() || len(rawToken) == 0 {
		s.logger.Warn("persisted session is invalid, starting signed out", "error", err)
		return domain.Session{}
	}

	return domain.Session{Identity: &identity, Token: string(rawToken)}
}

// Login replaces the current session with identity and token. An identity
// without an ID or an empty token signs the client out instead, so a token is
// held exactly when an identity is.
func (s *Store) Login(ctx context.Context, identity domain.Identity, token string) {
	if !identity.IsAuthenticated() || token == "" {
		s.logger.Warn("login without identity or token, signing out",
			"has_identity", identity.IsAuthenticated(),
			"has_token", token != "",
		)
		s.Logout(ctx)
		return
	}

	s.mu.Lock()
	id := identity
	s.session = domain.Session{Identity: &id, Token: token}
	s.mu.Unlock()

	raw, err := json.Marshal(identity)
	if err != nil {
		s.logger.Warn("failed to encode session identity", "error", err)
		return
	}
	if err := s.storage.Set(ctx, UserKey, raw); err != nil {
		s.logger.Warn("failed to persist session identity", "error", err)
	}
	if err := s.storage.Set(ctx, TokenKey, []byte(token)); err != nil {
		s.logger.Warn("failed to persist session token", "error", err)
	}
}

// Logout clears the current session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, TokenKey); err != nil {
		s.logger.Warn("failed to remove persisted token", "error", err)
	}
	if err := s.storage.Delete(ctx, UserKey); err != nil {
		s.logger.Warn("failed to remove persisted identity", "error", err)
	}
}

// Current returns a copy of the current session.
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := domain.Session{Token: s.session.Token}
	if s.session.Identity != nil {
		id := *s.session.Identity
		out.Identity = &id
	}
	return out
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated()
}
