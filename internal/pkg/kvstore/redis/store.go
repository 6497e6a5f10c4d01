// Package redis provides a Redis implementation of kvstore.Store.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/hotel-booking/internal/pkg/kvstore"
	goredis "github.com/redis/go-redis/v9"
)

// Store keeps values as plain Redis strings under a common key prefix.
type Store struct {
	rc     *goredis.Client
	prefix string
}

// NewStore creates a store on top of an existing client.
func NewStore(rc *goredis.Client, prefix string) *Store {
	return &Store{rc: rc, prefix: prefix}
}

// Connect parses a redis:// URL, pings the server and returns a store.
func Connect(ctx context.Context, url, prefix string) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rc := goredis.NewClient(opts)
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewStore(rc, prefix), nil
}

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rc.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, kvstore.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key without expiration.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rc.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.rc.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.rc.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.rc.Close()
}
