package app

import (
	"context"
	"fmt"

	"github.com/bissquit/hotel-booking/internal/booking"
	bookingmemory "github.com/bissquit/hotel-booking/internal/booking/memory"
	bookingpostgres "github.com/bissquit/hotel-booking/internal/booking/postgres"
	"github.com/bissquit/hotel-booking/internal/catalog"
	catalogmemory "github.com/bissquit/hotel-booking/internal/catalog/memory"
	catalogpostgres "github.com/bissquit/hotel-booking/internal/catalog/postgres"
	"github.com/bissquit/hotel-booking/internal/config"
	"github.com/bissquit/hotel-booking/internal/identity"
	identitymemory "github.com/bissquit/hotel-booking/internal/identity/memory"
	identitypostgres "github.com/bissquit/hotel-booking/internal/identity/postgres"
	"github.com/bissquit/hotel-booking/internal/pkg/kvstore"
	kvredis "github.com/bissquit/hotel-booking/internal/pkg/kvstore/redis"
	"github.com/bissquit/hotel-booking/internal/pkg/postgres"
	"github.com/bissquit/hotel-booking/migrations"
)

// repositories groups the storage-backed collaborators of the services.
type repositories struct {
	users    identity.Repository
	rooms    catalog.Repository
	bookings booking.Repository
}

// healthCheck reports whether a backing store is reachable.
type healthCheck func(ctx context.Context) error

func (a *App) setupStorage(ctx context.Context) (*repositories, error) {
	switch a.config.Storage.Driver {
	case config.DriverMemory:
		return a.setupMemoryStorage(ctx)
	default:
		return a.setupPostgresStorage(ctx)
	}
}

func (a *App) setupPostgresStorage(ctx context.Context) (*repositories, error) {
	cfg := a.config.Database

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.URL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnectAttempts: cfg.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(cfg.URL, migrations.FS); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	a.db = db
	a.readiness["database"] = db.Ping
	a.closers = append(a.closers, func() error {
		db.Close()
		return nil
	})

	return &repositories{
		users:    identitypostgres.NewRepository(db),
		rooms:    catalogpostgres.NewRepository(db),
		bookings: bookingpostgres.NewRepository(db),
	}, nil
}

func (a *App) setupMemoryStorage(ctx context.Context) (*repositories, error) {
	storage, err := a.openKV(ctx)
	if err != nil {
		return nil, err
	}

	bookings, err := bookingmemory.NewRepository(ctx, storage)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	a.logger.Info("memory storage ready",
		"kv", a.config.Storage.KV,
		"bookings", bookings.Len(),
	)

	users := identitymemory.NewRepository()
	users.OnUserRemoved(func(ctx context.Context, userID string) {
		removed, err := bookings.RemoveByUser(ctx, userID)
		if err != nil {
			a.logger.Error("failed to remove bookings of deleted user", "user_id", userID, "error", err)
			return
		}
		a.logger.Info("removed bookings of deleted user", "user_id", userID, "count", removed)
	})

	rooms := catalogmemory.NewRepository(catalogmemory.SeedRooms()...)
	rooms.GuardDelete(bookings.RemoveRoomUnlessBooked)
	bookings.CheckRooms(rooms.HasRoom)

	return &repositories{
		users:    users,
		rooms:    rooms,
		bookings: bookings,
	}, nil
}

func (a *App) openKV(ctx context.Context) (kvstore.Store, error) {
	cfg := a.config.Storage

	switch cfg.KV {
	case config.KVRedis:
		store, err := kvredis.Connect(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.readiness["redis"] = store.Ping
		a.closers = append(a.closers, store.Close)
		return store, nil
	case config.KVFile:
		return kvstore.NewFile(cfg.FilePath), nil
	default:
		return kvstore.NewMemory(), nil
	}
}
