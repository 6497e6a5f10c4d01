// Package postgres provides PostgreSQL implementation of the catalog repository.
package postgres

import (
	"context"
	"errors"

	"github.com/bissquit/hotel-booking/internal/catalog"
	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the catalog.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Prices are stored as numeric(10,2) and moved as integer cents.
const roomColumns = `id, room_type, (price_per_night * 100)::bigint, description, photo_url, created_at, updated_at`

func scanRoom(row pgx.Row, room *domain.Room) error {
	var cents int64
	err := row.Scan(
		&room.ID,
		&room.Type,
		&cents,
		&room.Description,
		&room.PhotoURL,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	room.PricePerNight = domain.Money(cents)
	return err
}

// CreateRoom inserts a new room.
func (r *Repository) CreateRoom(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (room_type, price_per_night, description, photo_url)
		VALUES ($1, $2::numeric / 100, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		room.Type,
		int64(room.PricePerNight),
		room.Description,
		room.PhotoURL,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return postgres.WrapError("create room", err)
	}
	return nil
}

// GetRoom retrieves a room by its ID.
func (r *Repository) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	var room domain.Room
	if err := scanRoom(r.db.QueryRow(ctx, query, id), &room); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrRoomNotFound
		}
		if postgres.HasErrorCode(err, postgres.CodeInvalidTextRepresentation, "") {
			return nil, catalog.ErrRoomNotFound
		}
		return nil, postgres.WrapError("get room", err)
	}
	return &room, nil
}

// ListRooms retrieves all rooms ordered by type and price.
func (r *Repository) ListRooms(ctx context.Context) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY room_type, price_per_night, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, postgres.WrapError("list rooms", err)
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0)
	for rows.Next() {
		var room domain.Room
		if err := scanRoom(rows, &room); err != nil {
			return nil, postgres.WrapError("scan room", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.WrapError("iterate rooms", err)
	}
	return rooms, nil
}

// ListRoomTypes returns the distinct room types, sorted.
func (r *Repository) ListRoomTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT room_type FROM rooms ORDER BY room_type`)
	if err != nil {
		return nil, postgres.WrapError("list room types", err)
	}
	defer rows.Close()

	types, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.WrapError("collect room types", err)
	}
	return types, nil
}

// UpdateRoom updates an existing room.
func (r *Repository) UpdateRoom(ctx context.Context, room *domain.Room) error {
	query := `
		UPDATE rooms
		SET room_type = $2, price_per_night = $3::numeric / 100, description = $4, photo_url = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		room.ID,
		room.Type,
		int64(room.PricePerNight),
		room.Description,
		room.PhotoURL,
	).Scan(&room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.ErrRoomNotFound
		}
		return postgres.WrapError("update room", err)
	}
	return nil
}

// DeleteRoom removes a room. Rooms referenced by bookings cannot be deleted.
func (r *Repository) DeleteRoom(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		if postgres.HasErrorCode(err, postgres.CodeForeignKeyViolation, "") {
			return catalog.ErrRoomHasBookings
		}
		if postgres.HasErrorCode(err, postgres.CodeInvalidTextRepresentation, "") {
			return catalog.ErrRoomNotFound
		}
		return postgres.WrapError("delete room", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrRoomNotFound
	}
	return nil
}
