// Package postgres provides PostgreSQL implementation of the booking repository.
package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bissquit/hotel-booking/internal/booking"
	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements booking.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `id, confirmation_code, room_id, user_id, check_in_date, check_out_date,
	num_adults, num_children, total_guests, created_at`

func scanBooking(row pgx.Row, b *domain.Booking) error {
	return row.Scan(
		&b.ID,
		&b.ConfirmationCode,
		&b.RoomID,
		&b.UserID,
		&b.CheckIn.Time,
		&b.CheckOut.Time,
		&b.NumAdults,
		&b.NumChildren,
		&b.TotalGuests,
		&b.CreatedAt,
	)
}

// Insert stores a booking. The room row is locked for the duration of the
// overlap check so concurrent inserts for one room are serialized.
func (r *Repository) Insert(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return postgres.WrapError("begin transaction", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	var roomID string
	err = tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, b.RoomID).Scan(&roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || postgres.HasErrorCode(err, postgres.CodeInvalidTextRepresentation, "") {
			return booking.ErrRoomGone
		}
		return postgres.WrapError("lock room", err)
	}

	var overlapping bool
	overlapQuery := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1 AND check_in_date <= $3 AND check_out_date >= $2
		)
	`
	if err := tx.QueryRow(ctx, overlapQuery, b.RoomID, b.CheckIn.Time, b.CheckOut.Time).Scan(&overlapping); err != nil {
		return postgres.WrapError("check room availability", err)
	}
	if overlapping {
		return booking.ErrRoomNotAvailable
	}

	insertQuery := `
		INSERT INTO bookings (
			id, confirmation_code, room_id, user_id, check_in_date, check_out_date,
			num_adults, num_children, total_guests, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, insertQuery,
		b.ID,
		b.ConfirmationCode,
		b.RoomID,
		b.UserID,
		b.CheckIn.Time,
		b.CheckOut.Time,
		b.NumAdults,
		b.NumChildren,
		b.TotalGuests,
		b.CreatedAt,
	)
	if err != nil {
		if postgres.HasErrorCode(err, postgres.CodeUniqueViolation, "bookings_confirmation_code_key") {
			return booking.ErrDuplicateConfirmationCode
		}
		return postgres.WrapError("insert booking", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return postgres.WrapError("commit transaction", err)
	}
	return nil
}

// FindByUser returns the bookings owned by userID.
func (r *Repository) FindByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		if postgres.HasErrorCode(err, postgres.CodeInvalidTextRepresentation, "") {
			return []domain.Booking{}, nil
		}
		return nil, postgres.WrapError("find bookings by user", err)
	}
	return collectBookings(rows)
}

// FindByID returns the booking with id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.findOne(ctx, "find booking", `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// FindByConfirmationCode returns the booking issued with code.
func (r *Repository) FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	return r.findOne(ctx, "find booking by code", `SELECT `+bookingColumns+` FROM bookings WHERE confirmation_code = $1`, code)
}

func (r *Repository) findOne(ctx context.Context, op, query string, arg string) (*domain.Booking, error) {
	var b domain.Booking
	if err := scanBooking(r.db.QueryRow(ctx, query, arg), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || postgres.HasErrorCode(err, postgres.CodeInvalidTextRepresentation, "") {
			return nil, booking.ErrBookingNotFound
		}
		return nil, postgres.WrapError(op, err)
	}
	return &b, nil
}

// ListAll returns every booking.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings`)
	if err != nil {
		return nil, postgres.WrapError("list bookings", err)
	}
	return collectBookings(rows)
}

// Remove deletes the booking with id and reports whether it existed.
func (r *Repository) Remove(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		if postgres.HasErrorCode(err, postgres.CodeInvalidTextRepresentation, "") {
			return false, nil
		}
		return false, postgres.WrapError("remove booking", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CodeExists reports whether code has already been issued.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE confirmation_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, postgres.WrapError("check confirmation code", err)
	}
	return exists, nil
}

// BookedRoomIDs returns the rooms with a booking overlapping the stay.
func (r *Repository) BookedRoomIDs(ctx context.Context, checkIn, checkOut domain.Date) ([]string, error) {
	query := `
		SELECT DISTINCT room_id::text FROM bookings
		WHERE check_in_date <= $2 AND check_out_date >= $1
		ORDER BY 1
	`
	rows, err := r.db.Query(ctx, query, checkIn.Time, checkOut.Time)
	if err != nil {
		return nil, postgres.WrapError("find booked rooms", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.WrapError("collect booked rooms", err)
	}
	return ids, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, postgres.WrapError("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.WrapError("iterate bookings", err)
	}
	return bookings, nil
}
