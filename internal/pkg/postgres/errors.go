package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes used by repositories.
const (
	CodeUniqueViolation           = "23505"
	CodeForeignKeyViolation       = "23503"
	CodeInvalidTextRepresentation = "22P02"
)

// WrapError annotates a database error with op and its error kind:
// domain.ErrTimeout for deadline overruns, domain.ErrRepository otherwise.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRepository, err)
}

// HasErrorCode reports whether err is a PostgreSQL error with code,
// optionally restricted to a named constraint.
func HasErrorCode(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
