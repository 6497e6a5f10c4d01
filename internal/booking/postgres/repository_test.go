//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/bissquit/hotel-booking/internal/booking"
	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/postgres"
	"github.com/bissquit/hotel-booking/internal/testutil"
	"github.com/bissquit/hotel-booking/migrations"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doubleRoomID = "8f14e45f-ceea-4c1e-9b5a-0d4a6b1f0002"

func setupRepository(t *testing.T) (*Repository, string) {
	t.Helper()
	ctx := context.Background()

	container, err := testutil.NewPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	require.NoError(t, postgres.Migrate(container.ConnectionString, migrations.FS))

	db, err := pgxpool.New(ctx, container.ConnectionString)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	var userID string
	err = db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role) VALUES ('guest@example.com', 'x', 'USER')
		RETURNING id::text
	`).Scan(&userID)
	require.NoError(t, err)

	return NewRepository(db), userID
}

func newBooking(userID, code string, checkIn domain.Date, nights int) *domain.Booking {
	return &domain.Booking{
		ID:               uuid.NewString(),
		ConfirmationCode: code,
		RoomID:           doubleRoomID,
		UserID:           userID,
		CheckIn:          checkIn,
		CheckOut:         checkIn.AddDays(nights),
		NumAdults:        2,
		TotalGuests:      2,
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestRepository_InsertAndFind(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, userID := setupRepository(t)
	checkIn := domain.NewDate(2030, time.June, 10)
	b := newBooking(userID, "BOOK-AAAA1111", checkIn, 3)

	// Act
	err := repo.Insert(ctx, b)

	// Assert
	require.NoError(t, err)

	found, err := repo.FindByConfirmationCode(ctx, "BOOK-AAAA1111")
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)
	assert.Equal(t, checkIn.String(), found.CheckIn.String())

	exists, err := repo.CodeExists(ctx, "BOOK-AAAA1111")
	require.NoError(t, err)
	assert.True(t, exists)

	mine, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestRepository_InsertRejectsOverlap(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, userID := setupRepository(t)
	checkIn := domain.NewDate(2030, time.June, 10)
	require.NoError(t, repo.Insert(ctx, newBooking(userID, "BOOK-AAAA1111", checkIn, 3)))

	// Act
	sameDayTurnover := repo.Insert(ctx, newBooking(userID, "BOOK-BBBB2222", checkIn.AddDays(3), 2))
	afterwards := repo.Insert(ctx, newBooking(userID, "BOOK-CCCC3333", checkIn.AddDays(4), 2))
	duplicateCode := repo.Insert(ctx, newBooking(userID, "BOOK-AAAA1111", checkIn.AddDays(30), 2))

	// Assert
	assert.ErrorIs(t, sameDayTurnover, booking.ErrRoomNotAvailable)
	assert.NoError(t, afterwards)
	assert.ErrorIs(t, duplicateCode, booking.ErrDuplicateConfirmationCode)
}

func TestRepository_BookedRoomIDsAndRemove(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, userID := setupRepository(t)
	checkIn := domain.NewDate(2030, time.June, 10)
	b := newBooking(userID, "BOOK-AAAA1111", checkIn, 3)
	require.NoError(t, repo.Insert(ctx, b))

	// Act
	booked, err := repo.BookedRoomIDs(ctx, checkIn.AddDays(1), checkIn.AddDays(5))
	require.NoError(t, err)
	removed, removeErr := repo.Remove(ctx, b.ID)

	// Assert
	assert.Equal(t, []string{doubleRoomID}, booked)
	require.NoError(t, removeErr)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	booked, err = repo.BookedRoomIDs(ctx, checkIn, checkIn.AddDays(3))
	require.NoError(t, err)
	assert.Empty(t, booked)
}

func TestRepository_InsertUnknownRoom(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, userID := setupRepository(t)
	b := newBooking(userID, "BOOK-DDDD4444", domain.NewDate(2030, time.July, 1), 2)
	b.RoomID = uuid.NewString()

	// Act
	err := repo.Insert(ctx, b)

	// Assert
	assert.ErrorIs(t, err, booking.ErrRoomGone)
}
