package booking_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bissquit/hotel-booking/internal/booking"
	"github.com/bissquit/hotel-booking/internal/booking/memory"
	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	guest    = domain.Identity{ID: "user-1", DisplayName: "Guest", Email: "guest@example.com", Role: domain.RoleUser}
	stranger = domain.Identity{ID: "user-2", DisplayName: "Stranger", Email: "stranger@example.com", Role: domain.RoleUser}
	admin    = domain.Identity{ID: "admin-1", DisplayName: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin}

	suite = domain.Room{ID: "room-1", Type: "Suite", PricePerNight: 25000}
)

func details(checkIn, checkOut domain.Date) domain.BookingDetails {
	return domain.BookingDetails{CheckIn: checkIn, CheckOut: checkOut, NumAdults: 2, NumChildren: 1}
}

func newService(t *testing.T) (*booking.Service, *memory.Repository) {
	t.Helper()
	repo, err := memory.NewRepository(context.Background(), nil)
	require.NoError(t, err)
	return booking.NewService(repo, nil, booking.DefaultConfig()), repo
}

// sequenceGenerator returns codes in order, repeating the last one.
type sequenceGenerator struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := g.codes[min(g.calls, len(g.codes)-1)]
	g.calls++
	return code, nil
}

// blockingRepository blocks every call until the context is done.
type blockingRepository struct {
	booking.Repository
}

func (blockingRepository) CodeExists(ctx context.Context, _ string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (blockingRepository) FindByUser(ctx context.Context, _ string) ([]domain.Booking, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// failingRepository fails every call with a driver error.
type failingRepository struct {
	booking.Repository
}

func (failingRepository) FindByID(_ context.Context, _ string) (*domain.Booking, error) {
	return nil, errors.New("connection reset")
}

func TestCreateBooking_IssuesConfirmationCode(t *testing.T) {
	// Arrange
	service, repo := newService(t)
	checkIn := domain.NewDate(2025, time.June, 1)

	// Act
	b, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(3)))

	// Assert
	require.NoError(t, err)
	assert.Regexp(t, `^BOOK-[A-Z0-9]{8}$`, b.ConfirmationCode)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, suite.ID, b.RoomID)
	assert.Equal(t, guest.ID, b.UserID)
	assert.Equal(t, 3, b.TotalGuests)
	assert.Equal(t, 3, b.Nights())
	assert.False(t, b.CreatedAt.IsZero())
	assert.Equal(t, 1, repo.Len())
}

func TestCreateBooking_Validation(t *testing.T) {
	checkIn := domain.NewDate(2025, time.June, 1)

	tests := []struct {
		name      string
		room      domain.Room
		requester domain.Identity
		details   domain.BookingDetails
		wantErr   error
		wantKind  error
	}{
		{
			name:      "anonymous requester",
			room:      suite,
			requester: domain.Identity{},
			details:   details(checkIn, checkIn.AddDays(1)),
			wantErr:   booking.ErrUnauthenticated,
			wantKind:  domain.ErrAuth,
		},
		{
			name:      "check-out equals check-in",
			room:      suite,
			requester: guest,
			details:   details(checkIn, checkIn),
			wantErr:   booking.ErrInvalidDateRange,
			wantKind:  domain.ErrValidation,
		},
		{
			name:      "check-out before check-in",
			room:      suite,
			requester: guest,
			details:   details(checkIn, checkIn.AddDays(-2)),
			wantErr:   booking.ErrInvalidDateRange,
			wantKind:  domain.ErrValidation,
		},
		{
			name:      "missing dates",
			room:      suite,
			requester: guest,
			details:   domain.BookingDetails{NumAdults: 1},
			wantErr:   booking.ErrMissingDates,
			wantKind:  domain.ErrValidation,
		},
		{
			name:      "no adults",
			room:      suite,
			requester: guest,
			details:   domain.BookingDetails{CheckIn: checkIn, CheckOut: checkIn.AddDays(1)},
			wantErr:   booking.ErrInvalidAdults,
			wantKind:  domain.ErrValidation,
		},
		{
			name:      "negative children",
			room:      suite,
			requester: guest,
			details:   domain.BookingDetails{CheckIn: checkIn, CheckOut: checkIn.AddDays(1), NumAdults: 1, NumChildren: -1},
			wantErr:   booking.ErrInvalidChildren,
			wantKind:  domain.ErrValidation,
		},
		{
			name:      "missing room",
			room:      domain.Room{},
			requester: guest,
			details:   details(checkIn, checkIn.AddDays(1)),
			wantErr:   booking.ErrMissingRoom,
			wantKind:  domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			service, repo := newService(t)

			// Act
			b, err := service.CreateBooking(context.Background(), tt.room, tt.requester, tt.details)

			// Assert
			require.Error(t, err)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, 0, repo.Len())
		})
	}
}

func TestCreateBooking_RejectsOverlappingStay(t *testing.T) {
	// Arrange
	service, repo := newService(t)
	checkIn := domain.NewDate(2025, time.June, 1)
	_, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(3)))
	require.NoError(t, err)

	// Act
	_, err = service.CreateBooking(context.Background(), suite, stranger, details(checkIn.AddDays(3), checkIn.AddDays(5)))

	// Assert
	assert.ErrorIs(t, err, booking.ErrRoomNotAvailable)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, repo.Len())
}

func TestCreateBooking_RetriesOnCodeCollision(t *testing.T) {
	// Arrange
	repo, err := memory.NewRepository(context.Background(), nil)
	require.NoError(t, err)
	codes := &sequenceGenerator{codes: []string{"BOOK-AAAAAAAA", "BOOK-AAAAAAAA", "BOOK-BBBBBBBB"}}
	service := booking.NewService(repo, codes, booking.DefaultConfig())
	checkIn := domain.NewDate(2025, time.June, 1)
	other := domain.Room{ID: "room-2", Type: "Double"}

	first, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))
	require.NoError(t, err)

	// Act
	second, err := service.CreateBooking(context.Background(), other, guest, details(checkIn, checkIn.AddDays(1)))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "BOOK-AAAAAAAA", first.ConfirmationCode)
	assert.Equal(t, "BOOK-BBBBBBBB", second.ConfirmationCode)
	assert.Equal(t, 3, codes.calls)
}

func TestCreateBooking_CodeSpaceExhausted(t *testing.T) {
	// Arrange
	repo, err := memory.NewRepository(context.Background(), nil)
	require.NoError(t, err)
	codes := &sequenceGenerator{codes: []string{"BOOK-AAAAAAAA"}}
	service := booking.NewService(repo, codes, booking.Config{MaxCodeAttempts: 3})
	checkIn := domain.NewDate(2025, time.June, 1)
	other := domain.Room{ID: "room-2", Type: "Double"}

	_, err = service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))
	require.NoError(t, err)

	// Act
	_, err = service.CreateBooking(context.Background(), other, guest, details(checkIn, checkIn.AddDays(1)))

	// Assert
	assert.ErrorIs(t, err, booking.ErrConfirmationCodeExhausted)
	assert.ErrorIs(t, err, domain.ErrRepository)
	assert.Equal(t, 4, codes.calls)
	assert.Equal(t, 1, repo.Len())
}

func TestCreateBooking_ConcurrentCodesAreUnique(t *testing.T) {
	// Arrange
	service, repo := newService(t)
	start := domain.NewDate(2025, time.January, 1)
	const n = 1000

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes = make(map[string]struct{}, n)
		errs  []error
	)

	// Act
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := domain.Room{ID: fmt.Sprintf("room-%d", i)}
			b, err := service.CreateBooking(context.Background(), room, guest, details(start, start.AddDays(1)))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			codes[b.ConfirmationCode] = struct{}{}
		}(i)
	}
	wg.Wait()

	// Assert
	require.Empty(t, errs)
	assert.Len(t, codes, n)
	assert.Equal(t, n, repo.Len())
}

func TestCreateBooking_Timeout(t *testing.T) {
	// Arrange
	service := booking.NewService(blockingRepository{}, nil, booking.Config{OperationTimeout: 20 * time.Millisecond})
	checkIn := domain.NewDate(2025, time.June, 1)

	// Act
	_, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))

	// Assert
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.NotErrorIs(t, err, domain.ErrRepository)
}

func TestListBookings_Timeout(t *testing.T) {
	// Arrange
	service := booking.NewService(blockingRepository{}, nil, booking.Config{OperationTimeout: 20 * time.Millisecond})

	// Act
	_, err := service.ListBookings(context.Background(), guest.ID)

	// Assert
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestListBookings_OnlyOwnedNewestFirst(t *testing.T) {
	// Arrange
	service, _ := newService(t)
	ctx := context.Background()
	checkIn := domain.NewDate(2025, time.June, 1)

	older, err := service.CreateBooking(ctx, suite, guest, details(checkIn, checkIn.AddDays(1)))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	newer, err := service.CreateBooking(ctx, suite, guest, details(checkIn.AddDays(10), checkIn.AddDays(12)))
	require.NoError(t, err)
	_, err = service.CreateBooking(ctx, suite, stranger, details(checkIn.AddDays(20), checkIn.AddDays(21)))
	require.NoError(t, err)

	// Act
	bookings, err := service.ListBookings(ctx, guest.ID)

	// Assert
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, newer.ID, bookings[0].ID)
	assert.Equal(t, older.ID, bookings[1].ID)
}

func TestListBookings_MissingUserID(t *testing.T) {
	service, _ := newService(t)

	_, err := service.ListBookings(context.Background(), "")

	assert.ErrorIs(t, err, booking.ErrMissingUserID)
}

func TestSortNewestFirst_TiesBrokenByCode(t *testing.T) {
	created := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	bookings := []domain.Booking{
		{ConfirmationCode: "BOOK-CCCCCCCC", CreatedAt: created},
		{ConfirmationCode: "BOOK-AAAAAAAA", CreatedAt: created},
		{ConfirmationCode: "BOOK-ZZZZZZZZ", CreatedAt: created.Add(time.Hour)},
	}

	booking.SortNewestFirst(bookings)

	assert.Equal(t, "BOOK-ZZZZZZZZ", bookings[0].ConfirmationCode)
	assert.Equal(t, "BOOK-AAAAAAAA", bookings[1].ConfirmationCode)
	assert.Equal(t, "BOOK-CCCCCCCC", bookings[2].ConfirmationCode)
}

func TestCancelBooking(t *testing.T) {
	checkIn := domain.NewDate(2025, time.June, 1)

	t.Run("owner cancels then cancelling again is not found", func(t *testing.T) {
		// Arrange
		service, repo := newService(t)
		b, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))
		require.NoError(t, err)

		// Act
		err = service.CancelBooking(context.Background(), b.ID, guest)
		again := service.CancelBooking(context.Background(), b.ID, guest)

		// Assert
		require.NoError(t, err)
		assert.ErrorIs(t, again, booking.ErrBookingNotFound)
		assert.ErrorIs(t, again, domain.ErrNotFound)
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("stranger is forbidden and booking remains", func(t *testing.T) {
		// Arrange
		service, repo := newService(t)
		b, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))
		require.NoError(t, err)

		// Act
		err = service.CancelBooking(context.Background(), b.ID, stranger)

		// Assert
		assert.ErrorIs(t, err, booking.ErrForbidden)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("admin cancels any booking", func(t *testing.T) {
		// Arrange
		service, repo := newService(t)
		b, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))
		require.NoError(t, err)

		// Act
		err = service.CancelBooking(context.Background(), b.ID, admin)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("unknown booking", func(t *testing.T) {
		service, _ := newService(t)

		err := service.CancelBooking(context.Background(), "missing", guest)

		assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	})

	t.Run("repository failure is classified", func(t *testing.T) {
		service := booking.NewService(failingRepository{}, nil, booking.DefaultConfig())

		err := service.CancelBooking(context.Background(), "any", guest)

		assert.ErrorIs(t, err, domain.ErrRepository)
		assert.NotErrorIs(t, err, domain.ErrTimeout)
	})
}

func TestGetBooking_Access(t *testing.T) {
	// Arrange
	service, _ := newService(t)
	checkIn := domain.NewDate(2025, time.June, 1)
	b, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))
	require.NoError(t, err)

	// Act
	own, ownErr := service.GetBooking(context.Background(), b.ID, guest)
	_, strangerErr := service.GetBooking(context.Background(), b.ID, stranger)
	asAdmin, adminErr := service.GetBooking(context.Background(), b.ID, admin)

	// Assert
	require.NoError(t, ownErr)
	assert.Equal(t, b.ID, own.ID)
	assert.ErrorIs(t, strangerErr, booking.ErrForbidden)
	require.NoError(t, adminErr)
	assert.Equal(t, b.ID, asAdmin.ID)
}

func TestListAllBookings_AdminOnly(t *testing.T) {
	// Arrange
	service, _ := newService(t)
	checkIn := domain.NewDate(2025, time.June, 1)
	_, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))
	require.NoError(t, err)

	// Act
	all, adminErr := service.ListAllBookings(context.Background(), admin)
	_, userErr := service.ListAllBookings(context.Background(), guest)

	// Assert
	require.NoError(t, adminErr)
	assert.Len(t, all, 1)
	assert.ErrorIs(t, userErr, booking.ErrAdminOnly)
}

func TestListUserBookings_Access(t *testing.T) {
	service, _ := newService(t)

	_, selfErr := service.ListUserBookings(context.Background(), guest.ID, guest)
	_, strangerErr := service.ListUserBookings(context.Background(), guest.ID, stranger)
	_, adminErr := service.ListUserBookings(context.Background(), guest.ID, admin)

	assert.NoError(t, selfErr)
	assert.ErrorIs(t, strangerErr, booking.ErrForbidden)
	assert.NoError(t, adminErr)
}

func TestFindByConfirmationCode(t *testing.T) {
	// Arrange
	service, _ := newService(t)
	checkIn := domain.NewDate(2025, time.June, 1)
	b, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(1)))
	require.NoError(t, err)

	// Act
	found, err := service.FindByConfirmationCode(context.Background(), " "+strings.ToLower(b.ConfirmationCode)+" ")
	_, malformedErr := service.FindByConfirmationCode(context.Background(), "BOOK-123")
	_, missingErr := service.FindByConfirmationCode(context.Background(), "BOOK-00000000")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)
	assert.ErrorIs(t, malformedErr, booking.ErrInvalidConfirmationCode)
	assert.ErrorIs(t, missingErr, booking.ErrBookingNotFound)
}

func TestBookedRoomIDs(t *testing.T) {
	// Arrange
	service, _ := newService(t)
	checkIn := domain.NewDate(2025, time.June, 10)
	_, err := service.CreateBooking(context.Background(), suite, guest, details(checkIn, checkIn.AddDays(2)))
	require.NoError(t, err)

	// Act
	overlapping, err := service.BookedRoomIDs(context.Background(), checkIn.AddDays(1), checkIn.AddDays(4))
	require.NoError(t, err)
	later, err := service.BookedRoomIDs(context.Background(), checkIn.AddDays(3), checkIn.AddDays(4))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []string{suite.ID}, overlapping)
	assert.Empty(t, later)
}

func TestNanoidGenerator_Format(t *testing.T) {
	gen := booking.NanoidGenerator{}

	for i := 0; i < 100; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.True(t, domain.IsValidConfirmationCode(code), code)
	}
}
