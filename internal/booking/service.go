// Package booking implements the booking lifecycle: create, list, look up and
// cancel room bookings.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/ctxlog"
	"github.com/google/uuid"
)

// Config contains booking service configuration.
type Config struct {
	OperationTimeout time.Duration
	MaxCodeAttempts  int
}

// DefaultConfig returns default booking service configuration.
func DefaultConfig() Config {
	return Config{
		OperationTimeout: 5 * time.Second,
		MaxCodeAttempts:  5,
	}
}

// Service implements booking business logic.
type Service struct {
	repo   Repository
	codes  CodeGenerator
	config Config
	now    func() time.Time
}

// NewService creates a new booking service. Zero config values fall back to
// DefaultConfig.
func NewService(repo Repository, codes CodeGenerator, config Config) *Service {
	defaults := DefaultConfig()
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = defaults.OperationTimeout
	}
	if config.MaxCodeAttempts <= 0 {
		config.MaxCodeAttempts = defaults.MaxCodeAttempts
	}
	if codes == nil {
		codes = NanoidGenerator{}
	}

	return &Service{
		repo:   repo,
		codes:  codes,
		config: config,
		now:    time.Now,
	}
}

// attempt tracks one CreateBooking call through Idle → Submitting →
// Confirmed | Rejected.
type attempt struct {
	state  domain.BookingState
	logger *slog.Logger
}

func (a *attempt) moveTo(state domain.BookingState) {
	a.logger.Debug("booking attempt state changed", "from", a.state, "to", state)
	a.state = state
	if state == domain.BookingStateConfirmed || state == domain.BookingStateRejected {
		recordAttempt(string(state))
	}
}

func (a *attempt) reject(err error) error {
	a.logger.Info("booking rejected", "error", err)
	recordRejection(rejectionReason(err))
	a.moveTo(domain.BookingStateRejected)
	return err
}

// ValidateDetails checks the guest-supplied part of a booking request.
func ValidateDetails(details domain.BookingDetails) error {
	if err := domain.ValidateStay(details.CheckIn, details.CheckOut); err != nil {
		return err
	}
	if details.NumAdults < 1 {
		return ErrInvalidAdults
	}
	if details.NumChildren < 0 {
		return ErrInvalidChildren
	}
	return nil
}

// CreateBooking books room for requester. On success the stored booking,
// including its newly issued confirmation code, is returned.
func (s *Service) CreateBooking(ctx context.Context, room domain.Room, requester domain.Identity, details domain.BookingDetails) (*domain.Booking, error) {
	a := &attempt{
		state: domain.BookingStateIdle,
		logger: ctxlog.FromContext(ctx).With(
			"room_id", room.ID,
			"user_id", requester.ID,
		),
	}
	a.moveTo(domain.BookingStateSubmitting)

	if !requester.IsAuthenticated() {
		return nil, a.reject(ErrUnauthenticated)
	}
	if room.ID == "" {
		return nil, a.reject(ErrMissingRoom)
	}
	if err := ValidateDetails(details); err != nil {
		return nil, a.reject(err)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	booking := &domain.Booking{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		UserID:      requester.ID,
		CheckIn:     details.CheckIn,
		CheckOut:    details.CheckOut,
		NumAdults:   details.NumAdults,
		NumChildren: details.NumChildren,
		TotalGuests: details.NumAdults + details.NumChildren,
		CreatedAt:   s.now().UTC(),
	}

	for i := 1; i <= s.config.MaxCodeAttempts; i++ {
		code, err := s.codes.Generate()
		if err != nil {
			return nil, a.reject(err)
		}

		exists, err := s.repo.CodeExists(opCtx, code)
		if err != nil {
			return nil, a.reject(classify("check confirmation code", err))
		}
		if exists {
			recordCodeCollision()
			a.logger.Warn("confirmation code collision, retrying", "attempt", i)
			continue
		}

		booking.ConfirmationCode = code
		err = s.repo.Insert(opCtx, booking)
		if errors.Is(err, ErrDuplicateConfirmationCode) {
			recordCodeCollision()
			a.logger.Warn("confirmation code taken concurrently, retrying", "attempt", i)
			continue
		}
		if err != nil {
			return nil, a.reject(classify("insert booking", err))
		}

		a.moveTo(domain.BookingStateConfirmed)
		a.logger.Info("booking confirmed",
			"booking_id", booking.ID,
			"confirmation_code", booking.ConfirmationCode,
		)
		return booking, nil
	}

	return nil, a.reject(ErrConfirmationCodeExhausted)
}

// ListBookings returns the bookings owned by userID, newest first.
func (s *Service) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	bookings, err := s.repo.FindByUser(opCtx, userID)
	if err != nil {
		return nil, classify("find bookings by user", err)
	}
	SortNewestFirst(bookings)
	return bookings, nil
}

// ListUserBookings returns userID's bookings on behalf of requester, who must
// be that user or an admin.
func (s *Service) ListUserBookings(ctx context.Context, userID string, requester domain.Identity) ([]domain.Booking, error) {
	if !requester.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if requester.ID != userID && !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.ListBookings(ctx, userID)
}

// ListAllBookings returns every booking, newest first. Admin only.
func (s *Service) ListAllBookings(ctx context.Context, requester domain.Identity) ([]domain.Booking, error) {
	if !requester.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if !requester.IsAdmin() {
		return nil, ErrAdminOnly
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	bookings, err := s.repo.ListAll(opCtx)
	if err != nil {
		return nil, classify("list bookings", err)
	}
	SortNewestFirst(bookings)
	return bookings, nil
}

// GetBooking returns a booking visible to requester.
func (s *Service) GetBooking(ctx context.Context, id string, requester domain.Identity) (*domain.Booking, error) {
	if !requester.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	b, err := s.repo.FindByID(opCtx, id)
	if err != nil {
		return nil, classify("find booking", err)
	}
	if !canAccess(b, requester) {
		return nil, ErrForbidden
	}
	return b, nil
}

// FindByConfirmationCode looks a booking up by the code given to the guest.
// Lookup is case-insensitive.
func (s *Service) FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !domain.IsValidConfirmationCode(code) {
		return nil, ErrInvalidConfirmationCode
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	b, err := s.repo.FindByConfirmationCode(opCtx, code)
	if err != nil {
		return nil, classify("find booking by confirmation code", err)
	}
	return b, nil
}

// CancelBooking removes a booking. Only its owner or an admin may cancel it.
// Cancelling an absent booking, including one cancelled before, fails with
// ErrBookingNotFound.
func (s *Service) CancelBooking(ctx context.Context, bookingID string, requester domain.Identity) error {
	if !requester.IsAuthenticated() {
		return ErrUnauthenticated
	}

	opCtx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	b, err := s.repo.FindByID(opCtx, bookingID)
	if err != nil {
		return classify("find booking", err)
	}
	if !canAccess(b, requester) {
		return ErrForbidden
	}

	removed, err := s.repo.Remove(opCtx, bookingID)
	if err != nil {
		return classify("remove booking", err)
	}
	if !removed {
		return ErrBookingNotFound
	}

	byAdmin := b.UserID != requester.ID
	recordCancelled(byAdmin)
	ctxlog.FromContext(ctx).Info("booking cancelled",
		"booking_id", b.ID,
		"confirmation_code", b.ConfirmationCode,
		"owner_id", b.UserID,
		"cancelled_by", requester.ID,
	)
	return nil
}

// BookedRoomIDs exposes room occupancy to the catalog.
func (s *Service) BookedRoomIDs(ctx context.Context, checkIn, checkOut domain.Date) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	ids, err := s.repo.BookedRoomIDs(opCtx, checkIn, checkOut)
	if err != nil {
		return nil, classify("find booked rooms", err)
	}
	return ids, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrAuth):
		return "unauthenticated"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "repository"
	}
}

func canAccess(b *domain.Booking, requester domain.Identity) bool {
	return b.UserID == requester.ID || requester.IsAdmin()
}

// SortNewestFirst orders bookings by creation time descending, ties broken
// by confirmation code.
func SortNewestFirst(bookings []domain.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].ConfirmationCode < bookings[j].ConfirmationCode
	})
}

// classify makes sure a repository error carries an error kind. Errors that
// already carry one pass through; deadline overruns become domain.ErrTimeout;
// anything else becomes domain.ErrRepository.
func classify(op string, err error) error {
	for _, kind := range []error{
		domain.ErrTimeout,
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrForbidden,
		domain.ErrAuth,
		domain.ErrRepository,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRepository, err)
}
