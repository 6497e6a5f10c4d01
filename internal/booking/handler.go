package booking

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// RoomReader resolves the room a booking request refers to.
type RoomReader interface {
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
}

// Handler handles HTTP requests for the booking module.
type Handler struct {
	service   *Service
	rooms     RoomReader
	validator *validator.Validate
}

// NewHandler creates a new booking handler.
func NewHandler(service *Service, rooms RoomReader) *Handler {
	return &Handler{
		service:   service,
		rooms:     rooms,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes that need no authentication.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/bookings/code/{code}", h.FindByConfirmationCode)
}

// RegisterRoutes registers routes for authenticated users.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me/bookings", h.ListMyBookings)
	r.Post("/bookings", h.CreateBooking)
	r.Get("/bookings/{id}", h.GetBooking)
	r.Delete("/bookings/{id}", h.CancelBooking)
}

// RegisterAdminRoutes registers routes that require the admin role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/bookings", h.ListAllBookings)
	r.Get("/users/{id}/bookings", h.ListUserBookings)
}

// CreateBookingRequest represents the request body for booking a room.
type CreateBookingRequest struct {
	RoomID      string      `json:"room_id" validate:"required"`
	CheckIn     domain.Date `json:"check_in_date"`
	CheckOut    domain.Date `json:"check_out_date"`
	NumAdults   int         `json:"num_adults" validate:"gte=1"`
	NumChildren int         `json:"num_children" validate:"gte=0"`
}

// ToDomain converts the request to booking details.
func (r *CreateBookingRequest) ToDomain() domain.BookingDetails {
	return domain.BookingDetails{
		CheckIn:     r.CheckIn,
		CheckOut:    r.CheckOut,
		NumAdults:   r.NumAdults,
		NumChildren: r.NumChildren,
	}
}

// CreateBooking handles POST /bookings request.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	details := req.ToDomain()
	if err := ValidateDetails(details); err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	room, err := h.rooms.GetRoom(r.Context(), req.RoomID)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	b, err := h.service.CreateBooking(r.Context(), *room, httputil.GetIdentity(r.Context()), details)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, b)
}

// ListMyBookings handles GET /me/bookings request.
func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context(), httputil.GetUserID(r.Context()))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, bookings)
}

// ListUserBookings handles GET /users/{id}/bookings request.
func (h *Handler) ListUserBookings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	bookings, err := h.service.ListUserBookings(r.Context(), userID, httputil.GetIdentity(r.Context()))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, bookings)
}

// ListAllBookings handles GET /bookings request.
func (h *Handler) ListAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListAllBookings(r.Context(), httputil.GetIdentity(r.Context()))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, bookings)
}

// GetBooking handles GET /bookings/{id} request.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.service.GetBooking(r.Context(), id, httputil.GetIdentity(r.Context()))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, b)
}

// FindByConfirmationCode handles GET /bookings/code/{code} request.
func (h *Handler) FindByConfirmationCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	b, err := h.service.FindByConfirmationCode(r.Context(), code)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, b)
}

// CancelBooking handles DELETE /bookings/{id} request.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.CancelBooking(r.Context(), id, httputil.GetIdentity(r.Context())); err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	httputil.HandleError(ctx, w, err, httputil.WithKinds(
		httputil.ErrorMapping{Error: ErrConfirmationCodeExhausted, Status: http.StatusServiceUnavailable},
	))
}
