package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers read-only catalog routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/rooms", h.ListRooms)
	r.Get("/rooms/types", h.ListRoomTypes)
	r.Get("/rooms/available", h.ListAvailableRooms)
	r.Get("/rooms/{id}", h.GetRoom)
}

// RegisterAdminRoutes registers routes that modify the catalog (admin only).
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/rooms", h.CreateRoom)
	r.Patch("/rooms/{id}", h.UpdateRoom)
	r.Delete("/rooms/{id}", h.DeleteRoom)
}

// CreateRoomRequest represents the request body for creating a room.
type CreateRoomRequest struct {
	Type          string       `json:"room_type" validate:"required,min=1,max=100"`
	PricePerNight domain.Money `json:"price_per_night" validate:"gt=0"`
	Description   string       `json:"description" validate:"max=2000"`
	PhotoURL      string       `json:"photo_url" validate:"omitempty,url"`
}

// ToInput converts the request to service input.
func (r *CreateRoomRequest) ToInput() CreateRoomInput {
	return CreateRoomInput{
		Type:          r.Type,
		PricePerNight: r.PricePerNight,
		Description:   r.Description,
		PhotoURL:      r.PhotoURL,
	}
}

// UpdateRoomRequest represents the request body for a partial room update.
type UpdateRoomRequest struct {
	Type          *string       `json:"room_type" validate:"omitempty,min=1,max=100"`
	PricePerNight *domain.Money `json:"price_per_night" validate:"omitempty,gt=0"`
	Description   *string       `json:"description" validate:"omitempty,max=2000"`
	PhotoURL      *string       `json:"photo_url" validate:"omitempty,url"`
}

// ListRooms handles GET /rooms request.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, rooms)
}

// ListRoomTypes handles GET /rooms/types request.
func (h *Handler) ListRoomTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListRoomTypes(r.Context())
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, types)
}

// ListAvailableRooms handles GET /rooms/available request.
func (h *Handler) ListAvailableRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	checkIn, err := parseOptionalDate(query.Get("check_in"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}
	checkOut, err := parseOptionalDate(query.Get("check_out"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	rooms, err := h.service.ListAvailableRooms(r.Context(), query.Get("type"), checkIn, checkOut)
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, rooms)
}

func parseOptionalDate(s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	return domain.ParseDate(s)
}

// GetRoom handles GET /rooms/{id} request.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, room)
}

// CreateRoom handles POST /rooms request.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	room, err := h.service.CreateRoom(r.Context(), req.ToInput())
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, room)
}

// UpdateRoom handles PATCH /rooms/{id} request.
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	room, err := h.service.UpdateRoom(r.Context(), chi.URLParam(r, "id"), UpdateRoomInput{
		Type:          req.Type,
		PricePerNight: req.PricePerNight,
		Description:   req.Description,
		PhotoURL:      req.PhotoURL,
	})
	if err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	httputil.Success(w, http.StatusOK, room)
}

// DeleteRoom handles DELETE /rooms/{id} request.
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRoom(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	httputil.HandleError(ctx, w, err, httputil.KindMappings)
}
