package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorResponse struct {
	Error struct {
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()

	Success(rec, http.StatusCreated, map[string]string{"id": "b-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"id":"b-1"}}`, rec.Body.String())
}

func TestValidationError_FieldDetails(t *testing.T) {
	// Arrange
	type request struct {
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(request{})
	rec := httptest.NewRecorder()

	// Act
	ValidationError(rec, err)

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "validation error", resp.Error.Message)
	var fields []FieldError
	require.NoError(t, json.Unmarshal(resp.Error.Details, &fields))
	assert.Equal(t, []FieldError{{Field: "Email", Message: "required"}}, fields)
}

func TestValidationError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()

	ValidationError(rec, errors.New("invalid JSON body"))

	resp := decodeError(t, rec)
	assert.JSONEq(t, `"invalid JSON body"`, string(resp.Error.Details))
}

func TestHandleError(t *testing.T) {
	errSpecific := fmt.Errorf("%w: room is gone", domain.ErrConflict)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"specific mapping wins", errSpecific, http.StatusGone, "gone"},
		{"validation kind", fmt.Errorf("%w: bad dates", domain.ErrValidation), http.StatusBadRequest, "validation error: bad dates"},
		{"timeout kind", fmt.Errorf("save: %w", domain.ErrTimeout), http.StatusGatewayTimeout, "operation timed out"},
		{"unmapped", errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			rec := httptest.NewRecorder()
			mappings := WithKinds(ErrorMapping{Error: errSpecific, Status: http.StatusGone, Message: "gone"})

			// Act
			HandleError(context.Background(), rec, tt.err, mappings)

			// Assert
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Error.Message)
		})
	}
}

type stubValidator struct {
	identity domain.Identity
	err      error
}

func (s stubValidator) ValidateToken(context.Context, string) (domain.Identity, error) {
	return s.identity, s.err
}

func TestAuthMiddleware(t *testing.T) {
	guest := domain.Identity{ID: "user-1", Role: domain.RoleUser}

	tests := []struct {
		name      string
		header    string
		validator stubValidator
		status    int
	}{
		{"missing header", "", stubValidator{identity: guest}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{identity: guest}, http.StatusUnauthorized},
		{"invalid token", "Bearer abc", stubValidator{err: domain.ErrAuth}, http.StatusUnauthorized},
		{"valid token", "Bearer abc", stubValidator{identity: guest}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var seen domain.Identity
			h := AuthMiddleware(tt.validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetIdentity(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			// Act
			h.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, guest, seen)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		identity domain.Identity
		status   int
	}{
		{"anonymous", domain.Identity{}, http.StatusUnauthorized},
		{"user", domain.Identity{ID: "u", Role: domain.RoleUser}, http.StatusForbidden},
		{"admin", domain.Identity{ID: "a", Role: domain.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func sendFrom(h http.Handler, addr string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_Middleware(t *testing.T) {
	// Arrange
	rl := NewRateLimiter(0.001, 2, time.Minute)
	t.Cleanup(func() { _ = rl.Stop() })
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Act
	codes := []int{sendFrom(h, "10.0.0.1:1000"), sendFrom(h, "10.0.0.1:1001"), sendFrom(h, "10.0.0.1:1002")}
	other := sendFrom(h, "10.0.0.2:1000")

	// Assert
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, http.StatusOK, other)
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	// Arrange
	clock := time.Date(2030, time.January, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0.001, 1, time.Minute)
	t.Cleanup(func() { _ = rl.Stop() })
	rl.now = func() time.Time { return clock }
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusOK, sendFrom(h, "10.0.0.1:1000"))
	require.Equal(t, http.StatusOK, sendFrom(h, "10.0.0.2:1000"))

	// Act
	clock = clock.Add(45 * time.Second)
	require.Equal(t, http.StatusTooManyRequests, sendFrom(h, "10.0.0.2:1001"))
	clock = clock.Add(30 * time.Second)
	rl.cleanup()

	// Assert
	assert.Equal(t, 1, rl.Len())
	assert.Equal(t, http.StatusOK, sendFrom(h, "10.0.0.1:1001"), "evicted client starts with a fresh bucket")
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(h, "10.0.0.2:1002"))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)

	assert.NoError(t, rl.Stop())
	assert.NoError(t, rl.Stop())
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	h := CORSMiddleware([]string{"http://localhost:3000"})(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/bookings", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggerMiddleware_LevelByStatus(t *testing.T) {
	// Arrange
	var records []slog.Level
	logger := slog.New(levelRecorder{levels: &records})
	h := RequestLoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	// Act
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))

	// Assert
	assert.Equal(t, []slog.Level{slog.LevelWarn}, records)
}

type levelRecorder struct {
	levels *[]slog.Level
}

func (h levelRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h levelRecorder) Handle(_ context.Context, r slog.Record) error {
	*h.levels = append(*h.levels, r.Level)
	return nil
}

func (h levelRecorder) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h levelRecorder) WithGroup(string) slog.Handler      { return h }
