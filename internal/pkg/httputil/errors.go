package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/hotel-booking/internal/domain"
	"github.com/bissquit/hotel-booking/internal/pkg/ctxlog"
)

// ErrorMapping defines how a domain error maps to an HTTP response.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// KindMappings maps the shared domain error kinds. Handlers append them after
// their own specific mappings.
var KindMappings = []ErrorMapping{
	{Error: domain.ErrTimeout, Status: http.StatusGatewayTimeout, Message: "operation timed out"},
	{Error: domain.ErrValidation, Status: http.StatusBadRequest},
	{Error: domain.ErrAuth, Status: http.StatusUnauthorized},
	{Error: domain.ErrForbidden, Status: http.StatusForbidden},
	{Error: domain.ErrNotFound, Status: http.StatusNotFound},
	{Error: domain.ErrConflict, Status: http.StatusConflict},
}

// WithKinds returns mappings followed by KindMappings.
func WithKinds(mappings ...ErrorMapping) []ErrorMapping {
	out := make([]ErrorMapping, 0, len(mappings)+len(KindMappings))
	out = append(out, mappings...)
	return append(out, KindMappings...)
}

// HandleError maps a domain error to an HTTP response using provided mappings.
// If no mapping matches, logs the error and returns 500 Internal Server Error.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			if m.Status >= http.StatusInternalServerError {
				ctxlog.FromContext(ctx).Error("request failed", "error", err, "status", m.Status)
			}
			Error(w, m.Status, msg)
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
