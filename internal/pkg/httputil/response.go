// Package httputil holds the HTTP plumbing shared by the API handlers:
// response envelopes, error mapping and middleware.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Response envelopes. Successful bodies are {"data": ...}; failures are
// {"error": {"message": ..., "details": ...}}.
type (
	dataEnvelope struct {
		Data any `json:"data"`
	}

	errorEnvelope struct {
		Error ErrorBody `json:"error"`
	}

	// ErrorBody is the payload of a failed response.
	ErrorBody struct {
		Message string `json:"message"`
		Details any    `json:"details,omitempty"`
	}

	// FieldError describes one rejected request field.
	FieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "status", status, "error", err)
	}
}

// JSON writes body as is, without an envelope.
func JSON(w http.ResponseWriter, status int, body any) {
	writeJSON(w, status, body)
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Success wraps data in the success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

// Error writes an error envelope carrying message.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{Error: ErrorBody{Message: message}})
}

// ValidationError writes a 400 response. Validator failures are reported per
// field; any other error is reported as a single details string.
func ValidationError(w http.ResponseWriter, err error) {
	var details any = err.Error()

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]FieldError, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			fields = append(fields, FieldError{Field: e.Field(), Message: e.Tag()})
		}
		details = fields
	}

	writeJSON(w, http.StatusBadRequest, errorEnvelope{
		Error: ErrorBody{Message: "validation error", Details: details},
	})
}
