package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/checkout"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/service"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts service and backend errors to HTTP status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, session.ErrNotLoggedIn), errors.Is(err, backend.ErrUnauthorized):
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case errors.Is(err, backend.ErrForbidden), errors.Is(err, service.ErrNotAdmin):
		httpStatus = http.StatusForbidden
		code = "permission_denied"
	case errors.Is(err, service.ErrEmptyCart), errors.Is(err, checkout.ErrEmptyOrder):
		httpStatus = http.StatusBadRequest
		code = "empty_cart"
	case errors.Is(err, backend.ErrValidation), errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidProduct):
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, checkout.ErrUnknownCheckout):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
	case errors.Is(err, backend.ErrTransport):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	default:
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
	}

	message := err.Error()
	if httpStatus >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err)
		if httpStatus == http.StatusInternalServerError {
			message = "internal server error"
		}
	}
	respondError(w, httpStatus, code, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
