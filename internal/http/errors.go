package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stellwand/sso-cookie-helper/internal/security"
)

// ErrorResponse represents a JSON error response.
// Only contains an error field to avoid leaking internal details.
type ErrorResponse struct {
	Error string `json:"error"`
}

// noStore sets cache control headers to prevent page caching.
// Auth responses must never be served from browser or proxy caches.
func noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.Header().Set("Pragma", "no-cache")
}

// writeJSON writes a JSON response with the proper content type and status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError is a helper that writes a JSON error response.
// Ensures consistent error formatting across all error responses.
func writeJSONError(w http.ResponseWriter, statusCode int, errorCode string) {
	writeJSON(w, statusCode, ErrorResponse{Error: errorCode})
}

// ticketErrorCode maps a verification failure to its HTTP status and stable
// error code. Every ticket error is a 401; only something unexpected - which
// the sentinel taxonomy says cannot happen - is a 500.
func ticketErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, security.ErrNoAuthCookie):
		return http.StatusUnauthorized, ErrCodeNoTicket
	case errors.Is(err, security.ErrTicketFormat):
		return http.StatusUnauthorized, ErrCodeMalformedTicket
	case errors.Is(err, security.ErrTicketSignature):
		return http.StatusUnauthorized, ErrCodeInvalidTicket
	case errors.Is(err, security.ErrTicketExpired):
		return http.StatusUnauthorized, ErrCodeExpiredTicket
	case errors.Is(err, security.ErrTicketFuture):
		return http.StatusUnauthorized, ErrCodeFutureTicket
	default:
		return http.StatusInternalServerError, ErrCodeServerError
	}
}
