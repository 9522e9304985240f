// Package httpx provides the HTTP surface of the SSO cookie helper: the
// login endpoint that mints tickets, the auth_request-style verifier, and
// the supporting middleware.
package httpx

// HTTP Routes
const (
	// RouteLogin accepts credentials and sets the auth cookie
	RouteLogin = "/login"
	// RouteAuth verifies the auth cookie for the fronting web server
	RouteAuth = "/auth"
	// RouteLogout clears the auth cookie
	RouteLogout = "/logout"
	// RouteHealth is the endpoint for health checks
	RouteHealth = "/healthz"
	// RouteMetrics serves the Prometheus exposition
	RouteMetrics = "/metrics"
)

// Content Types
const (
	// ContentTypeJSON is the MIME type for JSON responses with UTF-8 charset
	ContentTypeJSON = "application/json; charset=utf-8"
	// ContentTypeFormURLEncoded is the MIME type for URL-encoded form data
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

// HTTP Headers
const (
	// HeaderContentType is the Content-Type header name
	HeaderContentType = "Content-Type"
	// HeaderAuthUser carries the verified user name back to the web server
	HeaderAuthUser = "X-Auth-User"
	// HeaderAuthRoles carries the verified role string back to the web server
	HeaderAuthRoles = "X-Auth-Roles"
)

// Error codes returned in JSON bodies. Stable strings: the fronting web
// server branches on them.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeInvalidReturnURL   = "invalid_return_url"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeServerError        = "server_error"
	ErrCodeNoTicket           = "no_ticket"
	ErrCodeMalformedTicket    = "malformed_ticket"
	ErrCodeInvalidTicket      = "invalid_ticket"
	ErrCodeExpiredTicket      = "expired_ticket"
	ErrCodeFutureTicket       = "future_ticket"
)
