package httpx

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/stellwand/sso-cookie-helper/internal/security"
)

// authResponse is the body returned alongside the identity headers.
type authResponse struct {
	OK    bool   `json:"ok"`
	User  string `json:"user"`
	Roles string `json:"roles"`
}

// auth is the per-request verifier the fronting web server calls (nginx
// auth_request, Apache mod_auth-style subrequest). It reads the auth
// cookie, verifies it against this request's own User-Agent, and answers
// 200 with identity headers or 401 with a stable error code.
//
// Which roles authorize which resources stays the web server's decision;
// this endpoint only reports who the ticket says the caller is.
func (h *handlers) auth(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	opts := h.cfg.TicketOpts()
	opts.Now = h.now

	id, err := security.ReadAuthCookie(r, h.cfg.SigningKey, h.cfg.CookieName, opts)
	if err != nil {
		status, code := ticketErrorCode(err)
		h.metrics.TicketVerifications.WithLabelValues(code).Inc()
		if status >= http.StatusInternalServerError {
			h.logger.Error("ticket verification error", zap.Error(err))
		} else if !errors.Is(err, security.ErrNoAuthCookie) {
			h.logger.Info("ticket rejected", zap.String("code", code), zap.String("remote_addr", r.RemoteAddr))
		}
		writeJSONError(w, status, code)
		return
	}

	h.metrics.TicketVerifications.WithLabelValues("ok").Inc()
	w.Header().Set(HeaderAuthUser, id.User)
	w.Header().Set(HeaderAuthRoles, id.Roles)
	writeJSON(w, http.StatusOK, authResponse{OK: true, User: id.User, Roles: id.Roles})
}
