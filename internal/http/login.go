package httpx

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/stellwand/sso-cookie-helper/internal/security"
)

// loginResponse is the success body when no return_to redirect applies.
type loginResponse struct {
	OK    bool   `json:"ok"`
	User  string `json:"user"`
	Roles string `json:"roles"`
}

// login checks the posted credentials, mints a ticket bound to the
// caller's User-Agent, and sets it as the auth cookie. With a valid
// return_to the response is a redirect back to the allowlisted app;
// otherwise it is JSON.
//
// Every credential failure is the same 401 invalid_credentials - the
// response never distinguishes an unknown user from a wrong password.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	if err := r.ParseForm(); err != nil {
		h.metrics.LoginAttempts.WithLabelValues("bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, ErrCodeInvalidRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.metrics.LoginAttempts.WithLabelValues("bad_request").Inc()
		writeJSONError(w, http.StatusBadRequest, ErrCodeInvalidRequest)
		return
	}

	// Validate the optional redirect target before touching credentials,
	// so a bad return_to never burns a rate-limit token or a bcrypt round.
	returnTo := r.PostFormValue("return_to")
	if returnTo == "" {
		returnTo = r.URL.Query().Get("return_to")
	}
	var redirectURL string
	if returnTo != "" {
		sanitized, err := h.policy.SanitizeReturnURL(returnTo)
		if err != nil {
			h.metrics.LoginAttempts.WithLabelValues("bad_request").Inc()
			h.logger.Info("login rejected return_to",
				zap.String("reason", err.Error()))
			writeJSONError(w, http.StatusBadRequest, ErrCodeInvalidReturnURL)
			return
		}
		redirectURL = sanitized
	}

	ip := clientIP(r)
	if !h.limiter.allow(ip) {
		h.metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
		h.logger.Warn("login rate limited", zap.String("remote_addr", ip))
		writeJSONError(w, http.StatusTooManyRequests, ErrCodeRateLimited)
		return
	}

	roles, err := h.users.Authenticate(username, password)
	if err != nil {
		h.metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		h.logger.Info("login failed", zap.String("user", username), zap.String("remote_addr", ip))
		writeJSONError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials)
		return
	}

	_, err = security.SetAuthCookie(w, h.cfg.SigningKey, username, roles, r.UserAgent(), h.cfg.CookieOpts(), h.now())
	if err != nil {
		h.metrics.LoginAttempts.WithLabelValues("server_error").Inc()
		h.logger.Error("login cookie write failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, ErrCodeServerError)
		return
	}

	h.metrics.LoginAttempts.WithLabelValues("ok").Inc()
	h.metrics.TicketsIssued.Inc()
	h.logger.Info("login ok", zap.String("user", username), zap.String("roles", roles))

	if redirectURL != "" {
		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{OK: true, User: username, Roles: roles})
}
