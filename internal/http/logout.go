package httpx

import (
	"net/http"

	"github.com/stellwand/sso-cookie-helper/internal/security"
)

// logout clears the auth cookie. Idempotent: logging out without a cookie
// still succeeds. The ticket itself stays cryptographically valid until it
// expires - revocation lists are out of scope - so logout is strictly a
// browser-side cleanup.
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	noStore(w)
	security.ClearAuthCookie(w, h.cfg.CookieOpts())

	if returnTo := r.URL.Query().Get("return_to"); returnTo != "" {
		if sanitized, err := h.policy.SanitizeReturnURL(returnTo); err == nil {
			http.Redirect(w, r, sanitized, http.StatusSeeOther)
			return
		}
		// An unlisted target just falls back to the JSON response; there is
		// nothing sensitive to protect on the way out.
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
