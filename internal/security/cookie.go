package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// AuthCookieName is the cookie carrying the signed auth ticket.
	AuthCookieName = "sso_auth"
)

// ErrNoAuthCookie is returned by ReadAuthCookie when the request carries no
// auth cookie at all, as opposed to carrying one that fails verification.
var ErrNoAuthCookie = errors.New("auth cookie not found")

// maxCookieBytes keeps the value under the 4KB browser cookie limit with
// room left for attributes and headers.
const maxCookieBytes = 3500

// CookieOpts controls how the auth cookie is written.
type CookieOpts struct {
	Name     string        // default AuthCookieName
	Domain   string        // e.g., ".example.com"
	Secure   bool          // true in prod
	Path     string        // default "/"
	SameSite http.SameSite // default Lax
	MaxAge   time.Duration // cookie lifetime, should match the ticket MaxAge
}

// WithDefaults returns a copy of CookieOpts with sensible defaults applied
func (opts CookieOpts) WithDefaults() CookieOpts {
	if opts.Name == "" {
		opts.Name = AuthCookieName
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = DefaultTicketMaxAge
	}
	return opts
}

// SetAuthCookie builds a ticket for the user and writes it as the auth
// cookie. The client tag should be the User-Agent the browser will present
// on the requests the ticket is meant to authenticate.
func SetAuthCookie(w http.ResponseWriter, key []byte, user, roles, clientTag string, opts CookieOpts, now time.Time) (string, error) {
	if len(key) == 0 {
		return "", errors.New("signing key is required")
	}
	opts = opts.WithDefaults()

	ticket := BuildTicket(key, user, roles, clientTag, now)
	if len(ticket) > maxCookieBytes {
		return "", fmt.Errorf("cookie value too large: %d bytes exceeds %d byte limit", len(ticket), maxCookieBytes)
	}

	cookie := &http.Cookie{
		Name:     opts.Name,
		Value:    ticket,
		Domain:   opts.Domain,
		Path:     opts.Path,
		HttpOnly: true,
		SameSite: opts.SameSite,
		Secure:   opts.Secure,
		Expires:  now.Add(opts.MaxAge),
		MaxAge:   int(opts.MaxAge.Seconds()),
	}
	http.SetCookie(w, cookie)

	// Return the ticket for logging/debugging by the caller.
	return ticket, nil
}

// ReadAuthCookie reads the auth cookie named name (AuthCookieName if empty)
// and verifies it against the request's own User-Agent, so a ticket lifted
// from one client fails on another.
func ReadAuthCookie(r *http.Request, key []byte, name string, opts TicketOpts) (Identity, error) {
	if name == "" {
		name = AuthCookieName
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return Identity{}, ErrNoAuthCookie
		}
		return Identity{}, fmt.Errorf("failed to read cookie: %w", err)
	}

	return VerifyTicket(key, cookie.Value, r.UserAgent(), opts)
}

// ClearAuthCookie sets an expired empty cookie to remove it from the browser
func ClearAuthCookie(w http.ResponseWriter, opts CookieOpts) {
	opts = opts.WithDefaults()
	cookie := &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Domain:   opts.Domain,
		Path:     opts.Path,
		HttpOnly: true,
		SameSite: opts.SameSite,
		Secure:   opts.Secure,
		MaxAge:   -1,              // Immediately expire
		Expires:  time.Unix(0, 0), // January 1, 1970
	}
	http.SetCookie(w, cookie)
}
