package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/stellwand/sso-cookie-helper/internal/config"
	"github.com/stellwand/sso-cookie-helper/internal/observability"
	"github.com/stellwand/sso-cookie-helper/internal/security"
	"github.com/stellwand/sso-cookie-helper/internal/userstore"
)

const testUserAgent = "Mozilla/5.0 (X11; Linux x86_64) test-browser/1.0"

// testClock is a controllable clock for handler tests.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

// newTestHandlers builds a handler set over a temp userstore holding
// alice/wonderland (admin,ops) and bob/builder (viewer), with a fixed clock.
func newTestHandlers(t *testing.T, mutate func(*config.Config)) (*handlers, http.Handler, *testClock) {
	t.Helper()

	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		if err != nil {
			t.Fatal(err)
		}
		return string(h)
	}

	usersPath := filepath.Join(t.TempDir(), "users.txt")
	content := "alice:" + hash("wonderland") + ":admin,ops\n" +
		"bob:" + hash("builder") + ":viewer\n"
	if err := os.WriteFile(usersPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	users, err := userstore.Open(usersPath)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		Env:          "dev",
		Port:         "8080",
		SigningKey:   bytes.Repeat([]byte{0x5a}, 32),
		TicketMaxAge: 24 * time.Hour,
		TicketSkew:   5 * time.Minute,
		CookieName:   security.AuthCookieName,
		UsersFile:    usersPath,
		ReturnHosts:  []string{"portal.example.com"},
		ReturnParams: []string{"utm_source"},
		LoginRate:    100,
		LoginBurst:   100,
		LogLevel:     "info",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	policy, err := cfg.BuildReturnPolicy()
	if err != nil {
		t.Fatal(err)
	}

	clock := &testClock{now: time.Unix(1700000000, 0)}
	h := &handlers{
		cfg:     cfg,
		users:   users,
		logger:  zap.NewNop(),
		metrics: observability.NewMetrics(),
		policy:  policy,
		limiter: newIPLimiter(cfg.LoginRate, cfg.LoginBurst),
		now:     clock.Now,
	}
	return h, h.routes(), clock
}

// doLogin posts credentials and returns the response.
func doLogin(t *testing.T, router http.Handler, form url.Values) *http.Response {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, RouteLogin, strings.NewReader(form.Encode()))
	r.Header.Set(HeaderContentType, ContentTypeFormURLEncoded)
	r.Header.Set("User-Agent", testUserAgent)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w.Result()
}

// loginCookie logs in as alice and returns the auth cookie.
func loginCookie(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()
	resp := doLogin(t, router, url.Values{"username": {"alice"}, "password": {"wonderland"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == security.AuthCookieName {
			return c
		}
	}
	t.Fatal("login response has no auth cookie")
	return nil
}

// doAuth performs GET /auth with the given cookie and user agent.
func doAuth(t *testing.T, router http.Handler, cookie *http.Cookie, userAgent string) *http.Response {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, RouteAuth, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	if userAgent != "" {
		r.Header.Set("User-Agent", userAgent)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w.Result()
}
