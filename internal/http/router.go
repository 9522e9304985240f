package httpx

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/stellwand/sso-cookie-helper/internal/config"
	"github.com/stellwand/sso-cookie-helper/internal/observability"
	"github.com/stellwand/sso-cookie-helper/internal/security"
	"github.com/stellwand/sso-cookie-helper/internal/userstore"
)

// handlers bundles the dependencies every endpoint shares. All fields are
// read-only after construction; the store and limiter do their own locking.
type handlers struct {
	cfg     config.Config
	users   *userstore.Store
	logger  *zap.Logger
	metrics *observability.Metrics
	policy  *security.ReturnPolicy
	limiter *ipLimiter

	// now is the clock used for issuing and verifying; swapped in tests.
	now func() time.Time
}

// NewRouter wires the endpoints, middleware, and metrics into an
// http.Handler. The config must already be validated.
func NewRouter(cfg config.Config, users *userstore.Store, logger *zap.Logger, metrics *observability.Metrics) (http.Handler, error) {
	policy, err := cfg.BuildReturnPolicy()
	if err != nil {
		return nil, fmt.Errorf("build return policy: %w", err)
	}

	h := &handlers{
		cfg:     cfg,
		users:   users,
		logger:  logger,
		metrics: metrics,
		policy:  policy,
		limiter: newIPLimiter(cfg.LoginRate, cfg.LoginBurst),
		now:     time.Now,
	}

	return h.routes(), nil
}

func (h *handlers) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger, h.metrics))
	r.Use(middleware.Recoverer)

	if h.cfg.EnableHSTS {
		r.Use(hstsMiddleware)
	}

	r.Post(RouteLogin, h.login)
	r.Get(RouteAuth, h.auth)
	r.Get(RouteLogout, h.logout)
	r.Get(RouteHealth, h.healthz)
	r.Method(http.MethodGet, RouteMetrics, h.metrics.Handler())

	return r
}
