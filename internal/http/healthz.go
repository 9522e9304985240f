package httpx

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// HealthStatus represents the overall health status of the service.
type HealthStatus struct {
	Status string            `json:"status"`           // "ok" or "degraded"
	Checks map[string]string `json:"checks,omitempty"` // Only included in deep health checks
}

// healthz handles health check requests.
// Returns 200 OK with {"status": "ok"} for basic liveness checks.
// Supports ?check=deep for configuration and credential store validation.
func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("check") == "deep" {
		h.deepHealthCheck(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// deepHealthCheck validates the running configuration and the user store.
// Returns 200 if all checks pass, 503 if any check fails.
func (h *handlers) deepHealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allHealthy := true

	cfg := h.cfg
	if err := cfg.Validate(); err != nil {
		checks["config"] = fmt.Sprintf("invalid: %v", err)
		allHealthy = false
		h.logger.Warn("health check failed: config", zap.Error(err))
	} else {
		checks["config"] = "ok"
	}

	if len(h.cfg.SigningKey) == 0 {
		checks["signing_key"] = "missing"
		allHealthy = false
	} else {
		checks["signing_key"] = "ok"
	}

	if n := h.users.Len(); n == 0 {
		checks["userstore"] = "empty: no users loaded"
		allHealthy = false
		h.logger.Warn("health check failed: userstore empty")
	} else {
		checks["userstore"] = fmt.Sprintf("ok (%d users)", n)
	}
	h.metrics.UsersLoaded.Set(float64(h.users.Len()))

	status := HealthStatus{Status: "ok", Checks: checks}
	if !allHealthy {
		status.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
