package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fitversal/coachmarket/internal/health"
	"github.com/fitversal/coachmarket/internal/middleware"
)

const readinessTimeout = 5 * time.Second

// HealthHandlers holds dependencies for health check endpoints.
type HealthHandlers struct {
	dbChecker      health.Checker
	redisChecker   health.Checker
	metricsEnabled bool
}

// HealthHandlersConfig configures the health endpoints. Checkers may be nil
// when the corresponding dependency is not configured, in which case they are
// skipped during readiness checks.
type HealthHandlersConfig struct {
	DBChecker      health.Checker
	RedisChecker   health.Checker
	MetricsEnabled bool
}

// NewHealthHandlers creates a new HealthHandlers instance.
func NewHealthHandlers(cfg HealthHandlersConfig) *HealthHandlers {
	return &HealthHandlers{
		dbChecker:      cfg.DBChecker,
		redisChecker:   cfg.RedisChecker,
		metricsEnabled: cfg.MetricsEnabled,
	}
}

// HealthResponse is the response body for health endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /health. It is a liveness probe: it reports that the
// process is up without touching any dependencies.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	writeHealthResponse(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. It is a readiness probe: it verifies that the
// service's dependencies are reachable. A database failure makes the service
// not ready; a cache failure is reported but does not, since search degrades
// to uncached operation.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	if h.dbChecker != nil {
		if err := h.dbChecker.HealthCheck(ctx); err != nil {
			slog.ErrorContext(ctx, "database readiness check failed", "error", err)
			checks["database"] = "unavailable"
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.redisChecker != nil {
		if err := h.redisChecker.HealthCheck(ctx); err != nil {
			slog.WarnContext(ctx, "redis readiness check failed", "error", err)
			checks["redis"] = "unavailable"
		} else {
			checks["redis"] = "ok"
		}
	}

	if h.metricsEnabled {
		checks["metrics"] = "ok"
	}

	status := http.StatusOK
	resp := HealthResponse{
		Status:    "ready",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if !ready {
		status = http.StatusServiceUnavailable
		resp.Status = "not_ready"
	}

	writeHealthResponse(w, r, status, resp)
}

func writeHealthResponse(w http.ResponseWriter, r *http.Request, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode health response", "error", err)
	}
}
