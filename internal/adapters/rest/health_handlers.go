package rest

import (
	"context"
	"net/http"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/port"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck - проверка одной зависимости (БД, Redis, брокер).
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{checks: checks}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Time   time.Time         `json:"time"`
}

// Health обрабатывает GET /health. 503, если хотя бы одна проверка не прошла.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks)), Time: time.Now().UTC()}
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			contextkeys.LoggerFromContext(r.Context()).Warn("Health check failed", port.Fields{
				"check": name,
				"error": err.Error(),
			})
			resp.Checks[name] = "down"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "up"
	}
	RespondWithJSON(w, code, resp)
}
