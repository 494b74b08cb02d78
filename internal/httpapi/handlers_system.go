package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

const healthPingTimeout = 2 * time.Second

// handleRoot is the welcome endpoint with service facts and pointers.
func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, r, http.StatusOK, map[string]any{
		"message":     "Welcome to " + a.cfg.AppName,
		"version":     a.version,
		"environment": a.cfg.Environment,
		"started":     humanize.Time(a.startedAt),
		"health":      "/v1/health",
	})
}

// handleHealth reports liveness plus database connectivity. A failed ping
// degrades the response and flips the status code to 503 so load
// balancers take the instance out of rotation.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	status := "healthy"
	database := "connected"
	code := http.StatusOK

	if err := a.db.Ping(ctx); err != nil {
		status = "degraded"
		database = "disconnected"
		code = http.StatusServiceUnavailable
	}

	a.writeJSON(w, r, code, map[string]any{
		"status":      status,
		"app_name":    a.cfg.AppName,
		"version":     a.version,
		"environment": a.cfg.Environment,
		"database":    database,
	})
}
