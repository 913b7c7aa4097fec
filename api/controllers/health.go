package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/parttrack/parttrack-backend/api/responses"
	"github.com/parttrack/parttrack-backend/pkg/config"
)

// Pinger is the health-check surface of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PartTrack-Env", cfg.App.Env)
		responses.WriteData(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness of the datastore and broker. A nil pinger is
// treated as not configured and skipped.
func HealthReady(cfg *config.Config, db Pinger, broker Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PartTrack-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if db != nil {
			checks["db"] = "ok"
			if err := db.Ping(ctx); err != nil {
				checks["db"] = "unreachable"
				healthy = false
			}
		}
		if broker != nil {
			checks["redis"] = "ok"
			if err := broker.Ping(ctx); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			}
		}

		status := http.StatusOK
		state := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": state, "checks": checks})
	}
}
