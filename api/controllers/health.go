package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/crumbandco/cakeshop-backend/api/responses"
	"github.com/crumbandco/cakeshop-backend/pkg/config"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

const readyCheckTimeout = 2 * time.Second

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyCheck names one dependency probed by the readiness endpoint.
type ReadyCheck struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cakeshop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes each dependency and reports per-dependency status. Any
// failure flips the response to 503 so the load balancer stops routing here.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks ...ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cakeshop-Env", cfg.App.Env)

		statuses := make(map[string]string, len(checks))
		healthy := true
		for _, check := range checks {
			if check.Pinger == nil {
				statuses[check.Name] = "not configured"
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
			err := check.Pinger.Ping(ctx)
			cancel()
			if err != nil {
				healthy = false
				statuses[check.Name] = "unreachable"
				if logg != nil {
					logg.Error(r.Context(), "readiness check failed: "+check.Name, err)
				}
				continue
			}
			statuses[check.Name] = "ok"
		}

		payload := map[string]any{
			"status": "ready",
			"checks": statuses,
		}
		if !healthy {
			payload["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, payload)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
