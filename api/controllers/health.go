package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/pageturn/bookstore-backend/api/responses"
	"github.com/pageturn/bookstore-backend/pkg/config"
	pkgerrors "github.com/pageturn/bookstore-backend/pkg/errors"
	"github.com/pageturn/bookstore-backend/pkg/logger"
)

const envHeader = "X-Bookstore-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when the datastores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]pinger{
			"database": database,
			"redis":    cache,
		}
		statuses := map[string]string{}
		ready := true
		for name, dep := range checks {
			if dep == nil {
				statuses[name] = "not_configured"
				ready = false
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness probe failed", err)
				}
				statuses[name] = "unreachable"
				ready = false
				continue
			}
			statuses[name] = "ok"
		}

		if !ready {
			responses.WriteError(r.Context(), nil, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
