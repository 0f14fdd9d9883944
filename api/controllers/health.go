package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/attribution-backend/api/responses"
	"github.com/angelmondragon/attribution-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/attribution-backend/pkg/errors"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

const envHeader = "X-Attribution-Env"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency and fails on the first one down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx := r.Context()
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency not ready").
					WithDetails(map[string]any{"dependency": name})
				responses.WriteError(ctx, logg, w, wrapped)
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
