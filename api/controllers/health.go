package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/storefrontlabs/storefront/api/responses"
	"github.com/storefrontlabs/storefront/pkg/config"
	"github.com/storefrontlabs/storefront/pkg/db"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
	"github.com/storefrontlabs/storefront/pkg/logger"
	"github.com/storefrontlabs/storefront/pkg/redis"
)

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

// HealthReady verifies the datastore dependencies are reachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		deps := []struct {
			name string
			ping func(context.Context) error
		}{
			{"postgres", pingFn(dbP)},
			{"redis", pingFn(redisP)},
		}
		for _, dep := range deps {
			if dep.ping == nil {
				checks[dep.name] = "skipped"
				continue
			}
			if err := dep.ping(ctx); err != nil {
				checks[dep.name] = "down"
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable").
						WithDetails(checks))
				return
			}
			checks[dep.name] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}

func pingFn(p interface {
	Ping(ctx context.Context) error
}) func(context.Context) error {
	if p == nil {
		return nil
	}
	return p.Ping
}
