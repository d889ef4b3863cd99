package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Healthz(cfg *config.Config, store Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage unavailable").
					WithDetails(map[string]any{"driver": cfg.Storage.DriverName()}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{
			"status":  "ok",
			"storage": cfg.Storage.DriverName(),
		})
	}
}
