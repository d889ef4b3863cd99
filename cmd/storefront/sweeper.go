package main

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront/pkg/kv"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// sweepExpired purges expired records every interval until ctx is done.
func sweepExpired(ctx context.Context, sweeper kv.Sweeper, interval time.Duration, logg *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, sweeper, logg)
		}
	}
}

func sweepOnce(ctx context.Context, sweeper kv.Sweeper, logg *logger.Logger) int64 {
	dropped, err := sweeper.DeleteExpired(ctx)
	if err != nil {
		if logg != nil {
			logg.Error(ctx, "sweep expired records", err)
		}
		return 0
	}
	if dropped > 0 && logg != nil {
		logg.Info(logg.WithField(ctx, "dropped", dropped), "expired records swept")
	}
	return dropped
}
