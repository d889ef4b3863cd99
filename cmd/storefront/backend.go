package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/kv"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/migrate"
	"github.com/angelmondragon/storefront/pkg/redis"
)

// backend is the selected collection store plus its shutdown hook.
type backend struct {
	store kv.ExpiringStore
	close func() error
}

func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backend, error) {
	driver := cfg.Storage.DriverName()
	ctx = logg.WithField(ctx, "driver", driver)

	switch {
	case driver == config.DriverMemory:
		mem := kv.NewMemory()
		logg.Warn(ctx, "memory storage selected; collections will not survive a restart")
		return &backend{store: mem, close: mem.Close}, nil

	case driver == config.DriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		return &backend{store: client, close: client.Close}, nil

	case cfg.Storage.IsSQL():
		client, err := db.New(ctx, driver, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if cfg.Storage.AutoMigrate {
			sqlDB, err := client.SQLDB()
			if err == nil {
				err = migrate.Up(ctx, sqlDB, driver)
			}
			if err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logg.Info(ctx, "collection migrations applied")
		}
		return &backend{store: db.NewKVStore(client.DB()), close: client.Close}, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", driver)
}
