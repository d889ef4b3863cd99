package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/api/routes"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/collections"
	"github.com/angelmondragon/storefront/internal/preferences"
	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/reviews"
	"github.com/angelmondragon/storefront/internal/searches"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/env"
	"github.com/angelmondragon/storefront/pkg/instance"
	"github.com/angelmondragon/storefront/pkg/kv"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "storefront stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collectionMetrics := metrics.NewCollectionMetrics(registry)

	be, err := openBackend(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, be.close())
	}()

	store, err := collections.New(collections.Params{
		KV:        be.store,
		Namespace: cfg.Storage.Namespace,
		Logger:    logg,
		Metrics:   collectionMetrics,
	})
	if err != nil {
		return err
	}

	catalog, err := product.LoadCatalog(cfg.Storefront.CatalogPath)
	if err != nil {
		return err
	}

	cartService, err := cart.NewService(ctx, cart.ServiceParams{
		Store:   store,
		Logger:  logg,
		Metrics: collectionMetrics,
	})
	if err != nil {
		return err
	}
	wishlistService, err := wishlist.NewService(ctx, wishlist.ServiceParams{
		Store:        store,
		Logger:       logg,
		Metrics:      collectionMetrics,
		CompareLimit: cfg.Storefront.CompareLimit,
	})
	if err != nil {
		return err
	}
	reviewService, err := reviews.NewService(ctx, reviews.ServiceParams{
		Store:         store,
		Logger:        logg,
		Metrics:       collectionMetrics,
		StrictRatings: cfg.Storefront.StrictReviewRatings,
	})
	if err != nil {
		return err
	}
	searchService, err := searches.NewService(ctx, searches.ServiceParams{
		Store:   store,
		Logger:  logg,
		Metrics: collectionMetrics,
		Limit:   cfg.Storefront.RecentSearchLimit,
	})
	if err != nil {
		return err
	}
	preferenceService, err := preferences.NewService(ctx, preferences.ServiceParams{
		Store:  store,
		Logger: logg,
	})
	if err != nil {
		return err
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"storage":  cfg.Storage.DriverName(),
		"products": len(catalog.Products()),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			store,
			be.store,
			registry,
			catalog,
			cartService,
			wishlistService,
			reviewService,
			searchService,
			preferenceService,
		),
	}

	if sweeper, ok := be.store.(kv.Sweeper); ok {
		go sweepExpired(ctx, sweeper, cfg.HTTP.SweepInterval, logg)
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting storefront server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down storefront server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownWait)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
