package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/scanpos/scanpos-backend/api/routes"
	"github.com/scanpos/scanpos-backend/internal/catalog"
	"github.com/scanpos/scanpos-backend/internal/checkout"
	"github.com/scanpos/scanpos-backend/internal/transactions"
	"github.com/scanpos/scanpos-backend/pkg/config"
	"github.com/scanpos/scanpos-backend/pkg/db"
	"github.com/scanpos/scanpos-backend/pkg/idmask"
	"github.com/scanpos/scanpos-backend/pkg/logger"
	"github.com/scanpos/scanpos-backend/pkg/metrics"
	"github.com/scanpos/scanpos-backend/pkg/migrate"
	"github.com/scanpos/scanpos-backend/pkg/receipt"
	"github.com/scanpos/scanpos-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	deps := routes.Deps{
		Config: cfg,
		Logger: logg,
		DB:     dbClient,
	}

	if cfg.Redis.Enabled() {
		redisClient, redisErr := redis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		deps.Redis = redisClient
		deps.Idempotency = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, checkout idempotency disabled")
	}

	masker, err := idmask.New(cfg.Mask.Secret)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	items := catalog.NewRepository(dbClient.DB())
	sales := transactions.NewRepository(dbClient.DB())

	if deps.Catalog, err = catalog.NewService(items, sales, masker); err != nil {
		return err
	}
	if deps.Transactions, err = transactions.NewService(sales, masker); err != nil {
		return err
	}
	deps.Checkout, err = checkout.NewService(checkout.Deps{
		Tx:           dbClient,
		Items:        items,
		Transactions: sales,
		Masker:       masker,
		Receipts:     receipt.NewGenerator(cfg.Checkout.ReceiptPrefix, receipt.SystemClock),
		Clock:        receipt.SystemClock,
		Metrics:      metrics.NewCheckoutMetrics(registry),
		Logger:       logg,
	})
	if err != nil {
		return err
	}
	deps.HTTPMetrics = metrics.NewHTTPMetrics(registry)
	deps.Gatherer = registry

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
