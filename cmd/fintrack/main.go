package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/auth"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	loc := cli.MustLocation(logger, cfg)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	backend := cli.OpenStore(ctx, logger, cfg)

	authenticator, err := auth.NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL, logger)
	if err != nil {
		logger.Error("Failed to initialize authenticator", log.FieldError, err)
		os.Exit(1)
	}

	opts := services.Options{
		Location:        loc,
		Logger:          logger,
		DefaultCurrency: cfg.DefaultCurrency,
	}
	deps := apphttp.Deps{
		Store:  backend.Store,
		Auth:   authenticator,
		Logger: logger,
	}
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		opts.Events = amqpClient
		deps.Sweeps = amqpClient
	}

	deps.Services = apphttp.Services{
		Accounts:     services.NewAccountService(backend.Store, opts),
		Categories:   services.NewCategoryService(backend.Store, opts),
		Transactions: services.NewTransactionService(backend.Store, opts),
		Budgets:      services.NewBudgetService(backend.Store, opts),
		Recurring:    services.NewRecurringService(backend.Store, opts),
		Analytics:    services.NewAnalyticsService(backend.Store, opts),
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		Location:           loc,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		DashboardCacheTTL:  cfg.DashboardCacheTTL,
	}, deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"timezone", cfg.Timezone,
			"amqp_enabled", amqpClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	cleanups := []func() error{backend.Cleanup}
	if amqpClient != nil {
		cleanups = append([]func() error{amqpClient.Close}, cleanups...)
	}
	cli.CloseAll(logger, cleanups...)

	if err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
