package main

import (
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	loc := cli.MustLocation(logger, cfg)
	hour, minute, err := cfg.SweepClock()
	if err != nil {
		logger.Error("Invalid sweep time", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	backend := cli.OpenStore(ctx, logger, cfg)

	// Materialized transactions are announced so the sheets worker mirrors them.
	opts := services.Options{
		Location:        loc,
		Logger:          logger,
		DefaultCurrency: cfg.DefaultCurrency,
	}
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		opts.Events = amqpClient
	}

	processor := services.NewRecurringProcessor(backend.Store, opts)
	scheduler := worker.NewScheduler(processor, worker.SchedulerConfig{
		Hour:     hour,
		Minute:   minute,
		Interval: cfg.RecurringSweepInterval,
		Location: loc,
	}, logger)

	logger.Info("Recurring sweep configured",
		"sweep_at", cfg.RecurringSweepAt,
		"interval", cfg.RecurringSweepInterval,
		"timezone", cfg.Timezone,
		"backend", cfg.DataBackend)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := scheduler.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})
	if amqpClient != nil {
		g.Go(func() error {
			return scheduler.ServeTriggers(gctx, amqpClient)
		})
	} else {
		logger.Info("AMQP disabled, on-demand sweeps unavailable")
	}

	err = g.Wait()

	logger.Info("Shutting down recurring-worker...")
	cleanups := []func() error{backend.Cleanup}
	if amqpClient != nil {
		cleanups = append([]func() error{amqpClient.Close}, cleanups...)
	}
	cli.CloseAll(logger, cleanups...)

	if err != nil && ctx.Err() == nil {
		logger.Error("Recurring-worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Recurring-worker shutdown complete")
}
