// Package cli provides common CLI initialization utilities shared by the
// fintrack binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// SetupLogger initializes structured logging at the given level and sets it as
// the process-wide default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// MustLocation resolves the configured time zone or exits.
func MustLocation(logger *log.Logger, cfg *config.Config) *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to load time zone", "timezone", cfg.Timezone, log.FieldError, err)
		os.Exit(1)
	}
	return loc
}

// OpenStore opens the configured ledger backend.
// Returns the backend or exits the process on failure.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open ledger store", "backend", cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}
	return res
}

// ConnectAMQP returns nil when AMQP is not configured or the broker is
// unreachable; callers decide whether that is fatal.
func ConnectAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled")
		return nil
	}
	client, err := amqp.NewClient(amqp.Config{
		URL:          cfg.AMQPURL,
		ExchangeName: cfg.AMQPExchange,
		EventQueue:   cfg.AMQPQueue,
		TriggerQueue: cfg.AMQPTriggerQueue,
	}, logger)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client", log.FieldError, err)
		return nil
	}
	logger.Info("AMQP client initialized",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"trigger_queue", cfg.AMQPTriggerQueue)
	return client
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// CloseAll runs cleanup functions in order, logging failures.
func CloseAll(logger *log.Logger, fns ...func() error) {
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		if err := fn(); err != nil {
			logger.Warn("Cleanup failed", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
	}
}
