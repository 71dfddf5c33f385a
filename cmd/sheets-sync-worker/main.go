package main

import (
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting sheets-sync-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	loc := cli.MustLocation(logger, cfg)

	if !cfg.SheetsEnabled() {
		logger.Error("Google Sheets not configured, set GOOGLE_SPREADSHEET_ID and service account credentials")
		os.Exit(1)
	}

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	backend := cli.OpenStore(ctx, logger, cfg)

	sheetsClient, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		cli.CloseAll(logger, backend.Cleanup)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient == nil {
		logger.Error("AMQP is required to receive ledger events")
		cli.CloseAll(logger, backend.Cleanup)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(backend.Store, sheetsClient, loc, logger)

	if cfg.SheetsResyncOnStartup && cfg.SheetsResyncUser != "" {
		logger.Info("Performing startup resync...", log.FieldUser, cfg.SheetsResyncUser)
		if _, err := syncWorker.Resync(ctx, core.UserID(cfg.SheetsResyncUser)); err != nil {
			// Keep consuming; live events still flow.
			logger.Error("Failed startup resync", log.FieldError, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeLedgerEvents(gctx, syncWorker.HandleLedgerEvent)
	})
	err = g.Wait()

	cli.CloseAll(logger, amqpClient.Close, backend.Cleanup)

	if err != nil && ctx.Err() == nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Sheets-sync-worker shutdown complete")
}
