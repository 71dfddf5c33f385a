package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	"fintrack/internal/store"
)

// SyncWorker mirrors committed ledger changes into a spreadsheet.
type SyncWorker struct {
	ledger   store.Ledger
	exporter sheets.TransactionExporter
	loc      *time.Location
	logger   *log.Logger
}

func NewSyncWorker(ledger store.Ledger, exporter sheets.TransactionExporter, loc *time.Location, logger *log.Logger) *SyncWorker {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &SyncWorker{
		ledger:   ledger,
		exporter: exporter,
		loc:      loc,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP. The message only
// carries identifiers; the row is rebuilt from the current stored state.
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if w.ledger == nil || w.exporter == nil {
		return fmt.Errorf("sync worker not properly initialized")
	}
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEventType, string(msg.Type),
		log.FieldTransaction, msg.TransactionID,
		log.FieldUser, msg.UserID)

	if msg.Type == core.EventTransactionDeleted {
		return w.remove(ctx, msg.TransactionID)
	}

	tx, err := w.ledger.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before we got to it; the delete event may never arrive if
		// it was published while the broker was down.
		return w.remove(ctx, msg.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if tx.Owner != core.UserID(msg.UserID) {
		w.logger.WarnContext(ctx, "Ignoring ledger event with mismatched owner",
			log.FieldTransaction, msg.TransactionID,
			log.FieldUser, msg.UserID)
		return nil
	}

	if err := w.export(ctx, tx); err != nil {
		return fmt.Errorf("sync transaction to sheets: %w", err)
	}
	return nil
}

// Resync exports every transaction of owner. It is a backup for events lost
// while the worker or broker was down. Failures are logged and counted; the
// returned count is the number of rows written.
func (w *SyncWorker) Resync(ctx context.Context, owner core.UserID) (int, error) {
	txs, err := w.ledger.ListTransactions(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list transactions for resync: %w", err)
	}
	if len(txs) == 0 {
		w.logger.InfoContext(ctx, "No transactions to resync", log.FieldUser, string(owner))
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Resyncing transactions", log.FieldUser, string(owner), "count", len(txs))

	successCount := 0
	errorCount := 0
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return successCount, err
		}
		if err := w.export(ctx, tx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to resync transaction",
				log.FieldTransaction, tx.ID, log.FieldError, err)
			errorCount++
			continue
		}
		successCount++
	}

	w.logger.InfoContext(ctx, "Resync completed",
		log.FieldUser, string(owner),
		"total", len(txs),
		"synced", successCount,
		"errors", errorCount)
	return successCount, nil
}

func (w *SyncWorker) export(ctx context.Context, tx core.Transaction) error {
	view := core.TransactionView{Transaction: tx}
	if acc, err := w.ledger.GetAccount(ctx, tx.AccountID); err == nil {
		view.Account = &acc
	} else if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("get account: %w", err)
	}
	if tx.CategoryID != "" {
		if cat, err := w.ledger.GetCategory(ctx, tx.CategoryID); err == nil {
			view.Category = &cat
		} else if !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("get category: %w", err)
		}
	}

	ref, err := w.exporter.Upsert(ctx, sheets.NewTransactionRow(view, w.loc))
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Synced transaction",
		log.FieldTransaction, tx.ID,
		log.FieldSheetsRef, ref,
		log.FieldAmount, tx.Amount.StringFixed(2))
	return nil
}

func (w *SyncWorker) remove(ctx context.Context, transactionID string) error {
	if err := w.exporter.Delete(ctx, transactionID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to delete transaction from sheets",
			log.FieldTransaction, transactionID, log.FieldError, err)
		return fmt.Errorf("delete transaction from sheets: %w", err)
	}
	w.logger.InfoContext(ctx, "Deleted transaction from sheets", log.FieldTransaction, transactionID)
	return nil
}
