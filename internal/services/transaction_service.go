package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// TransactionService records transactions and keeps account balances in step.
// Every mutation runs the ledger write and its balance effect in one atomic unit,
// then publishes a ledger event.
type TransactionService struct {
	base
}

func NewTransactionService(st store.Store, opts Options) *TransactionService {
	return &TransactionService{base: newBase(st, opts, log.ComponentLedger)}
}

// Create inserts the transaction and applies its signed amount to the account.
func (s *TransactionService) Create(ctx context.Context, caller core.UserID, draft core.Transaction) (core.Transaction, error) {
	if err := caller.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := s.now()
	t := draft
	t.ID = uuid.NewString()
	t.Owner = caller
	t.Description = strings.TrimSpace(t.Description)
	t.RecurringTemplateID = ""
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		if _, err := referencedAccount(ctx, l, caller, t.AccountID); err != nil {
			return err
		}
		if _, err := visibleCategory(ctx, l, caller, t.CategoryID); err != nil {
			return err
		}
		if err := l.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return s.balance.ApplyTransaction(ctx, l, t)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldTransaction, t.ID,
		log.FieldAccountID, t.AccountID,
		log.FieldKind, string(t.Kind),
		log.FieldAmount, t.Amount.String())
	s.publish(ctx, core.EventTransactionCreated, t)
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, caller core.UserID, id string) (core.TransactionView, error) {
	if err := caller.Validate(); err != nil {
		return core.TransactionView{}, err
	}
	t, err := ownedTransaction(ctx, s.store, caller, id)
	if err != nil {
		return core.TransactionView{}, err
	}
	r, err := loadRefs(ctx, s.store, caller)
	if err != nil {
		return core.TransactionView{}, fmt.Errorf("get transaction: %w", err)
	}
	return r.transaction(t), nil
}

// List returns matching transactions newest first, enriched with account and category.
func (s *TransactionService) List(ctx context.Context, caller core.UserID, f core.TransactionFilter) ([]core.TransactionView, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	all, err := s.store.ListTransactions(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	matched := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if f.Matches(t) {
			matched = append(matched, t)
		}
	}
	sortNewestFirst(matched)
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}

	r, err := loadRefs(ctx, s.store, caller)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.TransactionView, len(matched))
	for i, t := range matched {
		out[i] = r.transaction(t)
	}
	return out, nil
}

// Update reverses the old effect on the old account, applies the field changes,
// then applies the new effect on the (possibly different) new account.
func (s *TransactionService) Update(ctx context.Context, caller core.UserID, id string, upd core.TransactionUpdate) (core.Transaction, error) {
	if err := caller.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := upd.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var updated core.Transaction
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		old, err := ownedTransaction(ctx, l, caller, id)
		if err != nil {
			return err
		}
		if err := s.balance.ReverseTransaction(ctx, l, old); err != nil {
			return err
		}

		updated = upd.Apply(old)
		updated.Description = strings.TrimSpace(updated.Description)
		updated.UpdatedAt = s.now()
		if err := updated.Validate(); err != nil {
			return err
		}
		if upd.AccountID != nil {
			if _, err := referencedAccount(ctx, l, caller, updated.AccountID); err != nil {
				return err
			}
		}
		if upd.CategoryID != nil {
			if _, err := visibleCategory(ctx, l, caller, updated.CategoryID); err != nil {
				return err
			}
		}
		if err := l.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		return s.balance.ApplyTransaction(ctx, l, updated)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction updated", log.FieldTransaction, id, log.FieldAccountID, updated.AccountID)
	s.publish(ctx, core.EventTransactionUpdated, updated)
	return updated, nil
}

// Delete reverses the transaction's balance effect and removes it.
func (s *TransactionService) Delete(ctx context.Context, caller core.UserID, id string) error {
	if err := caller.Validate(); err != nil {
		return err
	}
	var removed core.Transaction
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		t, err := ownedTransaction(ctx, l, caller, id)
		if err != nil {
			return err
		}
		if err := s.balance.ReverseTransaction(ctx, l, t); err != nil {
			return err
		}
		removed = t
		return l.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransaction, id)
	s.publish(ctx, core.EventTransactionDeleted, removed)
	return nil
}

// sortNewestFirst orders by date descending, then creation time descending.
func sortNewestFirst(ts []core.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.After(ts[j].Date)
		}
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID > ts[j].ID
	})
}
