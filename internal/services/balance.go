package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// BalanceMaintainer is the only code path that mutates Account.CurrentBalance.
// Callers run it inside Store.Atomic so a failure leaves no partial effect.
type BalanceMaintainer struct{}

// ApplyEffect adds delta to the account balance.
func (BalanceMaintainer) ApplyEffect(ctx context.Context, l store.AccountStore, accountID string, delta decimal.Decimal) error {
	acc, err := l.GetAccount(ctx, accountID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("apply balance effect to %s: %w", accountID, core.ErrAccountNotFound)
	}
	if err != nil {
		return fmt.Errorf("load account %s: %w", accountID, err)
	}
	acc.CurrentBalance = acc.CurrentBalance.Add(delta)
	if err := l.UpdateAccount(ctx, acc); err != nil {
		return fmt.Errorf("update balance of %s: %w", accountID, err)
	}
	return nil
}

// ReverseEffect undoes a previously applied delta.
func (b BalanceMaintainer) ReverseEffect(ctx context.Context, l store.AccountStore, accountID string, delta decimal.Decimal) error {
	return b.ApplyEffect(ctx, l, accountID, delta.Neg())
}

func (b BalanceMaintainer) ApplyTransaction(ctx context.Context, l store.AccountStore, t core.Transaction) error {
	return b.ApplyEffect(ctx, l, t.AccountID, t.Signed())
}

func (b BalanceMaintainer) ReverseTransaction(ctx context.Context, l store.AccountStore, t core.Transaction) error {
	return b.ReverseEffect(ctx, l, t.AccountID, t.Signed())
}

// Recompute returns initialBalance plus the signed sum of the account's transactions.
func (BalanceMaintainer) Recompute(ctx context.Context, l store.Ledger, acc core.Account) (decimal.Decimal, error) {
	txns, err := l.ListTransactionsByAccount(ctx, acc.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list transactions of %s: %w", acc.ID, err)
	}
	total := acc.InitialBalance
	for _, t := range txns {
		total = total.Add(t.Signed())
	}
	return total, nil
}
