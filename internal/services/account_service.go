package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// AccountService manages accounts and their balance bookkeeping.
type AccountService struct {
	base
	defaultCurrency string
}

func NewAccountService(st store.Store, opts Options) *AccountService {
	currency := strings.ToUpper(strings.TrimSpace(opts.DefaultCurrency))
	if currency == "" {
		currency = "INR"
	}
	return &AccountService{base: newBase(st, opts, log.ComponentLedger), defaultCurrency: currency}
}

// Create stores a new account whose current balance starts at its initial balance.
func (s *AccountService) Create(ctx context.Context, caller core.UserID, draft core.Account) (core.Account, error) {
	if err := caller.Validate(); err != nil {
		return core.Account{}, err
	}
	a := core.Account{
		ID:             uuid.NewString(),
		Owner:          caller,
		Name:           strings.TrimSpace(draft.Name),
		Type:           draft.Type,
		IsBusiness:     draft.IsBusiness,
		Currency:       strings.ToUpper(strings.TrimSpace(draft.Currency)),
		InitialBalance: draft.InitialBalance,
		CurrentBalance: draft.InitialBalance,
		CreatedAt:      s.now(),
	}
	if a.Currency == "" {
		a.Currency = s.defaultCurrency
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.InsertAccount(ctx, a); err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.logger.InfoContext(ctx, "Account created", log.FieldAccountID, a.ID, log.FieldUser, string(caller))
	return a, nil
}

func (s *AccountService) Get(ctx context.Context, caller core.UserID, id string) (core.Account, error) {
	if err := caller.Validate(); err != nil {
		return core.Account{}, err
	}
	return ownedAccount(ctx, s.store, caller, id)
}

// List returns non-archived accounts, optionally restricted by the business flag.
func (s *AccountService) List(ctx context.Context, caller core.UserID, isBusiness *bool) ([]core.Account, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	all, err := s.store.ListAccounts(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]core.Account, 0, len(all))
	for _, a := range all {
		if a.Archived {
			continue
		}
		if isBusiness != nil && a.IsBusiness != *isBusiness {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Update changes name, type or business flag. Balances are never edited here.
func (s *AccountService) Update(ctx context.Context, caller core.UserID, id string, upd core.AccountUpdate) (core.Account, error) {
	if err := caller.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := upd.Validate(); err != nil {
		return core.Account{}, err
	}
	var updated core.Account
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		a, err := ownedAccount(ctx, l, caller, id)
		if err != nil {
			return err
		}
		updated = upd.Apply(a)
		return l.UpdateAccount(ctx, updated)
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	return updated, nil
}

// Archive soft-deletes an account; its transactions stay untouched.
func (s *AccountService) Archive(ctx context.Context, caller core.UserID, id string) error {
	if err := caller.Validate(); err != nil {
		return err
	}
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		a, err := ownedAccount(ctx, l, caller, id)
		if err != nil {
			return err
		}
		a.Archived = true
		return l.UpdateAccount(ctx, a)
	})
	if err != nil {
		return fmt.Errorf("archive account: %w", err)
	}
	s.logger.InfoContext(ctx, "Account archived", log.FieldAccountID, id)
	return nil
}

// ReconcileBalance recomputes the balance from scratch and corrects drift.
func (s *AccountService) ReconcileBalance(ctx context.Context, caller core.UserID, id string) (core.BalanceReconciliation, error) {
	if err := caller.Validate(); err != nil {
		return core.BalanceReconciliation{}, err
	}
	var res core.BalanceReconciliation
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		a, err := ownedAccount(ctx, l, caller, id)
		if err != nil {
			return err
		}
		computed, err := s.balance.Recompute(ctx, l, a)
		if err != nil {
			return err
		}
		res = core.BalanceReconciliation{AccountID: a.ID, Previous: a.CurrentBalance, Computed: computed}
		if computed.Equal(a.CurrentBalance) {
			return nil
		}
		res.Corrected = true
		a.CurrentBalance = computed
		return l.UpdateAccount(ctx, a)
	})
	if err != nil {
		return core.BalanceReconciliation{}, fmt.Errorf("reconcile balance: %w", err)
	}
	if res.Corrected {
		s.logger.WarnContext(ctx, "Balance drift corrected",
			log.FieldAccountID, id,
			"previous", res.Previous.String(),
			"computed", res.Computed.String())
	}
	return res, nil
}
