package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store/memory"
)

const (
	alice core.UserID = "alice"
	bob   core.UserID = "bob"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev core.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []core.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	store        *memory.Store
	events       *recordingPublisher
	now          time.Time
	accounts     *AccountService
	categories   *CategoryService
	transactions *TransactionService
	budgets      *BudgetService
	recurring    *RecurringService
	processor    *RecurringProcessor
	analytics    *AnalyticsService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), events: &recordingPublisher{}, now: now}
	opts := Options{
		Location: time.UTC,
		Now:      func() time.Time { return f.now },
		Logger:   log.Discard(),
		Events:   f.events,
	}
	f.accounts = NewAccountService(f.store, opts)
	f.categories = NewCategoryService(f.store, opts)
	f.transactions = NewTransactionService(f.store, opts)
	f.budgets = NewBudgetService(f.store, opts)
	f.recurring = NewRecurringService(f.store, opts)
	f.processor = NewRecurringProcessor(f.store, opts)
	f.analytics = NewAnalyticsService(f.store, opts)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) account(t *testing.T, owner core.UserID, name, initial string, business bool) core.Account {
	t.Helper()
	a, err := f.accounts.Create(context.Background(), owner, core.Account{
		Name:           name,
		Type:           core.AccountSavings,
		IsBusiness:     business,
		InitialBalance: dec(initial),
	})
	if err != nil {
		t.Fatalf("create account %q: %v", name, err)
	}
	return a
}

func (f *fixture) category(t *testing.T, owner core.UserID, label string, kind core.Kind) core.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), owner, core.Category{Label: label, Kind: kind, Scope: core.ScopeBoth})
	if err != nil {
		t.Fatalf("create category %q: %v", label, err)
	}
	return c
}

func (f *fixture) txn(t *testing.T, owner core.UserID, acc core.Account, cat core.Category, kind core.Kind, amount string, on time.Time) core.Transaction {
	t.Helper()
	tx, err := f.transactions.Create(context.Background(), owner, core.Transaction{
		AccountID:   acc.ID,
		CategoryID:  cat.ID,
		Date:        on,
		Amount:      dec(amount),
		Kind:        kind,
		IsBusiness:  acc.IsBusiness,
		Description: string(kind) + " " + amount,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func (f *fixture) balance(t *testing.T, owner core.UserID, id string) decimal.Decimal {
	t.Helper()
	a, err := f.accounts.Get(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return a.CurrentBalance
}

func assertBalance(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("balance = %s, want %s", got, want)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
