package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// EventPublisher receives ledger events after the change has committed.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev core.LedgerEvent) error
}

// Options carries the collaborators shared by every service.
type Options struct {
	// Location is used for calendar arithmetic (months, recurrence). Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
	Logger   *log.Logger
	// Events may be nil; publishing is then skipped.
	Events          EventPublisher
	DefaultCurrency string
}

type base struct {
	store   store.Store
	loc     *time.Location
	now     func() time.Time
	logger  *log.Logger
	events  EventPublisher
	balance BalanceMaintainer
}

func newBase(st store.Store, opts Options, component string) base {
	b := base{
		store:  st,
		loc:    opts.Location,
		now:    opts.Now,
		logger: opts.Logger,
		events: opts.Events,
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.logger == nil {
		b.logger = log.Default(component)
	} else {
		b.logger = b.logger.WithComponent(component)
	}
	return b
}

func (b base) publish(ctx context.Context, typ core.EventType, t core.Transaction) {
	if b.events == nil {
		b.logger.DebugContext(ctx, "Event publisher not configured, skipping ledger event", log.FieldEventType, string(typ))
		return
	}
	ev := core.LedgerEvent{
		Type:          typ,
		Owner:         t.Owner,
		TransactionID: t.ID,
		AccountID:     t.AccountID,
		TemplateID:    t.RecurringTemplateID,
		OccurredAt:    b.now(),
	}
	if err := b.events.PublishLedgerEvent(ctx, ev); err != nil {
		// The ledger change is committed; the event is best effort.
		b.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventType, string(typ),
			log.FieldTransaction, t.ID,
			log.FieldError, err)
	}
}

// ownedAccount returns the caller's account or ErrNotFound.
func ownedAccount(ctx context.Context, l store.AccountStore, caller core.UserID, id string) (core.Account, error) {
	a, err := l.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("account %s: %w", id, err)
	}
	if a.Owner != caller {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return a, nil
}

// referencedAccount resolves an account referenced by a transaction or
// template; a missing or foreign account is ErrAccountNotFound.
func referencedAccount(ctx context.Context, l store.AccountStore, caller core.UserID, id string) (core.Account, error) {
	a, err := ownedAccount(ctx, l, caller, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrAccountNotFound)
	}
	return a, err
}

// visibleCategory returns a category owned by the caller or a global one.
func visibleCategory(ctx context.Context, l store.CategoryStore, caller core.UserID, id string) (core.Category, error) {
	c, err := l.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("category %s: %w", id, err)
	}
	if c.Owner != "" && c.Owner != caller {
		return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func ownedTransaction(ctx context.Context, l store.TransactionStore, caller core.UserID, id string) (core.Transaction, error) {
	t, err := l.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, err)
	}
	if t.Owner != caller {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func ownedBudget(ctx context.Context, l store.BudgetStore, caller core.UserID, id string) (core.Budget, error) {
	b, err := l.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, err)
	}
	if b.Owner != caller {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return b, nil
}

func ownedTemplate(ctx context.Context, l store.TemplateStore, caller core.UserID, id string) (core.RecurringTemplate, error) {
	r, err := l.GetTemplate(ctx, id)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("recurring template %s: %w", id, err)
	}
	if r.Owner != caller {
		return core.RecurringTemplate{}, fmt.Errorf("recurring template %s: %w", id, core.ErrNotFound)
	}
	return r, nil
}

// refs indexes a user's accounts and visible categories for enrichment.
type refs struct {
	accounts   map[string]core.Account
	categories map[string]core.Category
}

func loadRefs(ctx context.Context, l store.Ledger, caller core.UserID) (refs, error) {
	accounts, err := l.ListAccounts(ctx, caller)
	if err != nil {
		return refs{}, err
	}
	categories, err := l.ListCategories(ctx, caller)
	if err != nil {
		return refs{}, err
	}
	r := refs{
		accounts:   make(map[string]core.Account, len(accounts)),
		categories: make(map[string]core.Category, len(categories)),
	}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r, nil
}

func (r refs) account(id string) *core.Account {
	if a, ok := r.accounts[id]; ok {
		return &a
	}
	return nil
}

func (r refs) category(id string) *core.Category {
	if c, ok := r.categories[id]; ok {
		return &c
	}
	return nil
}

func (r refs) transaction(t core.Transaction) core.TransactionView {
	return core.TransactionView{Transaction: t, Account: r.account(t.AccountID), Category: r.category(t.CategoryID)}
}

func (r refs) template(t core.RecurringTemplate) core.TemplateView {
	return core.TemplateView{RecurringTemplate: t, Account: r.account(t.AccountID), Category: r.category(t.CategoryID)}
}
