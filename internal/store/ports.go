// Package store defines the persistence ports of the ledger.
//
// Lookups by id return core.ErrNotFound when nothing matches. Ownership is not
// enforced here: services compare the entity owner with the caller and report
// a mismatch as core.ErrNotFound.
package store

import (
	"context"
	"time"

	"fintrack/internal/core"
)

type (
	AccountStore interface {
		InsertAccount(ctx context.Context, a core.Account) error
		GetAccount(ctx context.Context, id string) (core.Account, error)
		UpdateAccount(ctx context.Context, a core.Account) error
		// ListAccounts returns every account of owner, archived ones included.
		ListAccounts(ctx context.Context, owner core.UserID) ([]core.Account, error)
	}

	CategoryStore interface {
		InsertCategory(ctx context.Context, c core.Category) error
		GetCategory(ctx context.Context, id string) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) error
		// ListCategories returns the owner's categories followed by global ones.
		ListCategories(ctx context.Context, owner core.UserID) ([]core.Category, error)
		FindCategoryBySlug(ctx context.Context, owner core.UserID, slug string) (core.Category, error)
	}

	TransactionStore interface {
		InsertTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		ListTransactions(ctx context.Context, owner core.UserID) ([]core.Transaction, error)
		// ListTransactionsInRange returns transactions dated in [from, to).
		ListTransactionsInRange(ctx context.Context, owner core.UserID, from, to time.Time) ([]core.Transaction, error)
		ListTransactionsByAccount(ctx context.Context, accountID string) ([]core.Transaction, error)
	}

	BudgetStore interface {
		InsertBudget(ctx context.Context, b core.Budget) error
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, id string) error
		ListBudgetsForMonth(ctx context.Context, owner core.UserID, ym core.YearMonth) ([]core.Budget, error)
	}

	TemplateStore interface {
		InsertTemplate(ctx context.Context, r core.RecurringTemplate) error
		GetTemplate(ctx context.Context, id string) (core.RecurringTemplate, error)
		UpdateTemplate(ctx context.Context, r core.RecurringTemplate) error
		DeleteTemplate(ctx context.Context, id string) error
		ListTemplates(ctx context.Context, owner core.UserID) ([]core.RecurringTemplate, error)
		// DueTemplates returns active templates with NextOccurrence <= now, across all owners.
		DueTemplates(ctx context.Context, now time.Time) ([]core.RecurringTemplate, error)
	}

	Ledger interface {
		AccountStore
		CategoryStore
		TransactionStore
		BudgetStore
		TemplateStore
	}

	// Store is a Ledger that can group writes into one atomic unit.
	Store interface {
		Ledger
		// Atomic runs fn against a Ledger whose writes commit only if fn returns nil.
		Atomic(ctx context.Context, fn func(l Ledger) error) error
		Ping(ctx context.Context) error
		Close() error
	}
)
