package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionView is a transaction enriched with its account and category.
// Either reference may be nil when it no longer resolves.
type TransactionView struct {
	Transaction
	Account  *Account
	Category *Category
}

// TemplateView is a recurring template enriched with its account and category.
type TemplateView struct {
	RecurringTemplate
	Account  *Account
	Category *Category
}

// BudgetStatus compares one budget with actual spending in its month.
type BudgetStatus struct {
	BudgetID      string
	CategoryID    string
	CategoryLabel string
	Scope         Scope
	Budgeted      decimal.Decimal
	Spent         decimal.Decimal
	Remaining     decimal.Decimal // negative when over budget
	Percentage    float64
	IsOverBudget  bool
}

// DashboardSummary is the current-month overview for one user.
type DashboardSummary struct {
	YearMonth        YearMonth
	TotalBalance     decimal.Decimal
	MonthIncome      decimal.Decimal
	MonthExpenses    decimal.Decimal
	NetCashFlow      decimal.Decimal
	TransactionCount int
}

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	CategoryID string
	Label      string
	Amount     decimal.Decimal
	Count      int
}

// CashFlowPoint is one calendar month of income and expenses.
type CashFlowPoint struct {
	YearMonth YearMonth
	Income    decimal.Decimal
	Expenses  decimal.Decimal
	Net       decimal.Decimal
}

// AccountTypeBalance groups non-archived accounts of a single type.
type AccountTypeBalance struct {
	Type     AccountType
	Balance  decimal.Decimal
	Count    int
	Accounts []Account
}

// BalanceReconciliation reports the outcome of recomputing a balance.
type BalanceReconciliation struct {
	AccountID string
	Previous  decimal.Decimal
	Computed  decimal.Decimal
	Corrected bool
}

// CopyResult reports how many budgets a month copy created.
type CopyResult struct {
	Copied  int
	Skipped int
}

// TransactionFilter narrows a transaction listing. Zero values disable a filter.
type TransactionFilter struct {
	AccountID  string
	CategoryID string
	IsBusiness *bool
	Kind       Kind
	Start      *time.Time
	End        *time.Time
	Limit      int
}

func (f TransactionFilter) Matches(t Transaction) bool {
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.IsBusiness != nil && t.IsBusiness != *f.IsBusiness {
		return false
	}
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.Start != nil && t.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.Date.After(*f.End) {
		return false
	}
	return true
}
