package http

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Request bodies. Amounts travel as strings so "12,50" is accepted too.
type (
	accountRequest struct {
		Name           string           `json:"name"`
		Type           core.AccountType `json:"type"`
		IsBusiness     bool             `json:"isBusiness"`
		Currency       string           `json:"currency"`
		InitialBalance decimal.Decimal  `json:"initialBalance"`
	}

	accountUpdateRequest struct {
		Name       *string           `json:"name"`
		Type       *core.AccountType `json:"type"`
		IsBusiness *bool             `json:"isBusiness"`
	}

	categoryRequest struct {
		Label string     `json:"label"`
		Kind  core.Kind  `json:"kind"`
		Scope core.Scope `json:"scope"`
	}

	categoryUpdateRequest struct {
		Label *string     `json:"label"`
		Scope *core.Scope `json:"scope"`
	}

	transactionRequest struct {
		AccountID   string    `json:"accountId"`
		CategoryID  string    `json:"categoryId"`
		Date        string    `json:"date"`
		Amount      string    `json:"amount"`
		Kind        core.Kind `json:"kind"`
		IsBusiness  bool      `json:"isBusiness"`
		Description string    `json:"description"`
		Notes       string    `json:"notes"`
		Tags        []string  `json:"tags"`
	}

	transactionUpdateRequest struct {
		AccountID   *string    `json:"accountId"`
		CategoryID  *string    `json:"categoryId"`
		Date        *string    `json:"date"`
		Amount      *string    `json:"amount"`
		Kind        *core.Kind `json:"kind"`
		IsBusiness  *bool      `json:"isBusiness"`
		Description *string    `json:"description"`
		Notes       *string    `json:"notes"`
		Tags        *[]string  `json:"tags"`
	}

	budgetRequest struct {
		CategoryID string         `json:"categoryId"`
		YearMonth  core.YearMonth `json:"yearMonth"`
		Amount     string         `json:"amount"`
		Scope      core.Scope     `json:"scope"`
	}

	budgetCopyRequest struct {
		From core.YearMonth `json:"from"`
		To   core.YearMonth `json:"to"`
	}

	templateRequest struct {
		AccountID   string         `json:"accountId"`
		CategoryID  string         `json:"categoryId"`
		Amount      string         `json:"amount"`
		Kind        core.Kind      `json:"kind"`
		IsBusiness  bool           `json:"isBusiness"`
		Description string         `json:"description"`
		Frequency   core.Frequency `json:"frequency"`
		Interval    int            `json:"interval"`
		DayOfMonth  *int           `json:"dayOfMonth"`
		DayOfWeek   *int           `json:"dayOfWeek"`
		StartDate   string         `json:"startDate"`
		EndDate     *string        `json:"endDate"`
	}

	templateUpdateRequest struct {
		Amount          *string         `json:"amount"`
		Description     *string         `json:"description"`
		Frequency       *core.Frequency `json:"frequency"`
		Interval        *int            `json:"interval"`
		DayOfMonth      *int            `json:"dayOfMonth"`
		EndDate         *string         `json:"endDate"`
		ClearDayOfMonth bool            `json:"clearDayOfMonth"`
		ClearEndDate    bool            `json:"clearEndDate"`
	}

	toggleRequest struct {
		Active bool `json:"active"`
	}
)

// Response bodies.
type (
	accountJSON struct {
		ID             string           `json:"id"`
		Name           string           `json:"name"`
		Type           core.AccountType `json:"type"`
		IsBusiness     bool             `json:"isBusiness"`
		Currency       string           `json:"currency"`
		InitialBalance decimal.Decimal  `json:"initialBalance"`
		CurrentBalance decimal.Decimal  `json:"currentBalance"`
		Archived       bool             `json:"archived"`
		CreatedAt      time.Time        `json:"createdAt"`
	}

	categoryJSON struct {
		ID     string     `json:"id"`
		Label  string     `json:"label"`
		Slug   string     `json:"slug"`
		Kind   core.Kind  `json:"kind"`
		Scope  core.Scope `json:"scope"`
		Global bool       `json:"global"`
	}

	refJSON struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	transactionJSON struct {
		ID                  string          `json:"id"`
		AccountID           string          `json:"accountId"`
		CategoryID          string          `json:"categoryId"`
		Date                string          `json:"date"`
		Amount              decimal.Decimal `json:"amount"`
		Kind                core.Kind       `json:"kind"`
		IsBusiness          bool            `json:"isBusiness"`
		Description         string          `json:"description"`
		Notes               string          `json:"notes,omitempty"`
		Tags                []string        `json:"tags"`
		RecurringTemplateID string          `json:"recurringTemplateId,omitempty"`
		Account             *refJSON        `json:"account,omitempty"`
		Category            *refJSON        `json:"category,omitempty"`
		CreatedAt           time.Time       `json:"createdAt"`
		UpdatedAt           time.Time       `json:"updatedAt"`
	}

	budgetJSON struct {
		ID         string          `json:"id"`
		CategoryID string          `json:"categoryId"`
		YearMonth  core.YearMonth  `json:"yearMonth"`
		Amount     decimal.Decimal `json:"amount"`
		Scope      core.Scope      `json:"scope"`
	}

	budgetStatusJSON struct {
		BudgetID      string          `json:"budgetId"`
		CategoryID    string          `json:"categoryId"`
		CategoryLabel string          `json:"categoryLabel"`
		Scope         core.Scope      `json:"scope"`
		Budgeted      decimal.Decimal `json:"budgeted"`
		Spent         decimal.Decimal `json:"spent"`
		Remaining     decimal.Decimal `json:"remaining"`
		Percentage    float64         `json:"percentage"`
		IsOverBudget  bool            `json:"isOverBudget"`
	}

	templateJSON struct {
		ID             string          `json:"id"`
		AccountID      string          `json:"accountId"`
		CategoryID     string          `json:"categoryId"`
		Amount         decimal.Decimal `json:"amount"`
		Kind           core.Kind       `json:"kind"`
		IsBusiness     bool            `json:"isBusiness"`
		Description    string          `json:"description"`
		Frequency      core.Frequency  `json:"frequency"`
		Interval       int             `json:"interval"`
		DayOfMonth     *int            `json:"dayOfMonth,omitempty"`
		DayOfWeek      *int            `json:"dayOfWeek,omitempty"`
		StartDate      string          `json:"startDate"`
		NextOccurrence string          `json:"nextOccurrence"`
		EndDate        *string         `json:"endDate,omitempty"`
		Active         bool            `json:"active"`
		Account        *refJSON        `json:"account,omitempty"`
		Category       *refJSON        `json:"category,omitempty"`
	}

	dashboardJSON struct {
		YearMonth        core.YearMonth  `json:"yearMonth"`
		TotalBalance     decimal.Decimal `json:"totalBalance"`
		MonthIncome      decimal.Decimal `json:"monthIncome"`
		MonthExpenses    decimal.Decimal `json:"monthExpenses"`
		NetCashFlow      decimal.Decimal `json:"netCashFlow"`
		TransactionCount int             `json:"transactionCount"`
	}

	categoryAmountJSON struct {
		CategoryID string          `json:"categoryId"`
		Label      string          `json:"label"`
		Amount     decimal.Decimal `json:"amount"`
		Count      int             `json:"count"`
	}

	cashFlowJSON struct {
		YearMonth core.YearMonth  `json:"yearMonth"`
		Income    decimal.Decimal `json:"income"`
		Expenses  decimal.Decimal `json:"expenses"`
		Net       decimal.Decimal `json:"net"`
	}

	accountTypeBalanceJSON struct {
		Type     core.AccountType `json:"type"`
		Balance  decimal.Decimal  `json:"balance"`
		Count    int              `json:"count"`
		Accounts []accountJSON    `json:"accounts"`
	}

	reconcileJSON struct {
		AccountID string          `json:"accountId"`
		Previous  decimal.Decimal `json:"previous"`
		Computed  decimal.Decimal `json:"computed"`
		Corrected bool            `json:"corrected"`
	}

	copyJSON struct {
		Copied  int `json:"copied"`
		Skipped int `json:"skipped"`
	}
)

func toAccountJSON(a core.Account) accountJSON {
	return accountJSON{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		IsBusiness:     a.IsBusiness,
		Currency:       a.Currency,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		Archived:       a.Archived,
		CreatedAt:      a.CreatedAt,
	}
}

func toAccountsJSON(accounts []core.Account) []accountJSON {
	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountJSON(a))
	}
	return out
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Label: c.Label, Slug: c.Slug, Kind: c.Kind, Scope: c.Scope, Global: c.Owner == ""}
}

func accountRef(a *core.Account) *refJSON {
	if a == nil {
		return nil
	}
	return &refJSON{ID: a.ID, Name: a.Name}
}

func categoryRef(c *core.Category) *refJSON {
	if c == nil {
		return nil
	}
	return &refJSON{ID: c.ID, Name: c.Label}
}

func toTransactionJSON(v core.TransactionView, loc *time.Location) transactionJSON {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return transactionJSON{
		ID:                  v.ID,
		AccountID:           v.AccountID,
		CategoryID:          v.CategoryID,
		Date:                formatDate(v.Date, loc),
		Amount:              v.Amount,
		Kind:                v.Kind,
		IsBusiness:          v.IsBusiness,
		Description:         v.Description,
		Notes:               v.Notes,
		Tags:                tags,
		RecurringTemplateID: v.RecurringTemplateID,
		Account:             accountRef(v.Account),
		Category:            categoryRef(v.Category),
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func toTransactionsJSON(views []core.TransactionView, loc *time.Location) []transactionJSON {
	out := make([]transactionJSON, 0, len(views))
	for _, v := range views {
		out = append(out, toTransactionJSON(v, loc))
	}
	return out
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{ID: b.ID, CategoryID: b.CategoryID, YearMonth: b.YearMonth, Amount: b.Amount, Scope: b.Scope}
}

func toTemplateJSON(v core.TemplateView, loc *time.Location) templateJSON {
	out := templateJSON{
		ID:             v.ID,
		AccountID:      v.AccountID,
		CategoryID:     v.CategoryID,
		Amount:         v.Amount,
		Kind:           v.Kind,
		IsBusiness:     v.IsBusiness,
		Description:    v.Description,
		Frequency:      v.Frequency,
		Interval:       v.Interval,
		DayOfMonth:     v.DayOfMonth,
		DayOfWeek:      v.DayOfWeek,
		StartDate:      formatDate(v.StartDate, loc),
		NextOccurrence: formatDate(v.NextOccurrence, loc),
		Active:         v.Active,
		Account:        accountRef(v.Account),
		Category:       categoryRef(v.Category),
	}
	if v.EndDate != nil {
		end := formatDate(*v.EndDate, loc)
		out.EndDate = &end
	}
	return out
}

func toDashboardJSON(d core.DashboardSummary) dashboardJSON {
	return dashboardJSON{
		YearMonth:        d.YearMonth,
		TotalBalance:     d.TotalBalance,
		MonthIncome:      d.MonthIncome,
		MonthExpenses:    d.MonthExpenses,
		NetCashFlow:      d.NetCashFlow,
		TransactionCount: d.TransactionCount,
	}
}
