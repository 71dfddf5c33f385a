package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

const (
	uncategorizedLabel      = "Uncategorized"
	defaultRecentLimit      = 10
	maxCashFlowSeriesMonths = 120
)

// AnalyticsService computes read-only rollups over a user's ledger.
type AnalyticsService struct {
	base
}

func NewAnalyticsService(st store.Store, opts Options) *AnalyticsService {
	return &AnalyticsService{base: newBase(st, opts, log.ComponentAnalytics)}
}

// DashboardSummary totals balances of non-archived accounts and the current
// calendar month's income and expenses.
func (s *AnalyticsService) DashboardSummary(ctx context.Context, caller core.UserID, scope core.Scope) (core.DashboardSummary, error) {
	if err := caller.Validate(); err != nil {
		return core.DashboardSummary{}, err
	}
	ym := core.YearMonthOf(s.now().In(s.loc))
	sum := core.DashboardSummary{YearMonth: ym}

	accounts, err := s.store.ListAccounts(ctx, caller)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	for _, a := range accounts {
		if a.Archived || !scope.MatchesBusiness(a.IsBusiness) {
			continue
		}
		sum.TotalBalance = sum.TotalBalance.Add(a.CurrentBalance)
	}

	point, count, err := s.monthTotals(ctx, caller, ym, scope)
	if err != nil {
		return core.DashboardSummary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	sum.MonthIncome = point.Income
	sum.MonthExpenses = point.Expenses
	sum.NetCashFlow = point.Net
	sum.TransactionCount = count
	return sum, nil
}

// SpendingByCategory groups transactions dated within [from, to] by category,
// largest amount first. An empty kind includes both kinds.
func (s *AnalyticsService) SpendingByCategory(ctx context.Context, caller core.UserID, from, to time.Time, scope core.Scope, kind core.Kind) ([]core.CategoryAmount, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, core.NewValidationError("endDate", "end date must not be before start date")
	}
	if kind != "" && !kind.IsValid() {
		return nil, core.NewValidationError("kind", "unknown kind %q", kind)
	}

	all, err := s.store.ListTransactions(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	filter := core.TransactionFilter{Kind: kind, Start: &from, End: &to}

	groups := map[string]*core.CategoryAmount{}
	for _, t := range all {
		if !filter.Matches(t) || !scope.MatchesBusiness(t.IsBusiness) {
			continue
		}
		g, ok := groups[t.CategoryID]
		if !ok {
			g = &core.CategoryAmount{CategoryID: t.CategoryID}
			groups[t.CategoryID] = g
		}
		g.Amount = g.Amount.Add(t.Amount)
		g.Count++
	}

	categories, err := s.store.ListCategories(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("spending by category: %w", err)
	}
	labels := make(map[string]string, len(categories))
	for _, c := range categories {
		labels[c.ID] = c.Label
	}

	out := make([]core.CategoryAmount, 0, len(groups))
	for id, g := range groups {
		g.Label = uncategorizedLabel
		if label, ok := labels[id]; ok {
			g.Label = label
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// CashFlowSeries returns one entry per calendar month for the trailing months,
// oldest first, ending with the current month.
func (s *AnalyticsService) CashFlowSeries(ctx context.Context, caller core.UserID, months int, scope core.Scope) ([]core.CashFlowPoint, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if months < 1 || months > maxCashFlowSeriesMonths {
		return nil, core.NewValidationError("months", "months must be between 1 and %d", maxCashFlowSeriesMonths)
	}

	current := core.YearMonthOf(s.now().In(s.loc))
	first := current.AddMonths(-(months - 1))
	start, _, err := first.Range(s.loc)
	if err != nil {
		return nil, err
	}
	_, end, err := current.Range(s.loc)
	if err != nil {
		return nil, err
	}

	txns, err := s.store.ListTransactionsInRange(ctx, caller, start, end)
	if err != nil {
		return nil, fmt.Errorf("cash flow series: %w", err)
	}

	series := make([]core.CashFlowPoint, months)
	index := make(map[core.YearMonth]int, months)
	for i := range series {
		ym := first.AddMonths(i)
		series[i] = core.CashFlowPoint{YearMonth: ym}
		index[ym] = i
	}
	for _, t := range txns {
		if !scope.MatchesBusiness(t.IsBusiness) {
			continue
		}
		i, ok := index[core.YearMonthOf(t.Date.In(s.loc))]
		if !ok {
			continue
		}
		addToPoint(&series[i], t)
	}
	return series, nil
}

// AccountBalances groups non-archived accounts by type in display order.
func (s *AnalyticsService) AccountBalances(ctx context.Context, caller core.UserID, scope core.Scope) ([]core.AccountTypeBalance, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	accounts, err := s.store.ListAccounts(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("account balances: %w", err)
	}
	byType := map[core.AccountType]*core.AccountTypeBalance{}
	for _, a := range accounts {
		if a.Archived || !scope.MatchesBusiness(a.IsBusiness) {
			continue
		}
		g, ok := byType[a.Type]
		if !ok {
			g = &core.AccountTypeBalance{Type: a.Type}
			byType[a.Type] = g
		}
		g.Balance = g.Balance.Add(a.CurrentBalance)
		g.Count++
		g.Accounts = append(g.Accounts, a)
	}
	out := make([]core.AccountTypeBalance, 0, len(byType))
	for _, typ := range core.AccountTypes {
		if g, ok := byType[typ]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

// RecentTransactions returns the newest transactions first; limit defaults to 10.
func (s *AnalyticsService) RecentTransactions(ctx context.Context, caller core.UserID, limit int, scope core.Scope) ([]core.TransactionView, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	all, err := s.store.ListTransactions(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	matched := make([]core.Transaction, 0, len(all))
	for _, t := range all {
		if scope.MatchesBusiness(t.IsBusiness) {
			matched = append(matched, t)
		}
	}
	sortNewestFirst(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	rf, err := loadRefs(ctx, s.store, caller)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	out := make([]core.TransactionView, len(matched))
	for i, t := range matched {
		out[i] = rf.transaction(t)
	}
	return out, nil
}

func (s *AnalyticsService) monthTotals(ctx context.Context, caller core.UserID, ym core.YearMonth, scope core.Scope) (core.CashFlowPoint, int, error) {
	start, end, err := ym.Range(s.loc)
	if err != nil {
		return core.CashFlowPoint{}, 0, err
	}
	txns, err := s.store.ListTransactionsInRange(ctx, caller, start, end)
	if err != nil {
		return core.CashFlowPoint{}, 0, err
	}
	point := core.CashFlowPoint{YearMonth: ym}
	count := 0
	for _, t := range txns {
		if !scope.MatchesBusiness(t.IsBusiness) {
			continue
		}
		addToPoint(&point, t)
		count++
	}
	return point, count, nil
}

func addToPoint(p *core.CashFlowPoint, t core.Transaction) {
	switch t.Kind {
	case core.Income:
		p.Income = p.Income.Add(t.Amount)
	case core.Expense:
		p.Expenses = p.Expenses.Add(t.Amount)
	}
	p.Net = p.Income.Sub(p.Expenses)
}
