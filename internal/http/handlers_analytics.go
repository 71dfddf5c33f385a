package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const defaultCashFlowMonths = 6

// handleDashboardSummary serves the current-month overview, cached per user,
// month and scope until the next ledger change or the cache TTL.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	scope, err := queryScope(r)
	if err != nil {
		return err
	}
	month := core.YearMonthOf(s.now().In(s.cfg.Location))
	key := dashboardKeyPrefix(caller) + string(month) + ":" + string(scope)
	if cached, ok := s.dashboardCache.Get(key); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Dashboard cache hit", log.FieldUser, string(caller))
		NewJSONResponse().Header("X-Cache", "HIT").Data(toDashboardJSON(cached)).Write(w)
		return nil
	}

	summary, err := s.deps.Services.Analytics.DashboardSummary(r.Context(), caller, scope)
	if err != nil {
		return err
	}
	s.dashboardCache.Set(key, summary)
	NewJSONResponse().Header("X-Cache", "MISS").Data(toDashboardJSON(summary)).Write(w)
	return nil
}

// handleSpendingByCategory defaults to the current calendar month. An explicit
// to date includes that whole day.
func (s *Server) handleSpendingByCategory(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	scope, err := queryScope(r)
	if err != nil {
		return err
	}
	kind, err := queryKind(r)
	if err != nil {
		return err
	}
	from, err := queryDate(r, "from", s.cfg.Location)
	if err != nil {
		return err
	}
	to, err := queryDate(r, "to", s.cfg.Location)
	if err != nil {
		return err
	}
	if to != nil {
		last := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &last
	}
	if from == nil || to == nil {
		start, end, err := core.YearMonthOf(s.now().In(s.cfg.Location)).Range(s.cfg.Location)
		if err != nil {
			return err
		}
		last := end.Add(-time.Nanosecond)
		if from == nil {
			from = &start
		}
		if to == nil {
			to = &last
		}
	}

	amounts, err := s.deps.Services.Analytics.SpendingByCategory(r.Context(), caller, *from, *to, scope, kind)
	if err != nil {
		return err
	}
	out := make([]categoryAmountJSON, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, categoryAmountJSON{CategoryID: a.CategoryID, Label: a.Label, Amount: a.Amount, Count: a.Count})
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	scope, err := queryScope(r)
	if err != nil {
		return err
	}
	months, err := queryInt(r, "months", defaultCashFlowMonths)
	if err != nil {
		return err
	}
	points, err := s.deps.Services.Analytics.CashFlowSeries(r.Context(), caller, months, scope)
	if err != nil {
		return err
	}
	out := make([]cashFlowJSON, 0, len(points))
	for _, p := range points {
		out = append(out, cashFlowJSON{YearMonth: p.YearMonth, Income: p.Income, Expenses: p.Expenses, Net: p.Net})
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleAccountBalances(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	scope, err := queryScope(r)
	if err != nil {
		return err
	}
	groups, err := s.deps.Services.Analytics.AccountBalances(r.Context(), caller, scope)
	if err != nil {
		return err
	}
	out := make([]accountTypeBalanceJSON, 0, len(groups))
	for _, g := range groups {
		out = append(out, accountTypeBalanceJSON{
			Type:     g.Type,
			Balance:  g.Balance,
			Count:    g.Count,
			Accounts: toAccountsJSON(g.Accounts),
		})
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	scope, err := queryScope(r)
	if err != nil {
		return err
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return err
	}
	views, err := s.deps.Services.Analytics.RecentTransactions(r.Context(), caller, limit, scope)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toTransactionsJSON(views, s.cfg.Location))
	return nil
}
