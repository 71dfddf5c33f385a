package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	ym, err := queryYearMonth(r, "month", s.now().In(s.cfg.Location))
	if err != nil {
		return err
	}
	scope, err := queryScope(r)
	if err != nil {
		return err
	}
	budgets, err := s.deps.Services.Budgets.ListForMonth(r.Context(), caller, ym, scope)
	if err != nil {
		return err
	}
	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	b, err := s.deps.Services.Budgets.Upsert(r.Context(), caller, core.Budget{
		CategoryID: req.CategoryID,
		YearMonth:  req.YearMonth,
		Amount:     amount,
		Scope:      req.Scope,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(b))
	return nil
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	if err := s.deps.Services.Budgets.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		return err
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

func (s *Server) handleCopyBudgets(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req budgetCopyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	res, err := s.deps.Services.Budgets.Copy(r.Context(), caller, req.From, req.To)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, copyJSON{Copied: res.Copied, Skipped: res.Skipped})
	return nil
}

// handleBudgetStatus compares each budget of the month with actual spending.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	ym, err := queryYearMonth(r, "month", s.now().In(s.cfg.Location))
	if err != nil {
		return err
	}
	scope, err := queryScope(r)
	if err != nil {
		return err
	}
	statuses, err := s.deps.Services.Budgets.VsActual(r.Context(), caller, ym, scope)
	if err != nil {
		return err
	}
	out := make([]budgetStatusJSON, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, budgetStatusJSON{
			BudgetID:      st.BudgetID,
			CategoryID:    st.CategoryID,
			CategoryLabel: st.CategoryLabel,
			Scope:         st.Scope,
			Budgeted:      st.Budgeted,
			Spent:         st.Spent,
			Remaining:     st.Remaining,
			Percentage:    st.Percentage,
			IsOverBudget:  st.IsOverBudget,
		})
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}
