package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	isBusiness, err := queryBool(r, "isBusiness")
	if err != nil {
		return err
	}
	accounts, err := s.deps.Services.Accounts.List(r.Context(), caller, isBusiness)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toAccountsJSON(accounts))
	return nil
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	a, err := s.deps.Services.Accounts.Create(r.Context(), caller, core.Account{
		Name:           sanitizeInput(req.Name),
		Type:           req.Type,
		IsBusiness:     req.IsBusiness,
		Currency:       req.Currency,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		return err
	}
	s.invalidateDashboard(r.Context(), caller)
	writeJSON(w, http.StatusCreated, toAccountJSON(a))
	return nil
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	a, err := s.deps.Services.Accounts.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toAccountJSON(a))
	return nil
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req accountUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	a, err := s.deps.Services.Accounts.Update(r.Context(), caller, chi.URLParam(r, "id"), core.AccountUpdate{
		Name:       sanitizeOptional(req.Name),
		Type:       req.Type,
		IsBusiness: req.IsBusiness,
	})
	if err != nil {
		return err
	}
	s.invalidateDashboard(r.Context(), caller)
	writeJSON(w, http.StatusOK, toAccountJSON(a))
	return nil
}

func (s *Server) handleArchiveAccount(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	if err := s.deps.Services.Accounts.Archive(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		return err
	}
	s.invalidateDashboard(r.Context(), caller)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

func (s *Server) handleReconcileAccount(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	rec, err := s.deps.Services.Accounts.ReconcileBalance(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	if rec.Corrected {
		s.invalidateDashboard(r.Context(), caller)
	}
	writeJSON(w, http.StatusOK, reconcileJSON{
		AccountID: rec.AccountID,
		Previous:  rec.Previous,
		Computed:  rec.Computed,
		Corrected: rec.Corrected,
	})
	return nil
}
