package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	q := r.URL.Query()
	f := core.TransactionFilter{
		AccountID:  q.Get("accountId"),
		CategoryID: q.Get("categoryId"),
	}
	var err error
	if f.IsBusiness, err = queryBool(r, "isBusiness"); err != nil {
		return err
	}
	if f.Kind, err = queryKind(r); err != nil {
		return err
	}
	if f.Start, err = queryDate(r, "start", s.cfg.Location); err != nil {
		return err
	}
	if f.End, err = queryDate(r, "end", s.cfg.Location); err != nil {
		return err
	}
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		return err
	}
	if f.Limit < 0 {
		return core.NewValidationError("limit", "limit must not be negative")
	}

	views, err := s.deps.Services.Transactions.List(r.Context(), caller, f)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toTransactionsJSON(views, s.cfg.Location))
	return nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	date, err := parseDate("date", req.Date, s.cfg.Location)
	if err != nil {
		return err
	}
	t, err := s.deps.Services.Transactions.Create(r.Context(), caller, core.Transaction{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Date:        date,
		Amount:      amount,
		Kind:        req.Kind,
		IsBusiness:  req.IsBusiness,
		Description: sanitizeInput(req.Description),
		Notes:       sanitizeInput(req.Notes),
		Tags:        sanitizeTags(req.Tags),
	})
	if err != nil {
		return err
	}
	s.invalidateDashboard(r.Context(), caller)
	return s.writeTransaction(w, r, caller, t.ID, http.StatusCreated)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	return s.writeTransaction(w, r, caller, chi.URLParam(r, "id"), http.StatusOK)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req transactionUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	upd := core.TransactionUpdate{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Kind:        req.Kind,
		IsBusiness:  req.IsBusiness,
		Description: sanitizeOptional(req.Description),
		Notes:       sanitizeOptional(req.Notes),
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			return err
		}
		upd.Amount = &amount
	}
	date, err := parseOptionalDate("date", req.Date, s.cfg.Location)
	if err != nil {
		return err
	}
	upd.Date = date
	if req.Tags != nil {
		tags := sanitizeTags(*req.Tags)
		upd.Tags = &tags
	}

	t, err := s.deps.Services.Transactions.Update(r.Context(), caller, chi.URLParam(r, "id"), upd)
	if err != nil {
		return err
	}
	s.invalidateDashboard(r.Context(), caller)
	return s.writeTransaction(w, r, caller, t.ID, http.StatusOK)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	if err := s.deps.Services.Transactions.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		return err
	}
	s.invalidateDashboard(r.Context(), caller)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

// writeTransaction responds with the enriched view of transaction id.
func (s *Server) writeTransaction(w http.ResponseWriter, r *http.Request, caller core.UserID, id string, status int) error {
	v, err := s.deps.Services.Transactions.Get(r.Context(), caller, id)
	if err != nil {
		return err
	}
	writeJSON(w, status, toTransactionJSON(v, s.cfg.Location))
	return nil
}
