package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	active, err := queryBool(r, "active")
	if err != nil {
		return err
	}
	views, err := s.deps.Services.Recurring.List(r.Context(), caller, active)
	if err != nil {
		return err
	}
	out := make([]templateJSON, 0, len(views))
	for _, v := range views {
		out = append(out, toTemplateJSON(v, s.cfg.Location))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req templateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return err
	}
	start, err := parseDate("startDate", req.StartDate, s.cfg.Location)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate("endDate", req.EndDate, s.cfg.Location)
	if err != nil {
		return err
	}
	tpl, err := s.deps.Services.Recurring.Create(r.Context(), caller, core.RecurringTemplate{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Kind:        req.Kind,
		IsBusiness:  req.IsBusiness,
		Description: sanitizeInput(req.Description),
		Frequency:   req.Frequency,
		Interval:    req.Interval,
		DayOfMonth:  req.DayOfMonth,
		DayOfWeek:   req.DayOfWeek,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return err
	}
	return s.writeTemplate(w, r, caller, tpl.ID, http.StatusCreated)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	return s.writeTemplate(w, r, caller, chi.URLParam(r, "id"), http.StatusOK)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req templateUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	upd := core.TemplateUpdate{
		Description:     sanitizeOptional(req.Description),
		Frequency:       req.Frequency,
		Interval:        req.Interval,
		DayOfMonth:      req.DayOfMonth,
		ClearDayOfMonth: req.ClearDayOfMonth,
		ClearEndDate:    req.ClearEndDate,
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			return err
		}
		upd.Amount = &amount
	}
	end, err := parseOptionalDate("endDate", req.EndDate, s.cfg.Location)
	if err != nil {
		return err
	}
	upd.EndDate = end

	tpl, err := s.deps.Services.Recurring.Update(r.Context(), caller, chi.URLParam(r, "id"), upd)
	if err != nil {
		return err
	}
	return s.writeTemplate(w, r, caller, tpl.ID, http.StatusOK)
}

func (s *Server) handleToggleTemplate(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	tpl, err := s.deps.Services.Recurring.Toggle(r.Context(), caller, chi.URLParam(r, "id"), req.Active)
	if err != nil {
		return err
	}
	return s.writeTemplate(w, r, caller, tpl.ID, http.StatusOK)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	if err := s.deps.Services.Recurring.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		return err
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	return nil
}

// handleTriggerSweep queues a sweep for the recurring worker. The sweep runs
// asynchronously and covers every user's due templates.
func (s *Server) handleTriggerSweep(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	if s.deps.Sweeps == nil {
		ErrorResponse(http.StatusServiceUnavailable, "sweep trigger not configured").Write(w)
		return nil
	}
	if err := s.deps.Sweeps.PublishSweepTrigger(r.Context(), string(caller)); err != nil {
		return err
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Sweep trigger published", log.FieldUser, string(caller))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
	return nil
}

func (s *Server) writeTemplate(w http.ResponseWriter, r *http.Request, caller core.UserID, id string, status int) error {
	v, err := s.deps.Services.Recurring.Get(r.Context(), caller, id)
	if err != nil {
		return err
	}
	writeJSON(w, status, toTemplateJSON(v, s.cfg.Location))
	return nil
}
