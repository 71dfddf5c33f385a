package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	kind, err := queryKind(r)
	if err != nil {
		return err
	}
	scope, err := queryScope(r)
	if err != nil {
		return err
	}
	categories, err := s.deps.Services.Categories.List(r.Context(), caller, kind, scope)
	if err != nil {
		return err
	}
	out := make([]categoryJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	c, err := s.deps.Services.Categories.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toCategoryJSON(c))
	return nil
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.Scope == "" {
		req.Scope = core.ScopeBoth
	}
	c, err := s.deps.Services.Categories.Create(r.Context(), caller, core.Category{
		Label: sanitizeInput(req.Label),
		Kind:  req.Kind,
		Scope: req.Scope,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, toCategoryJSON(c))
	return nil
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	var req categoryUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	c, err := s.deps.Services.Categories.Update(r.Context(), caller, chi.URLParam(r, "id"), core.CategoryUpdate{
		Label: sanitizeOptional(req.Label),
		Scope: req.Scope,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, toCategoryJSON(c))
	return nil
}

func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request, caller core.UserID) error {
	n, err := s.deps.Services.Categories.SeedDefaults(r.Context(), caller)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": n})
	return nil
}
