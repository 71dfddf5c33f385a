package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// RecurringService manages recurring transaction templates.
type RecurringService struct {
	base
}

func NewRecurringService(st store.Store, opts Options) *RecurringService {
	return &RecurringService{base: newBase(st, opts, log.ComponentRecurring)}
}

// Create stores an active template whose first occurrence is its start date.
func (s *RecurringService) Create(ctx context.Context, caller core.UserID, draft core.RecurringTemplate) (core.RecurringTemplate, error) {
	if err := caller.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}
	now := s.now()
	r := draft
	r.ID = uuid.NewString()
	r.Owner = caller
	r.Description = strings.TrimSpace(r.Description)
	r.NextOccurrence = r.StartDate
	r.Active = true
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Interval == 0 {
		r.Interval = 1
	}
	if err := r.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}

	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		if _, err := referencedAccount(ctx, l, caller, r.AccountID); err != nil {
			return err
		}
		if _, err := visibleCategory(ctx, l, caller, r.CategoryID); err != nil {
			return err
		}
		return l.InsertTemplate(ctx, r)
	})
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("create recurring template: %w", err)
	}
	s.logger.InfoContext(ctx, "Recurring template created",
		log.FieldTemplateID, r.ID,
		"frequency", string(r.Frequency),
		"interval", r.Interval,
		"next_occurrence", r.NextOccurrence)
	return r, nil
}

func (s *RecurringService) Get(ctx context.Context, caller core.UserID, id string) (core.TemplateView, error) {
	if err := caller.Validate(); err != nil {
		return core.TemplateView{}, err
	}
	r, err := ownedTemplate(ctx, s.store, caller, id)
	if err != nil {
		return core.TemplateView{}, err
	}
	rf, err := loadRefs(ctx, s.store, caller)
	if err != nil {
		return core.TemplateView{}, fmt.Errorf("get recurring template: %w", err)
	}
	return rf.template(r), nil
}

// List returns the caller's templates, optionally only active or paused ones.
func (s *RecurringService) List(ctx context.Context, caller core.UserID, active *bool) ([]core.TemplateView, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	all, err := s.store.ListTemplates(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	rf, err := loadRefs(ctx, s.store, caller)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	out := make([]core.TemplateView, 0, len(all))
	for _, r := range all {
		if active != nil && r.Active != *active {
			continue
		}
		out = append(out, rf.template(r))
	}
	return out, nil
}

// Update changes schedule or amount fields. The next occurrence is left as is.
func (s *RecurringService) Update(ctx context.Context, caller core.UserID, id string, upd core.TemplateUpdate) (core.RecurringTemplate, error) {
	if err := caller.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}
	if err := upd.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}
	var updated core.RecurringTemplate
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		r, err := ownedTemplate(ctx, l, caller, id)
		if err != nil {
			return err
		}
		updated = upd.Apply(r)
		updated.Description = strings.TrimSpace(updated.Description)
		updated.UpdatedAt = s.now()
		if err := updated.Validate(); err != nil {
			return err
		}
		return l.UpdateTemplate(ctx, updated)
	})
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("update recurring template: %w", err)
	}
	return updated, nil
}

// Toggle pauses or resumes a template.
func (s *RecurringService) Toggle(ctx context.Context, caller core.UserID, id string, active bool) (core.RecurringTemplate, error) {
	if err := caller.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}
	var updated core.RecurringTemplate
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		r, err := ownedTemplate(ctx, l, caller, id)
		if err != nil {
			return err
		}
		r.Active = active
		r.UpdatedAt = s.now()
		updated = r
		return l.UpdateTemplate(ctx, r)
	})
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("toggle recurring template: %w", err)
	}
	s.logger.InfoContext(ctx, "Recurring template toggled", log.FieldTemplateID, id, "active", active)
	return updated, nil
}

// Delete removes the template. Materialized transactions keep their reference.
func (s *RecurringService) Delete(ctx context.Context, caller core.UserID, id string) error {
	if err := caller.Validate(); err != nil {
		return err
	}
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		if _, err := ownedTemplate(ctx, l, caller, id); err != nil {
			return err
		}
		return l.DeleteTemplate(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete recurring template: %w", err)
	}
	return nil
}
