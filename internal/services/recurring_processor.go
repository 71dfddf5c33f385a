package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// errNoLongerDue marks a template that another sweep already advanced or paused.
var errNoLongerDue = errors.New("template no longer due")

// SweepResult summarizes one sweep.
type SweepResult struct {
	Due          int
	Materialized int
	Expired      int
	Skipped      int
	Failed       int
}

// RecurringProcessor materializes due recurring templates into transactions.
type RecurringProcessor struct {
	base
}

// NewRecurringProcessor creates a new recurring template processor
func NewRecurringProcessor(st store.Store, opts Options) *RecurringProcessor {
	return &RecurringProcessor{base: newBase(st, opts, log.ComponentRecurring)}
}

// Sweep processes every active template whose next occurrence is at or before now.
//
// Templates whose end date lies strictly before now are deactivated without
// firing. Every other due template fires exactly once: one transaction dated
// at its next occurrence, the balance effect, and a one-period advance commit
// together. A failing template is logged and left for the next sweep.
func (p *RecurringProcessor) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	if p.store == nil {
		return SweepResult{}, fmt.Errorf("processor not properly initialized")
	}

	due, err := p.store.DueTemplates(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to get due recurring templates: %w", err)
	}

	res := SweepResult{Due: len(due)}
	p.logger.InfoContext(ctx, "Processing recurring templates",
		"due", len(due),
		"processing_time", now.Format(time.RFC3339))

	for _, tpl := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if tpl.Expired(now) {
			if err := p.deactivate(ctx, tpl.ID, now); err != nil {
				res.Failed++
				p.logger.ErrorContext(ctx, "Failed to deactivate expired template",
					log.FieldTemplateID, tpl.ID,
					log.FieldError, err)
				continue
			}
			res.Expired++
			p.logger.InfoContext(ctx, "Recurring template expired",
				log.FieldTemplateID, tpl.ID,
				"end_date", tpl.EndDate.Format(time.RFC3339))
			continue
		}

		t, err := p.materialize(ctx, tpl.ID, now)
		switch {
		case errors.Is(err, errNoLongerDue):
			res.Skipped++
			continue
		case err != nil:
			res.Failed++
			p.logger.ErrorContext(ctx, "Failed to materialize recurring template",
				log.FieldTemplateID, tpl.ID,
				log.FieldAccountID, tpl.AccountID,
				log.FieldError, err)
			continue
		}

		res.Materialized++
		p.logger.InfoContext(ctx, "Created transaction from recurring template",
			log.FieldTemplateID, tpl.ID,
			log.FieldTransaction, t.ID,
			log.FieldAmount, t.Amount.String(),
			"frequency", string(tpl.Frequency))
		p.publish(ctx, core.EventTransactionCreated, t)
	}

	p.logger.InfoContext(ctx, "Recurring template processing complete",
		"due", res.Due,
		"materialized", res.Materialized,
		"expired", res.Expired,
		"skipped", res.Skipped,
		"failed", res.Failed)

	return res, nil
}

func (p *RecurringProcessor) deactivate(ctx context.Context, id string, now time.Time) error {
	return p.store.Atomic(ctx, func(l store.Ledger) error {
		tpl, err := l.GetTemplate(ctx, id)
		if err != nil {
			return err
		}
		tpl.Active = false
		tpl.UpdatedAt = now
		return l.UpdateTemplate(ctx, tpl)
	})
}

// materialize re-reads the template inside the atomic unit so a concurrent
// sweep that already advanced it is detected rather than fired twice.
func (p *RecurringProcessor) materialize(ctx context.Context, id string, now time.Time) (core.Transaction, error) {
	var created core.Transaction
	err := p.store.Atomic(ctx, func(l store.Ledger) error {
		tpl, err := l.GetTemplate(ctx, id)
		if err != nil {
			return err
		}
		if !tpl.Active || tpl.NextOccurrence.After(now) {
			return errNoLongerDue
		}

		next, err := NextOccurrence(tpl.NextOccurrence, tpl.Frequency, tpl.Interval, tpl.DayOfMonth, p.loc)
		if err != nil {
			return err
		}

		t := core.Transaction{
			ID:                  uuid.NewString(),
			Owner:               tpl.Owner,
			AccountID:           tpl.AccountID,
			CategoryID:          tpl.CategoryID,
			Date:                tpl.NextOccurrence,
			Amount:              tpl.Amount,
			Kind:                tpl.Kind,
			IsBusiness:          tpl.IsBusiness,
			Description:         tpl.Description,
			RecurringTemplateID: tpl.ID,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := l.InsertTransaction(ctx, t); err != nil {
			return err
		}
		if err := p.balance.ApplyTransaction(ctx, l, t); err != nil {
			return err
		}

		tpl.NextOccurrence = next
		tpl.UpdatedAt = now
		if err := l.UpdateTemplate(ctx, tpl); err != nil {
			return err
		}
		created = t
		return nil
	})
	return created, err
}
