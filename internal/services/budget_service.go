package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

const unknownCategoryLabel = "Unknown"

// BudgetService manages monthly budgets and compares them with actual spending.
type BudgetService struct {
	base
}

func NewBudgetService(st store.Store, opts Options) *BudgetService {
	return &BudgetService{base: newBase(st, opts, log.ComponentBudget)}
}

// ListForMonth returns the caller's budgets for ym visible under scope.
func (s *BudgetService) ListForMonth(ctx context.Context, caller core.UserID, ym core.YearMonth, scope core.Scope) ([]core.Budget, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if err := ym.Validate(); err != nil {
		return nil, err
	}
	budgets, err := s.store.ListBudgetsForMonth(ctx, caller, ym)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return filterBudgets(budgets, scope), nil
}

func filterBudgets(budgets []core.Budget, scope core.Scope) []core.Budget {
	out := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		if b.Scope.Covers(scope) {
			out = append(out, b)
		}
	}
	return out
}

// Upsert creates or replaces the budget for (caller, category, month).
func (s *BudgetService) Upsert(ctx context.Context, caller core.UserID, draft core.Budget) (core.Budget, error) {
	if err := caller.Validate(); err != nil {
		return core.Budget{}, err
	}
	if draft.Scope == "" {
		draft.Scope = core.ScopeBoth
	}
	if err := draft.Validate(); err != nil {
		return core.Budget{}, err
	}

	var saved core.Budget
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		if _, err := visibleCategory(ctx, l, caller, draft.CategoryID); err != nil {
			return err
		}
		existing, err := l.ListBudgetsForMonth(ctx, caller, draft.YearMonth)
		if err != nil {
			return err
		}
		now := s.now()
		for _, b := range existing {
			if b.CategoryID != draft.CategoryID {
				continue
			}
			b.Amount = draft.Amount
			b.Scope = draft.Scope
			b.UpdatedAt = now
			saved = b
			return l.UpdateBudget(ctx, b)
		}
		saved = core.Budget{
			ID:         uuid.NewString(),
			Owner:      caller,
			CategoryID: draft.CategoryID,
			YearMonth:  draft.YearMonth,
			Amount:     draft.Amount,
			Scope:      draft.Scope,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return l.InsertBudget(ctx, saved)
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget saved",
		log.FieldBudgetID, saved.ID,
		log.FieldCategoryID, saved.CategoryID,
		log.FieldYearMonth, string(saved.YearMonth))
	return saved, nil
}

func (s *BudgetService) Delete(ctx context.Context, caller core.UserID, id string) error {
	if err := caller.Validate(); err != nil {
		return err
	}
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		if _, err := ownedBudget(ctx, l, caller, id); err != nil {
			return err
		}
		return l.DeleteBudget(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// Copy duplicates every budget of from into to, skipping categories that
// already have a budget in the target month.
func (s *BudgetService) Copy(ctx context.Context, caller core.UserID, from, to core.YearMonth) (core.CopyResult, error) {
	if err := caller.Validate(); err != nil {
		return core.CopyResult{}, err
	}
	if err := from.Validate(); err != nil {
		return core.CopyResult{}, err
	}
	if err := to.Validate(); err != nil {
		return core.CopyResult{}, err
	}

	var res core.CopyResult
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		res = core.CopyResult{}
		source, err := l.ListBudgetsForMonth(ctx, caller, from)
		if err != nil {
			return err
		}
		target, err := l.ListBudgetsForMonth(ctx, caller, to)
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(target))
		for _, b := range target {
			taken[b.CategoryID] = true
		}
		now := s.now()
		for _, b := range source {
			if taken[b.CategoryID] {
				res.Skipped++
				continue
			}
			copied := core.Budget{
				ID:         uuid.NewString(),
				Owner:      caller,
				CategoryID: b.CategoryID,
				YearMonth:  to,
				Amount:     b.Amount,
				Scope:      b.Scope,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := l.InsertBudget(ctx, copied); err != nil {
				return err
			}
			taken[b.CategoryID] = true
			res.Copied++
		}
		return nil
	})
	if err != nil {
		return core.CopyResult{}, fmt.Errorf("copy budgets: %w", err)
	}
	s.logger.InfoContext(ctx, "Budgets copied",
		"from", string(from), "to", string(to),
		"copied", res.Copied, "skipped", res.Skipped)
	return res, nil
}

// VsActual compares each budget of ym with the expenses booked in its
// category during that calendar month.
func (s *BudgetService) VsActual(ctx context.Context, caller core.UserID, ym core.YearMonth, scope core.Scope) ([]core.BudgetStatus, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	start, end, err := ym.Range(s.loc)
	if err != nil {
		return nil, err
	}
	budgets, err := s.store.ListBudgetsForMonth(ctx, caller, ym)
	if err != nil {
		return nil, fmt.Errorf("budget vs actual: %w", err)
	}
	budgets = filterBudgets(budgets, scope)

	txns, err := s.store.ListTransactionsInRange(ctx, caller, start, end)
	if err != nil {
		return nil, fmt.Errorf("budget vs actual: %w", err)
	}
	spent := map[string]decimal.Decimal{}
	for _, t := range txns {
		if t.Kind != core.Expense {
			continue
		}
		spent[t.CategoryID] = spent[t.CategoryID].Add(t.Amount)
	}

	categories, err := s.store.ListCategories(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("budget vs actual: %w", err)
	}
	labels := make(map[string]string, len(categories))
	for _, c := range categories {
		labels[c.ID] = c.Label
	}

	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetStatus(b, spent[b.CategoryID], labels))
	}
	return out, nil
}

func budgetStatus(b core.Budget, spent decimal.Decimal, labels map[string]string) core.BudgetStatus {
	label, ok := labels[b.CategoryID]
	if !ok {
		label = unknownCategoryLabel
	}
	st := core.BudgetStatus{
		BudgetID:      b.ID,
		CategoryID:    b.CategoryID,
		CategoryLabel: label,
		Scope:         b.Scope,
		Budgeted:      b.Amount,
		Spent:         spent,
		Remaining:     b.Amount.Sub(spent),
		IsOverBudget:  spent.GreaterThan(b.Amount),
	}
	if !b.Amount.IsZero() {
		st.Percentage = spent.Mul(decimal.NewFromInt(100)).Div(b.Amount).InexactFloat64()
	}
	return st
}
