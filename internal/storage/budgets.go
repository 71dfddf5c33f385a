package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

const budgetColumns = `id, owner, category_id, year_month, amount, scope, created_at, updated_at`

func scanBudget(s scanner) (core.Budget, error) {
	var (
		b         core.Budget
		owner     string
		ym        string
		scope     string
		createdAt int64
		updatedAt int64
	)
	if err := s.Scan(&b.ID, &owner, &b.CategoryID, &ym, &b.Amount, &scope, &createdAt, &updatedAt); err != nil {
		return core.Budget{}, err
	}
	b.Owner = core.UserID(owner)
	b.YearMonth = core.YearMonth(ym)
	b.Scope = core.Scope(scope)
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return b, nil
}

func (r *Repository) InsertBudget(ctx context.Context, b core.Budget) error {
	_, err := r.exec(ctx, `INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Owner), b.CategoryID, string(b.YearMonth), b.Amount, string(b.Scope),
		toMillis(b.CreatedAt), toMillis(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *Repository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	b, err := scanBudget(r.queryRow(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if err != nil {
		return core.Budget{}, notFound(err)
	}
	return b, nil
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) error {
	return r.execOne(ctx, `UPDATE budgets SET amount = ?, scope = ?, updated_at = ? WHERE id = ?`,
		b.Amount, string(b.Scope), toMillis(b.UpdatedAt), b.ID)
}

func (r *Repository) DeleteBudget(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM budgets WHERE id = ?`, id)
}

func (r *Repository) ListBudgetsForMonth(ctx context.Context, owner core.UserID, ym core.YearMonth) ([]core.Budget, error) {
	rows, err := r.query(ctx, `SELECT `+budgetColumns+` FROM budgets
		WHERE owner = ? AND year_month = ? ORDER BY created_at, id`, string(owner), string(ym))
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return collect(rows, scanBudget)
}
