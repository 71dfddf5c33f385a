package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const templateColumns = `id, owner, account_id, category_id, amount, kind, is_business, description,
	frequency, interval_count, day_of_month, day_of_week, start_date, next_occurrence, end_date,
	active, created_at, updated_at`

func scanTemplate(s scanner) (core.RecurringTemplate, error) {
	var (
		t          core.RecurringTemplate
		owner      string
		kind       string
		frequency  string
		interval   int64
		dayOfMonth sql.NullInt64
		dayOfWeek  sql.NullInt64
		startDate  int64
		next       int64
		endDate    sql.NullInt64
		createdAt  int64
		updatedAt  int64
	)
	if err := s.Scan(&t.ID, &owner, &t.AccountID, &t.CategoryID, &t.Amount, &kind, &t.IsBusiness, &t.Description,
		&frequency, &interval, &dayOfMonth, &dayOfWeek, &startDate, &next, &endDate,
		&t.Active, &createdAt, &updatedAt); err != nil {
		return core.RecurringTemplate{}, err
	}
	t.Owner = core.UserID(owner)
	t.Kind = core.Kind(kind)
	t.Frequency = core.Frequency(frequency)
	t.Interval = int(interval)
	t.DayOfMonth = intPtr(dayOfMonth)
	t.DayOfWeek = intPtr(dayOfWeek)
	t.StartDate = fromMillis(startDate)
	t.NextOccurrence = fromMillis(next)
	t.EndDate = timePtr(endDate)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func (r *Repository) InsertTemplate(ctx context.Context, t core.RecurringTemplate) error {
	_, err := r.exec(ctx, `INSERT INTO recurring_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Owner), t.AccountID, t.CategoryID, t.Amount, string(t.Kind), t.IsBusiness, t.Description,
		string(t.Frequency), t.Interval, nullInt(t.DayOfMonth), nullInt(t.DayOfWeek),
		toMillis(t.StartDate), toMillis(t.NextOccurrence), nullMillis(t.EndDate),
		t.Active, toMillis(t.CreatedAt), toMillis(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert recurring template: %w", err)
	}
	return nil
}

func (r *Repository) GetTemplate(ctx context.Context, id string) (core.RecurringTemplate, error) {
	t, err := scanTemplate(r.queryRow(ctx, `SELECT `+templateColumns+` FROM recurring_templates WHERE id = ?`, id))
	if err != nil {
		return core.RecurringTemplate{}, notFound(err)
	}
	return t, nil
}

func (r *Repository) UpdateTemplate(ctx context.Context, t core.RecurringTemplate) error {
	return r.execOne(ctx, `UPDATE recurring_templates SET amount = ?, description = ?, frequency = ?,
		interval_count = ?, day_of_month = ?, day_of_week = ?, next_occurrence = ?, end_date = ?,
		active = ?, updated_at = ? WHERE id = ?`,
		t.Amount, t.Description, string(t.Frequency), t.Interval, nullInt(t.DayOfMonth), nullInt(t.DayOfWeek),
		toMillis(t.NextOccurrence), nullMillis(t.EndDate), t.Active, toMillis(t.UpdatedAt), t.ID)
}

func (r *Repository) DeleteTemplate(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM recurring_templates WHERE id = ?`, id)
}

func (r *Repository) ListTemplates(ctx context.Context, owner core.UserID) ([]core.RecurringTemplate, error) {
	rows, err := r.query(ctx, `SELECT `+templateColumns+` FROM recurring_templates WHERE owner = ? ORDER BY created_at, id`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	return collect(rows, scanTemplate)
}

func (r *Repository) DueTemplates(ctx context.Context, now time.Time) ([]core.RecurringTemplate, error) {
	rows, err := r.query(ctx, `SELECT `+templateColumns+` FROM recurring_templates
		WHERE active = ? AND next_occurrence <= ? ORDER BY next_occurrence, id`, true, toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("list due templates: %w", err)
	}
	return collect(rows, scanTemplate)
}
