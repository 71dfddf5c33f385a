package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const transactionColumns = `id, owner, account_id, category_id, date, amount, kind, is_business,
	description, notes, tags, recurring_template_id, created_at, updated_at`

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		owner      string
		kind       string
		date       int64
		notes      sql.NullString
		tags       sql.NullString
		templateID sql.NullString
		createdAt  int64
		updatedAt  int64
	)
	if err := s.Scan(&t.ID, &owner, &t.AccountID, &t.CategoryID, &date, &t.Amount, &kind, &t.IsBusiness,
		&t.Description, &notes, &tags, &templateID, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}
	t.Owner = core.UserID(owner)
	t.Kind = core.Kind(kind)
	t.Date = fromMillis(date)
	t.Notes = notes.String
	t.RecurringTemplateID = templateID.String
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &t.Tags); err != nil {
			return core.Transaction{}, fmt.Errorf("decode tags of %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func encodeTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode tags: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	_, err = r.exec(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Owner), t.AccountID, t.CategoryID, toMillis(t.Date), t.Amount, string(t.Kind), t.IsBusiness,
		t.Description, nullString(t.Notes), tags, nullString(t.RecurringTemplateID),
		toMillis(t.CreatedAt), toMillis(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.queryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		return core.Transaction{}, notFound(err)
	}
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	return r.execOne(ctx, `UPDATE transactions SET account_id = ?, category_id = ?, date = ?, amount = ?,
		kind = ?, is_business = ?, description = ?, notes = ?, tags = ?, updated_at = ? WHERE id = ?`,
		t.AccountID, t.CategoryID, toMillis(t.Date), t.Amount, string(t.Kind), t.IsBusiness,
		t.Description, nullString(t.Notes), tags, toMillis(t.UpdatedAt), t.ID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM transactions WHERE id = ?`, id)
}

func (r *Repository) ListTransactions(ctx context.Context, owner core.UserID) ([]core.Transaction, error) {
	rows, err := r.query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE owner = ? ORDER BY date, id`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collect(rows, scanTransaction)
}

func (r *Repository) ListTransactionsInRange(ctx context.Context, owner core.UserID, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE owner = ? AND date >= ? AND date < ? ORDER BY date, id`,
		string(owner), toMillis(from), toMillis(to))
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	return collect(rows, scanTransaction)
}

func (r *Repository) ListTransactionsByAccount(ctx context.Context, accountID string) ([]core.Transaction, error) {
	rows, err := r.query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE account_id = ? ORDER BY date, id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account transactions: %w", err)
	}
	return collect(rows, scanTransaction)
}
