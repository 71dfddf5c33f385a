package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const accountColumns = `id, owner, name, type, is_business, currency, initial_balance, current_balance, archived, created_at`

func scanAccount(s scanner) (core.Account, error) {
	var (
		a         core.Account
		owner     string
		accType   string
		createdAt int64
	)
	if err := s.Scan(&a.ID, &owner, &a.Name, &accType, &a.IsBusiness, &a.Currency,
		&a.InitialBalance, &a.CurrentBalance, &a.Archived, &createdAt); err != nil {
		return core.Account{}, err
	}
	a.Owner = core.UserID(owner)
	a.Type = core.AccountType(accType)
	a.CreatedAt = fromMillis(createdAt)
	return a, nil
}

func (r *Repository) InsertAccount(ctx context.Context, a core.Account) error {
	_, err := r.exec(ctx, `INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Owner), a.Name, string(a.Type), a.IsBusiness, a.Currency,
		a.InitialBalance, a.CurrentBalance, a.Archived, toMillis(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	a, err := scanAccount(r.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err != nil {
		return core.Account{}, notFound(err)
	}
	return a, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	return r.execOne(ctx, `UPDATE accounts SET name = ?, type = ?, is_business = ?, currency = ?,
		initial_balance = ?, current_balance = ?, archived = ? WHERE id = ?`,
		a.Name, string(a.Type), a.IsBusiness, a.Currency,
		a.InitialBalance, a.CurrentBalance, a.Archived, a.ID)
}

func (r *Repository) ListAccounts(ctx context.Context, owner core.UserID) ([]core.Account, error) {
	rows, err := r.query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner = ? ORDER BY created_at, id`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return collect(rows, scanAccount)
}

// collect scans every row with fn and closes rows.
func collect[T any](rows *sql.Rows, fn func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := fn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
