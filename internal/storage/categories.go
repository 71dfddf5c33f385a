package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

const categoryColumns = `id, owner, label, slug, kind, scope, created_at`

func scanCategory(s scanner) (core.Category, error) {
	var (
		c         core.Category
		owner     sql.NullString
		kind      string
		scope     string
		createdAt int64
	)
	if err := s.Scan(&c.ID, &owner, &c.Label, &c.Slug, &kind, &scope, &createdAt); err != nil {
		return core.Category{}, err
	}
	c.Owner = core.UserID(owner.String)
	c.Kind = core.Kind(kind)
	c.Scope = core.Scope(scope)
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func (r *Repository) InsertCategory(ctx context.Context, c core.Category) error {
	_, err := r.exec(ctx, `INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nullString(string(c.Owner)), c.Label, c.Slug, string(c.Kind), string(c.Scope), toMillis(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	c, err := scanCategory(r.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err != nil {
		return core.Category{}, notFound(err)
	}
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	return r.execOne(ctx, `UPDATE categories SET label = ?, scope = ? WHERE id = ?`,
		c.Label, string(c.Scope), c.ID)
}

func (r *Repository) ListCategories(ctx context.Context, owner core.UserID) ([]core.Category, error) {
	rows, err := r.query(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE owner = ? OR owner IS NULL ORDER BY (owner IS NULL), label`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return collect(rows, scanCategory)
}

func (r *Repository) FindCategoryBySlug(ctx context.Context, owner core.UserID, slug string) (core.Category, error) {
	var row *sql.Row
	if owner == "" {
		row = r.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE owner IS NULL AND slug = ?`, slug)
	} else {
		row = r.queryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE owner = ? AND slug = ?`, string(owner), slug)
	}
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, notFound(err)
	}
	return c, nil
}
