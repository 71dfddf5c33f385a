package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// DefaultCategories seeds a new user's taxonomy.
var DefaultCategories = []core.Category{
	{Label: "Food & Dining", Slug: "food-dining", Kind: core.Expense, Scope: core.ScopePersonal},
	{Label: "Groceries", Slug: "groceries", Kind: core.Expense, Scope: core.ScopePersonal},
	{Label: "Transportation", Slug: "transportation", Kind: core.Expense, Scope: core.ScopePersonal},
	{Label: "Utilities", Slug: "utilities", Kind: core.Expense, Scope: core.ScopeBoth},
	{Label: "Rent/Mortgage", Slug: "rent-mortgage", Kind: core.Expense, Scope: core.ScopePersonal},
	{Label: "Healthcare", Slug: "healthcare", Kind: core.Expense, Scope: core.ScopePersonal},
	{Label: "Entertainment", Slug: "entertainment", Kind: core.Expense, Scope: core.ScopePersonal},
	{Label: "Shopping", Slug: "shopping", Kind: core.Expense, Scope: core.ScopePersonal},
	{Label: "Education", Slug: "education", Kind: core.Expense, Scope: core.ScopePersonal},
	{Label: "Subscriptions", Slug: "subscriptions", Kind: core.Expense, Scope: core.ScopeBoth},
	{Label: "Office Supplies", Slug: "office-supplies", Kind: core.Expense, Scope: core.ScopeBusiness},
	{Label: "Marketing", Slug: "marketing", Kind: core.Expense, Scope: core.ScopeBusiness},
	{Label: "Software & Tools", Slug: "software-tools", Kind: core.Expense, Scope: core.ScopeBusiness},
	{Label: "Professional Services", Slug: "professional-services", Kind: core.Expense, Scope: core.ScopeBusiness},
	{Label: "Salary", Slug: "salary", Kind: core.Income, Scope: core.ScopePersonal},
	{Label: "Business Income", Slug: "business-income", Kind: core.Income, Scope: core.ScopeBusiness},
	{Label: "Investment Returns", Slug: "investment", Kind: core.Income, Scope: core.ScopeBoth},
	{Label: "Other Income", Slug: "other-income", Kind: core.Income, Scope: core.ScopeBoth},
}

type CategoryService struct {
	base
}

func NewCategoryService(st store.Store, opts Options) *CategoryService {
	return &CategoryService{base: newBase(st, opts, log.ComponentLedger)}
}

// List returns the caller's and global categories, optionally filtered by kind
// and scope (a concrete scope also matches "both").
func (s *CategoryService) List(ctx context.Context, caller core.UserID, kind core.Kind, scope core.Scope) ([]core.Category, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	all, err := s.store.ListCategories(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(all))
	for _, c := range all {
		if kind != "" && c.Kind != kind {
			continue
		}
		if !c.Scope.Covers(scope) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, caller core.UserID, id string) (core.Category, error) {
	if err := caller.Validate(); err != nil {
		return core.Category{}, err
	}
	return visibleCategory(ctx, s.store, caller, id)
}

// Create adds a user category. The slug defaults to the slugified label and
// must be unique among the caller's categories.
func (s *CategoryService) Create(ctx context.Context, caller core.UserID, draft core.Category) (core.Category, error) {
	if err := caller.Validate(); err != nil {
		return core.Category{}, err
	}
	c := core.Category{
		ID:        uuid.NewString(),
		Owner:     caller,
		Label:     strings.TrimSpace(draft.Label),
		Slug:      strings.TrimSpace(draft.Slug),
		Kind:      draft.Kind,
		Scope:     draft.Scope,
		CreatedAt: s.now(),
	}
	if c.Slug == "" {
		c.Slug = core.Slugify(c.Label)
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		return insertCategory(ctx, l, c)
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func insertCategory(ctx context.Context, l store.CategoryStore, c core.Category) error {
	_, err := l.FindCategoryBySlug(ctx, c.Owner, c.Slug)
	switch {
	case err == nil:
		return core.NewValidationError("slug", "category with slug %q already exists", c.Slug)
	case !errors.Is(err, core.ErrNotFound):
		return err
	}
	return l.InsertCategory(ctx, c)
}

// Update changes label or scope. Kind is immutable and global categories are read-only.
func (s *CategoryService) Update(ctx context.Context, caller core.UserID, id string, upd core.CategoryUpdate) (core.Category, error) {
	if err := caller.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := upd.Validate(); err != nil {
		return core.Category{}, err
	}
	var updated core.Category
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		c, err := l.GetCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("category %s: %w", id, err)
		}
		if c.Owner != caller {
			return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
		}
		updated = upd.Apply(c)
		return l.UpdateCategory(ctx, updated)
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// SeedDefaults installs DefaultCategories for a caller that has no categories
// of their own. It returns the number of categories created.
func (s *CategoryService) SeedDefaults(ctx context.Context, caller core.UserID) (int, error) {
	if err := caller.Validate(); err != nil {
		return 0, err
	}
	created := 0
	err := s.store.Atomic(ctx, func(l store.Ledger) error {
		existing, err := l.ListCategories(ctx, caller)
		if err != nil {
			return err
		}
		for _, c := range existing {
			if c.Owner == caller {
				return nil
			}
		}
		now := s.now()
		for _, def := range DefaultCategories {
			c := def
			c.ID = uuid.NewString()
			c.Owner = caller
			c.CreatedAt = now
			if err := insertCategory(ctx, l, c); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	if created > 0 {
		s.logger.InfoContext(ctx, "Default categories seeded", log.FieldUser, string(caller), "count", created)
	}
	return created, nil
}
