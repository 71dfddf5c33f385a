package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

func TestAtomicRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	acc := core.Account{ID: "a1", Owner: "u1", Name: "Main", Type: core.AccountCurrent, CurrentBalance: decimal.NewFromInt(100)}
	if err := s.InsertAccount(ctx, acc); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(l store.Ledger) error {
		acc.CurrentBalance = decimal.NewFromInt(0)
		if err := l.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Atomic() = %v, want boom", err)
	}

	got, err := s.GetAccount(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CurrentBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s, want 100 after rollback", got.CurrentBalance)
	}
}

func TestAtomicCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.Atomic(ctx, func(l store.Ledger) error {
		return l.InsertTransaction(ctx, core.Transaction{ID: "t1", Owner: "u1", Tags: []string{"x"}})
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTransaction(ctx, "t1"); err != nil {
		t.Fatalf("GetTransaction() = %v", err)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.GetAccount(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetAccount() = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteTransaction() = %v, want ErrNotFound", err)
	}
	if _, err := s.FindCategoryBySlug(ctx, "u1", "food"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindCategoryBySlug() = %v, want ErrNotFound", err)
	}
}

func TestListCategoriesIncludesGlobal(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.InsertCategory(ctx, core.Category{ID: "g", Label: "Global"})
	_ = s.InsertCategory(ctx, core.Category{ID: "mine", Owner: "u1", Label: "Mine"})
	_ = s.InsertCategory(ctx, core.Category{ID: "theirs", Owner: "u2", Label: "Theirs"})

	got, err := s.ListCategories(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "mine" || got[1].ID != "g" {
		t.Fatalf("ListCategories() = %+v", got)
	}
}

func TestDueTemplatesAndRange(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_ = s.InsertTemplate(ctx, core.RecurringTemplate{ID: "due", Active: true, NextOccurrence: now})
	_ = s.InsertTemplate(ctx, core.RecurringTemplate{ID: "future", Active: true, NextOccurrence: now.Add(time.Hour)})
	_ = s.InsertTemplate(ctx, core.RecurringTemplate{ID: "paused", Active: false, NextOccurrence: now.Add(-time.Hour)})

	due, _ := s.DueTemplates(ctx, now)
	if len(due) != 1 || due[0].ID != "due" {
		t.Fatalf("DueTemplates() = %+v", due)
	}

	_ = s.InsertTransaction(ctx, core.Transaction{ID: "in", Owner: "u1", Date: now})
	_ = s.InsertTransaction(ctx, core.Transaction{ID: "edge", Owner: "u1", Date: now.AddDate(0, 1, 0)})
	got, _ := s.ListTransactionsInRange(ctx, "u1", now, now.AddDate(0, 1, 0))
	if len(got) != 1 || got[0].ID != "in" {
		t.Fatalf("ListTransactionsInRange() = %+v", got)
	}
}
