package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestBudgetService_VsActual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	acc := f.account(t, alice, "Main", "5000", false)
	food := f.category(t, alice, "Food", core.Expense)
	refund := f.category(t, alice, "Refunds", core.Income)

	if _, err := f.budgets.Upsert(ctx, alice, core.Budget{CategoryID: food.ID, YearMonth: "2025-03", Amount: dec("1000")}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	f.txn(t, alice, acc, food, core.Expense, "700", date(2025, 3, 2))
	f.txn(t, alice, acc, food, core.Expense, "500", date(2025, 3, 31))
	f.txn(t, alice, acc, food, core.Expense, "999", date(2025, 4, 1))
	f.txn(t, alice, acc, food, core.Expense, "999", date(2025, 2, 28))
	f.txn(t, alice, acc, refund, core.Income, "50", date(2025, 3, 5))

	got, err := f.budgets.VsActual(ctx, alice, "2025-03", "")
	if err != nil {
		t.Fatalf("VsActual() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("VsActual() returned %d statuses, want 1", len(got))
	}
	st := got[0]
	if !st.Spent.Equal(dec("1200")) {
		t.Errorf("Spent = %s, want 1200", st.Spent)
	}
	if !st.Remaining.Equal(dec("-200")) {
		t.Errorf("Remaining = %s, want -200", st.Remaining)
	}
	if st.Percentage != 120 {
		t.Errorf("Percentage = %v, want 120", st.Percentage)
	}
	if !st.IsOverBudget {
		t.Errorf("IsOverBudget = false, want true")
	}
	if st.CategoryLabel != "Food" {
		t.Errorf("CategoryLabel = %q, want Food", st.CategoryLabel)
	}
}

func TestBudgetStatus(t *testing.T) {
	tests := []struct {
		name     string
		budgeted string
		spent    string
		pct      float64
		over     bool
		label    string
	}{
		{"under budget", "400", "100", 25, false, "Food"},
		{"exactly on budget", "100", "100", 100, false, "Food"},
		{"zero budget", "0", "80", 0, true, "Food"},
		{"unknown category", "10", "0", 0, false, unknownCategoryLabel},
	}
	labels := map[string]string{"food": "Food"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catID := "food"
			if tt.label == unknownCategoryLabel {
				catID = "gone"
			}
			got := budgetStatus(core.Budget{CategoryID: catID, Amount: dec(tt.budgeted)}, dec(tt.spent), labels)
			if got.Percentage != tt.pct {
				t.Errorf("Percentage = %v, want %v", got.Percentage, tt.pct)
			}
			if got.IsOverBudget != tt.over {
				t.Errorf("IsOverBudget = %v, want %v", got.IsOverBudget, tt.over)
			}
			if got.CategoryLabel != tt.label {
				t.Errorf("CategoryLabel = %q, want %q", got.CategoryLabel, tt.label)
			}
		})
	}
}

func TestBudgetService_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	food := f.category(t, alice, "Food", core.Expense)

	first, err := f.budgets.Upsert(ctx, alice, core.Budget{CategoryID: food.ID, YearMonth: "2025-03", Amount: dec("100")})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if first.Scope != core.ScopeBoth {
		t.Errorf("Scope = %q, want default both", first.Scope)
	}
	second, err := f.budgets.Upsert(ctx, alice, core.Budget{CategoryID: food.ID, YearMonth: "2025-03", Amount: dec("250"), Scope: core.ScopePersonal})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Upsert() created a second budget %s, want update of %s", second.ID, first.ID)
	}
	list, _ := f.budgets.ListForMonth(ctx, alice, "2025-03", "")
	if len(list) != 1 || !list[0].Amount.Equal(dec("250")) {
		t.Errorf("ListForMonth() = %+v, want one budget of 250", list)
	}

	business, _ := f.budgets.ListForMonth(ctx, alice, "2025-03", core.ScopeBusiness)
	if len(business) != 0 {
		t.Errorf("ListForMonth(business) returned a personal budget")
	}
}

func TestBudgetService_Copy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	food := f.category(t, alice, "Food", core.Expense)
	rent := f.category(t, alice, "Rent", core.Expense)
	fun := f.category(t, alice, "Fun", core.Expense)

	for _, c := range []core.Category{food, rent, fun} {
		if _, err := f.budgets.Upsert(ctx, alice, core.Budget{CategoryID: c.ID, YearMonth: "2025-03", Amount: dec("100")}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	if _, err := f.budgets.Upsert(ctx, alice, core.Budget{CategoryID: rent.ID, YearMonth: "2025-04", Amount: dec("900")}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	res, err := f.budgets.Copy(ctx, alice, "2025-03", "2025-04")
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if res.Copied != 2 || res.Skipped != 1 {
		t.Errorf("Copy() = %+v, want 2 copied 1 skipped", res)
	}
	april, _ := f.budgets.ListForMonth(ctx, alice, "2025-04", "")
	for _, b := range april {
		if b.CategoryID == rent.ID && !b.Amount.Equal(dec("900")) {
			t.Errorf("existing budget overwritten: %s", b.Amount)
		}
	}
	if len(april) != 3 {
		t.Errorf("April has %d budgets, want 3", len(april))
	}

	if _, err := f.budgets.Copy(ctx, alice, "2025-13", "2025-04"); !errors.Is(err, core.ErrValidation) {
		t.Errorf("Copy() with bad month error = %v, want validation error", err)
	}
}

func TestBudgetService_DeleteOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	food := f.category(t, alice, "Food", core.Expense)
	b, err := f.budgets.Upsert(ctx, alice, core.Budget{CategoryID: food.ID, YearMonth: "2025-03", Amount: dec("100")})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := f.budgets.Delete(ctx, bob, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() by other user error = %v, want ErrNotFound", err)
	}
	if err := f.budgets.Delete(ctx, alice, b.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}
