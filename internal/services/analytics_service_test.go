package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestAnalyticsService_DashboardSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	personal := f.account(t, alice, "Personal", "1000", false)
	shop := f.account(t, alice, "Shop", "500", true)
	old := f.account(t, alice, "Old", "999", false)
	food := f.category(t, alice, "Food", core.Expense)
	salary := f.category(t, alice, "Salary", core.Income)

	f.txn(t, alice, personal, salary, core.Income, "300", date(2025, 3, 1))
	f.txn(t, alice, personal, food, core.Expense, "120", date(2025, 3, 2))
	f.txn(t, alice, shop, food, core.Expense, "80", date(2025, 3, 3))
	f.txn(t, alice, personal, food, core.Expense, "40", date(2025, 2, 27))
	if err := f.accounts.Archive(ctx, alice, old.ID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	tests := []struct {
		scope    core.Scope
		total    string
		income   string
		expenses string
		net      string
		count    int
	}{
		{"", "1560", "300", "200", "100", 3},
		{core.ScopePersonal, "1140", "300", "120", "180", 2},
		{core.ScopeBusiness, "420", "0", "80", "-80", 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			got, err := f.analytics.DashboardSummary(ctx, alice, tt.scope)
			if err != nil {
				t.Fatalf("DashboardSummary() error = %v", err)
			}
			if got.YearMonth != "2025-03" {
				t.Errorf("YearMonth = %q, want 2025-03", got.YearMonth)
			}
			if !got.TotalBalance.Equal(dec(tt.total)) {
				t.Errorf("TotalBalance = %s, want %s", got.TotalBalance, tt.total)
			}
			if !got.MonthIncome.Equal(dec(tt.income)) || !got.MonthExpenses.Equal(dec(tt.expenses)) {
				t.Errorf("income/expenses = %s/%s, want %s/%s", got.MonthIncome, got.MonthExpenses, tt.income, tt.expenses)
			}
			if !got.NetCashFlow.Equal(dec(tt.net)) {
				t.Errorf("NetCashFlow = %s, want %s", got.NetCashFlow, tt.net)
			}
			if got.TransactionCount != tt.count {
				t.Errorf("TransactionCount = %d, want %d", got.TransactionCount, tt.count)
			}
		})
	}
}

func TestAnalyticsService_SpendingByCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	acc := f.account(t, alice, "Main", "1000", false)
	food := f.category(t, alice, "Food", core.Expense)
	rent := f.category(t, alice, "Rent", core.Expense)

	f.txn(t, alice, acc, food, core.Expense, "10", date(2025, 3, 1))
	f.txn(t, alice, acc, food, core.Expense, "15", date(2025, 3, 31))
	f.txn(t, alice, acc, rent, core.Expense, "500", date(2025, 3, 5))
	f.txn(t, alice, acc, rent, core.Expense, "500", date(2025, 4, 1))

	got, err := f.analytics.SpendingByCategory(ctx, alice, date(2025, 3, 1), date(2025, 3, 31), "", core.Expense)
	if err != nil {
		t.Fatalf("SpendingByCategory() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].Label != "Rent" || !got[0].Amount.Equal(dec("500")) || got[0].Count != 1 {
		t.Errorf("first group = %+v, want Rent 500 x1", got[0])
	}
	if got[1].Label != "Food" || !got[1].Amount.Equal(dec("25")) || got[1].Count != 2 {
		t.Errorf("second group = %+v, want Food 25 x2", got[1])
	}

	if _, err := f.analytics.SpendingByCategory(ctx, alice, date(2025, 3, 31), date(2025, 3, 1), "", ""); !errors.Is(err, core.ErrValidation) {
		t.Errorf("reversed range error = %v, want validation error", err)
	}
}

func TestAnalyticsService_CashFlowSeries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	acc := f.account(t, alice, "Main", "1000", false)
	food := f.category(t, alice, "Food", core.Expense)
	salary := f.category(t, alice, "Salary", core.Income)

	f.txn(t, alice, acc, salary, core.Income, "1000", date(2025, 1, 31))
	f.txn(t, alice, acc, food, core.Expense, "200", date(2025, 3, 1))
	f.txn(t, alice, acc, food, core.Expense, "999", date(2024, 12, 31))

	got, err := f.analytics.CashFlowSeries(ctx, alice, 3, "")
	if err != nil {
		t.Fatalf("CashFlowSeries() error = %v", err)
	}
	want := []struct {
		ym  core.YearMonth
		net string
	}{
		{"2025-01", "1000"},
		{"2025-02", "0"},
		{"2025-03", "-200"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].YearMonth != w.ym || !got[i].Net.Equal(dec(w.net)) {
			t.Errorf("point %d = %s net %s, want %s net %s", i, got[i].YearMonth, got[i].Net, w.ym, w.net)
		}
	}

	for _, months := range []int{0, 121} {
		if _, err := f.analytics.CashFlowSeries(ctx, alice, months, ""); !errors.Is(err, core.ErrValidation) {
			t.Errorf("CashFlowSeries(%d) error = %v, want validation error", months, err)
		}
	}
}

func TestAnalyticsService_AccountBalances(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	for _, a := range []core.Account{
		{Name: "Card", Type: core.AccountCreditCard, InitialBalance: dec("-300")},
		{Name: "Wallet", Type: core.AccountCash, InitialBalance: dec("50")},
		{Name: "Savings", Type: core.AccountSavings, InitialBalance: dec("1000")},
		{Name: "Savings 2", Type: core.AccountSavings, InitialBalance: dec("500")},
	} {
		if _, err := f.accounts.Create(ctx, alice, a); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := f.analytics.AccountBalances(ctx, alice, "")
	if err != nil {
		t.Fatalf("AccountBalances() error = %v", err)
	}
	wantTypes := []core.AccountType{core.AccountSavings, core.AccountCreditCard, core.AccountCash}
	if len(got) != len(wantTypes) {
		t.Fatalf("got %d groups, want %d", len(got), len(wantTypes))
	}
	for i, typ := range wantTypes {
		if got[i].Type != typ {
			t.Errorf("group %d type = %s, want %s", i, got[i].Type, typ)
		}
	}
	if !got[0].Balance.Equal(dec("1500")) || got[0].Count != 2 {
		t.Errorf("savings group = %+v, want 1500 over 2 accounts", got[0])
	}
}

func TestAnalyticsService_RecentTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))
	personal := f.account(t, alice, "Personal", "1000", false)
	shop := f.account(t, alice, "Shop", "1000", true)
	food := f.category(t, alice, "Food", core.Expense)

	for d := 1; d <= 12; d++ {
		f.txn(t, alice, personal, food, core.Expense, "1", date(2025, 3, d))
	}
	f.txn(t, alice, shop, food, core.Expense, "2", date(2025, 3, 15))

	got, err := f.analytics.RecentTransactions(ctx, alice, 0, core.ScopePersonal)
	if err != nil {
		t.Fatalf("RecentTransactions() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("got %d transactions, want default limit 10", len(got))
	}
	if !got[0].Date.Equal(date(2025, 3, 12)) {
		t.Errorf("first = %v, want newest 2025-03-12", got[0].Date)
	}
	for _, v := range got {
		if v.IsBusiness {
			t.Errorf("business transaction %s leaked into personal scope", v.ID)
		}
	}
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, date(2025, 3, 20))

	n, err := f.categories.SeedDefaults(ctx, alice)
	if err != nil {
		t.Fatalf("SeedDefaults() error = %v", err)
	}
	if n != len(DefaultCategories) {
		t.Errorf("SeedDefaults() = %d, want %d", n, len(DefaultCategories))
	}
	if n, _ := f.categories.SeedDefaults(ctx, alice); n != 0 {
		t.Errorf("second SeedDefaults() = %d, want 0", n)
	}

	_, err = f.categories.Create(ctx, alice, core.Category{Label: "Groceries", Kind: core.Expense, Scope: core.ScopePersonal})
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("duplicate slug error = %v, want validation error", err)
	}

	business, err := f.categories.List(ctx, alice, core.Expense, core.ScopeBusiness)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, c := range business {
		if c.Kind != core.Expense || c.Scope == core.ScopePersonal {
			t.Errorf("List(expense, business) returned %s (%s, %s)", c.Label, c.Kind, c.Scope)
		}
	}

	mine := f.category(t, bob, "Tools", core.Expense)
	if _, err := f.categories.Get(ctx, alice, mine.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() of other user's category error = %v, want ErrNotFound", err)
	}
	label := "Hardware"
	if _, err := f.categories.Update(ctx, alice, mine.ID, core.CategoryUpdate{Label: &label}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() of other user's category error = %v, want ErrNotFound", err)
	}
	updated, err := f.categories.Update(ctx, bob, mine.ID, core.CategoryUpdate{Label: &label})
	if err != nil || updated.Label != "Hardware" || updated.Slug != mine.Slug {
		t.Errorf("Update() = %+v, %v; want label changed and slug kept", updated, err)
	}
}
