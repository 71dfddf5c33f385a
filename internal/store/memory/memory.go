// Package memory is an in-process store.Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	accounts     map[string]core.Account
	categories   map[string]core.Category
	transactions map[string]core.Transaction
	budgets      map[string]core.Budget
	templates    map[string]core.RecurringTemplate
}

func New() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		accounts:     map[string]core.Account{},
		categories:   map[string]core.Category{},
		transactions: map[string]core.Transaction{},
		budgets:      map[string]core.Budget{},
		templates:    map[string]core.RecurringTemplate{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.budgets {
		c.budgets[k] = v
	}
	for k, v := range s.templates {
		c.templates[k] = v
	}
	return c
}

// Atomic runs fn against a private copy of the state and publishes it only on success.
func (s *Store) Atomic(_ context.Context, fn func(l store.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// with runs fn under the store lock against the live state.
func with[T any](s *Store, fn func(st *state) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func exec(s *Store, fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *Store) InsertAccount(ctx context.Context, a core.Account) error {
	return exec(s, func(st *state) error { return st.InsertAccount(ctx, a) })
}

func (s *Store) GetAccount(ctx context.Context, id string) (core.Account, error) {
	return with(s, func(st *state) (core.Account, error) { return st.GetAccount(ctx, id) })
}

func (s *Store) UpdateAccount(ctx context.Context, a core.Account) error {
	return exec(s, func(st *state) error { return st.UpdateAccount(ctx, a) })
}

func (s *Store) ListAccounts(ctx context.Context, owner core.UserID) ([]core.Account, error) {
	return with(s, func(st *state) ([]core.Account, error) { return st.ListAccounts(ctx, owner) })
}

func (s *Store) InsertCategory(ctx context.Context, c core.Category) error {
	return exec(s, func(st *state) error { return st.InsertCategory(ctx, c) })
}

func (s *Store) GetCategory(ctx context.Context, id string) (core.Category, error) {
	return with(s, func(st *state) (core.Category, error) { return st.GetCategory(ctx, id) })
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	return exec(s, func(st *state) error { return st.UpdateCategory(ctx, c) })
}

func (s *Store) ListCategories(ctx context.Context, owner core.UserID) ([]core.Category, error) {
	return with(s, func(st *state) ([]core.Category, error) { return st.ListCategories(ctx, owner) })
}

func (s *Store) FindCategoryBySlug(ctx context.Context, owner core.UserID, slug string) (core.Category, error) {
	return with(s, func(st *state) (core.Category, error) { return st.FindCategoryBySlug(ctx, owner, slug) })
}

func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) error {
	return exec(s, func(st *state) error { return st.InsertTransaction(ctx, t) })
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return with(s, func(st *state) (core.Transaction, error) { return st.GetTransaction(ctx, id) })
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return exec(s, func(st *state) error { return st.UpdateTransaction(ctx, t) })
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return exec(s, func(st *state) error { return st.DeleteTransaction(ctx, id) })
}

func (s *Store) ListTransactions(ctx context.Context, owner core.UserID) ([]core.Transaction, error) {
	return with(s, func(st *state) ([]core.Transaction, error) { return st.ListTransactions(ctx, owner) })
}

func (s *Store) ListTransactionsInRange(ctx context.Context, owner core.UserID, from, to time.Time) ([]core.Transaction, error) {
	return with(s, func(st *state) ([]core.Transaction, error) {
		return st.ListTransactionsInRange(ctx, owner, from, to)
	})
}

func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID string) ([]core.Transaction, error) {
	return with(s, func(st *state) ([]core.Transaction, error) { return st.ListTransactionsByAccount(ctx, accountID) })
}

func (s *Store) InsertBudget(ctx context.Context, b core.Budget) error {
	return exec(s, func(st *state) error { return st.InsertBudget(ctx, b) })
}

func (s *Store) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	return with(s, func(st *state) (core.Budget, error) { return st.GetBudget(ctx, id) })
}

func (s *Store) UpdateBudget(ctx context.Context, b core.Budget) error {
	return exec(s, func(st *state) error { return st.UpdateBudget(ctx, b) })
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	return exec(s, func(st *state) error { return st.DeleteBudget(ctx, id) })
}

func (s *Store) ListBudgetsForMonth(ctx context.Context, owner core.UserID, ym core.YearMonth) ([]core.Budget, error) {
	return with(s, func(st *state) ([]core.Budget, error) { return st.ListBudgetsForMonth(ctx, owner, ym) })
}

func (s *Store) InsertTemplate(ctx context.Context, r core.RecurringTemplate) error {
	return exec(s, func(st *state) error { return st.InsertTemplate(ctx, r) })
}

func (s *Store) GetTemplate(ctx context.Context, id string) (core.RecurringTemplate, error) {
	return with(s, func(st *state) (core.RecurringTemplate, error) { return st.GetTemplate(ctx, id) })
}

func (s *Store) UpdateTemplate(ctx context.Context, r core.RecurringTemplate) error {
	return exec(s, func(st *state) error { return st.UpdateTemplate(ctx, r) })
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	return exec(s, func(st *state) error { return st.DeleteTemplate(ctx, id) })
}

func (s *Store) ListTemplates(ctx context.Context, owner core.UserID) ([]core.RecurringTemplate, error) {
	return with(s, func(st *state) ([]core.RecurringTemplate, error) { return st.ListTemplates(ctx, owner) })
}

func (s *Store) DueTemplates(ctx context.Context, now time.Time) ([]core.RecurringTemplate, error) {
	return with(s, func(st *state) ([]core.RecurringTemplate, error) { return st.DueTemplates(ctx, now) })
}

// state implements store.Ledger without locking; callers hold Store.mu.

func (st *state) InsertAccount(_ context.Context, a core.Account) error {
	st.accounts[a.ID] = a
	return nil
}

func (st *state) GetAccount(_ context.Context, id string) (core.Account, error) {
	a, ok := st.accounts[id]
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}

func (st *state) UpdateAccount(_ context.Context, a core.Account) error {
	if _, ok := st.accounts[a.ID]; !ok {
		return core.ErrNotFound
	}
	st.accounts[a.ID] = a
	return nil
}

func (st *state) ListAccounts(_ context.Context, owner core.UserID) ([]core.Account, error) {
	var out []core.Account
	for _, a := range st.accounts {
		if a.Owner == owner {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (st *state) InsertCategory(_ context.Context, c core.Category) error {
	st.categories[c.ID] = c
	return nil
}

func (st *state) GetCategory(_ context.Context, id string) (core.Category, error) {
	c, ok := st.categories[id]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (st *state) UpdateCategory(_ context.Context, c core.Category) error {
	if _, ok := st.categories[c.ID]; !ok {
		return core.ErrNotFound
	}
	st.categories[c.ID] = c
	return nil
}

func (st *state) ListCategories(_ context.Context, owner core.UserID) ([]core.Category, error) {
	var own, global []core.Category
	for _, c := range st.categories {
		switch c.Owner {
		case owner:
			own = append(own, c)
		case "":
			global = append(global, c)
		}
	}
	byLabel := func(cs []core.Category) {
		sort.Slice(cs, func(i, j int) bool { return cs[i].Label < cs[j].Label })
	}
	byLabel(own)
	byLabel(global)
	return append(own, global...), nil
}

func (st *state) FindCategoryBySlug(_ context.Context, owner core.UserID, slug string) (core.Category, error) {
	for _, c := range st.categories {
		if c.Owner == owner && c.Slug == slug {
			return c, nil
		}
	}
	return core.Category{}, core.ErrNotFound
}

func (st *state) InsertTransaction(_ context.Context, t core.Transaction) error {
	st.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (st *state) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	t, ok := st.transactions[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return copyTransaction(t), nil
}

func (st *state) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if _, ok := st.transactions[t.ID]; !ok {
		return core.ErrNotFound
	}
	st.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (st *state) DeleteTransaction(_ context.Context, id string) error {
	if _, ok := st.transactions[id]; !ok {
		return core.ErrNotFound
	}
	delete(st.transactions, id)
	return nil
}

func (st *state) ListTransactions(_ context.Context, owner core.UserID) ([]core.Transaction, error) {
	return st.filterTransactions(func(t core.Transaction) bool { return t.Owner == owner }), nil
}

func (st *state) ListTransactionsInRange(_ context.Context, owner core.UserID, from, to time.Time) ([]core.Transaction, error) {
	return st.filterTransactions(func(t core.Transaction) bool {
		return t.Owner == owner && !t.Date.Before(from) && t.Date.Before(to)
	}), nil
}

func (st *state) ListTransactionsByAccount(_ context.Context, accountID string) ([]core.Transaction, error) {
	return st.filterTransactions(func(t core.Transaction) bool { return t.AccountID == accountID }), nil
}

func (st *state) filterTransactions(keep func(core.Transaction) bool) []core.Transaction {
	var out []core.Transaction
	for _, t := range st.transactions {
		if keep(t) {
			out = append(out, copyTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Date, out[j].Date, out[i].ID, out[j].ID) })
	return out
}

func (st *state) InsertBudget(_ context.Context, b core.Budget) error {
	st.budgets[b.ID] = b
	return nil
}

func (st *state) GetBudget(_ context.Context, id string) (core.Budget, error) {
	b, ok := st.budgets[id]
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (st *state) UpdateBudget(_ context.Context, b core.Budget) error {
	if _, ok := st.budgets[b.ID]; !ok {
		return core.ErrNotFound
	}
	st.budgets[b.ID] = b
	return nil
}

func (st *state) DeleteBudget(_ context.Context, id string) error {
	if _, ok := st.budgets[id]; !ok {
		return core.ErrNotFound
	}
	delete(st.budgets, id)
	return nil
}

func (st *state) ListBudgetsForMonth(_ context.Context, owner core.UserID, ym core.YearMonth) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range st.budgets {
		if b.Owner == owner && b.YearMonth == ym {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (st *state) InsertTemplate(_ context.Context, r core.RecurringTemplate) error {
	st.templates[r.ID] = copyTemplate(r)
	return nil
}

func (st *state) GetTemplate(_ context.Context, id string) (core.RecurringTemplate, error) {
	r, ok := st.templates[id]
	if !ok {
		return core.RecurringTemplate{}, core.ErrNotFound
	}
	return copyTemplate(r), nil
}

func (st *state) UpdateTemplate(_ context.Context, r core.RecurringTemplate) error {
	if _, ok := st.templates[r.ID]; !ok {
		return core.ErrNotFound
	}
	st.templates[r.ID] = copyTemplate(r)
	return nil
}

func (st *state) DeleteTemplate(_ context.Context, id string) error {
	if _, ok := st.templates[id]; !ok {
		return core.ErrNotFound
	}
	delete(st.templates, id)
	return nil
}

func (st *state) ListTemplates(_ context.Context, owner core.UserID) ([]core.RecurringTemplate, error) {
	return st.filterTemplates(func(r core.RecurringTemplate) bool { return r.Owner == owner }), nil
}

func (st *state) DueTemplates(_ context.Context, now time.Time) ([]core.RecurringTemplate, error) {
	return st.filterTemplates(func(r core.RecurringTemplate) bool {
		return r.Active && !r.NextOccurrence.After(now)
	}), nil
}

func (st *state) filterTemplates(keep func(core.RecurringTemplate) bool) []core.RecurringTemplate {
	var out []core.RecurringTemplate
	for _, r := range st.templates {
		if keep(r) {
			out = append(out, copyTemplate(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out
}

func less(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}

func copyTransaction(t core.Transaction) core.Transaction {
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	return t
}

func copyTemplate(r core.RecurringTemplate) core.RecurringTemplate {
	if r.DayOfMonth != nil {
		v := *r.DayOfMonth
		r.DayOfMonth = &v
	}
	if r.DayOfWeek != nil {
		v := *r.DayOfWeek
		r.DayOfWeek = &v
	}
	if r.EndDate != nil {
		v := *r.EndDate
		r.EndDate = &v
	}
	return r
}
