package core

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

const (
	ScopePersonal Scope = "personal"
	ScopeBusiness Scope = "business"
	ScopeBoth     Scope = "both"
)

const (
	AccountSavings    AccountType = "savings"
	AccountCurrent    AccountType = "current"
	AccountCreditCard AccountType = "credit_card"
	AccountCash       AccountType = "cash"
	AccountOther      AccountType = "other"
)

// AccountTypes lists account types in display order.
var AccountTypes = []AccountType{AccountSavings, AccountCurrent, AccountCreditCard, AccountCash, AccountOther}

type (
	UserID      string
	Frequency   string
	Kind        string
	Scope       string
	AccountType string

	Account struct {
		ID             string
		Owner          UserID
		Name           string
		Type           AccountType
		IsBusiness     bool
		Currency       string
		InitialBalance decimal.Decimal
		CurrentBalance decimal.Decimal
		Archived       bool
		CreatedAt      time.Time
	}

	// Category with an empty Owner is a global default visible to every user.
	Category struct {
		ID        string
		Owner     UserID
		Label     string
		Slug      string
		Kind      Kind
		Scope     Scope
		CreatedAt time.Time
	}

	Transaction struct {
		ID                  string
		Owner               UserID
		AccountID           string
		CategoryID          string
		Date                time.Time
		Amount              decimal.Decimal // always positive, sign comes from Kind
		Kind                Kind
		IsBusiness          bool
		Description         string
		Notes               string
		Tags                []string
		RecurringTemplateID string
		CreatedAt           time.Time
		UpdatedAt           time.Time
	}

	Budget struct {
		ID         string
		Owner      UserID
		CategoryID string
		YearMonth  YearMonth
		Amount     decimal.Decimal
		Scope      Scope
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	RecurringTemplate struct {
		ID             string
		Owner          UserID
		AccountID      string
		CategoryID     string
		Amount         decimal.Decimal
		Kind           Kind
		IsBusiness     bool
		Description    string
		Frequency      Frequency
		Interval       int
		DayOfMonth     *int // monthly only
		DayOfWeek      *int // stored, not used when advancing
		StartDate      time.Time
		NextOccurrence time.Time
		EndDate        *time.Time
		Active         bool
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}
)

func (u UserID) Validate() error {
	if strings.TrimSpace(string(u)) == "" {
		return ErrUnauthenticated
	}
	return nil
}

func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (k Kind) IsValid() bool {
	return k == Expense || k == Income
}

func (s Scope) IsValid() bool {
	switch s {
	case ScopePersonal, ScopeBusiness, ScopeBoth:
		return true
	}
	return false
}

// Covers reports whether an entity tagged with s is visible under the filter.
// An empty or "both" filter matches everything; a concrete filter also
// matches entities tagged "both".
func (s Scope) Covers(filter Scope) bool {
	if filter == "" || filter == ScopeBoth {
		return true
	}
	return s == filter || s == ScopeBoth
}

// MatchesBusiness applies the scope filter to an isBusiness flag.
func (s Scope) MatchesBusiness(isBusiness bool) bool {
	switch s {
	case ScopePersonal:
		return !isBusiness
	case ScopeBusiness:
		return isBusiness
	}
	return true
}

func (t AccountType) IsValid() bool {
	for _, v := range AccountTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Signed returns the balance effect of the transaction.
func (t Transaction) Signed() decimal.Decimal {
	return SignedAmount(t.Kind, t.Amount)
}

func (a Account) Validate() error {
	if err := validateLength("name", a.Name, 1, 100); err != nil {
		return err
	}
	if !a.Type.IsValid() {
		return NewValidationError("type", "unknown account type %q", a.Type)
	}
	if strings.TrimSpace(a.Currency) == "" {
		return NewValidationError("currency", "currency is required")
	}
	return nil
}

func (c Category) Validate() error {
	if err := validateLength("label", c.Label, 1, 100); err != nil {
		return err
	}
	if c.Slug == "" {
		return NewValidationError("slug", "slug is required")
	}
	if !c.Kind.IsValid() {
		return NewValidationError("kind", "unknown kind %q", c.Kind)
	}
	if !c.Scope.IsValid() {
		return NewValidationError("scope", "unknown scope %q", c.Scope)
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if !t.Kind.IsValid() {
		return NewValidationError("kind", "unknown kind %q", t.Kind)
	}
	if err := validateLength("description", t.Description, 1, 200); err != nil {
		return err
	}
	if len(t.Notes) > 500 {
		return NewValidationError("notes", "notes too long (max 500 characters)")
	}
	if t.AccountID == "" {
		return NewValidationError("accountId", "account is required")
	}
	if t.CategoryID == "" {
		return NewValidationError("categoryId", "category is required")
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.YearMonth.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(b.Amount); err != nil {
		return err
	}
	if !b.Scope.IsValid() {
		return NewValidationError("scope", "unknown scope %q", b.Scope)
	}
	if b.CategoryID == "" {
		return NewValidationError("categoryId", "category is required")
	}
	return nil
}

func (r RecurringTemplate) Validate() error {
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	if !r.Kind.IsValid() {
		return NewValidationError("kind", "unknown kind %q", r.Kind)
	}
	if err := validateLength("description", r.Description, 1, 200); err != nil {
		return err
	}
	if !r.Frequency.IsValid() {
		return NewValidationError("frequency", "unknown frequency %q", r.Frequency)
	}
	if r.Interval < 1 {
		return NewValidationError("interval", "interval must be a positive integer")
	}
	if r.DayOfMonth != nil && (*r.DayOfMonth < 1 || *r.DayOfMonth > 31) {
		return NewValidationError("dayOfMonth", "day of month must be between 1 and 31")
	}
	if r.DayOfWeek != nil && (*r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
		return NewValidationError("dayOfWeek", "day of week must be between 0 and 6")
	}
	if r.StartDate.IsZero() {
		return NewValidationError("startDate", "start date is required")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return NewValidationError("endDate", "end date must be after start date")
	}
	if r.AccountID == "" {
		return NewValidationError("accountId", "account is required")
	}
	if r.CategoryID == "" {
		return NewValidationError("categoryId", "category is required")
	}
	return nil
}

// Expired reports whether the template's end date lies strictly before now.
func (r RecurringTemplate) Expired(now time.Time) bool {
	return r.EndDate != nil && r.EndDate.Before(now)
}

func validateLength(field, value string, min, max int) error {
	n := len([]rune(strings.TrimSpace(value)))
	if n < min {
		return NewValidationError(field, "%s is required", field)
	}
	if n > max {
		return NewValidationError(field, "%s too long (max %d characters)", field, max)
	}
	return nil
}

// Slugify lower-cases the label and collapses runs of non-alphanumerics to "-".
func Slugify(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
