package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Update structs carry optional fields; nil means "leave unchanged".
type (
	AccountUpdate struct {
		Name       *string
		Type       *AccountType
		IsBusiness *bool
	}

	CategoryUpdate struct {
		Label *string
		Scope *Scope
	}

	TransactionUpdate struct {
		AccountID   *string
		CategoryID  *string
		Date        *time.Time
		Amount      *decimal.Decimal
		Kind        *Kind
		IsBusiness  *bool
		Description *string
		Notes       *string
		Tags        *[]string
	}

	TemplateUpdate struct {
		Amount      *decimal.Decimal
		Description *string
		Frequency   *Frequency
		Interval    *int
		DayOfMonth  *int
		EndDate     *time.Time

		// Clear flags reset the optional field to unset.
		ClearDayOfMonth bool
		ClearEndDate    bool
	}
)

func (u AccountUpdate) Validate() error {
	if u.Name != nil {
		if err := validateLength("name", *u.Name, 1, 100); err != nil {
			return err
		}
	}
	if u.Type != nil && !u.Type.IsValid() {
		return NewValidationError("type", "unknown account type %q", *u.Type)
	}
	return nil
}

func (u AccountUpdate) Apply(a Account) Account {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Type != nil {
		a.Type = *u.Type
	}
	if u.IsBusiness != nil {
		a.IsBusiness = *u.IsBusiness
	}
	return a
}

func (u CategoryUpdate) Validate() error {
	if u.Label != nil {
		if err := validateLength("label", *u.Label, 1, 100); err != nil {
			return err
		}
	}
	if u.Scope != nil && !u.Scope.IsValid() {
		return NewValidationError("scope", "unknown scope %q", *u.Scope)
	}
	return nil
}

func (u CategoryUpdate) Apply(c Category) Category {
	if u.Label != nil {
		c.Label = *u.Label
	}
	if u.Scope != nil {
		c.Scope = *u.Scope
	}
	return c
}

func (u TransactionUpdate) Validate() error {
	if u.AccountID != nil && *u.AccountID == "" {
		return NewValidationError("accountId", "account is required")
	}
	if u.CategoryID != nil && *u.CategoryID == "" {
		return NewValidationError("categoryId", "category is required")
	}
	if u.Date != nil && u.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if u.Amount != nil {
		if err := ValidateAmount(*u.Amount); err != nil {
			return err
		}
	}
	if u.Kind != nil && !u.Kind.IsValid() {
		return NewValidationError("kind", "unknown kind %q", *u.Kind)
	}
	if u.Description != nil {
		if err := validateLength("description", *u.Description, 1, 200); err != nil {
			return err
		}
	}
	if u.Notes != nil && len(*u.Notes) > 500 {
		return NewValidationError("notes", "notes too long (max 500 characters)")
	}
	return nil
}

func (u TransactionUpdate) Apply(t Transaction) Transaction {
	if u.AccountID != nil {
		t.AccountID = *u.AccountID
	}
	if u.CategoryID != nil {
		t.CategoryID = *u.CategoryID
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Kind != nil {
		t.Kind = *u.Kind
	}
	if u.IsBusiness != nil {
		t.IsBusiness = *u.IsBusiness
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.Tags != nil {
		t.Tags = append([]string(nil), (*u.Tags)...)
	}
	return t
}

func (u TemplateUpdate) Validate() error {
	if u.Amount != nil {
		if err := ValidateAmount(*u.Amount); err != nil {
			return err
		}
	}
	if u.Description != nil {
		if err := validateLength("description", *u.Description, 1, 200); err != nil {
			return err
		}
	}
	if u.Frequency != nil && !u.Frequency.IsValid() {
		return NewValidationError("frequency", "unknown frequency %q", *u.Frequency)
	}
	if u.Interval != nil && *u.Interval < 1 {
		return NewValidationError("interval", "interval must be a positive integer")
	}
	if u.DayOfMonth != nil && (*u.DayOfMonth < 1 || *u.DayOfMonth > 31) {
		return NewValidationError("dayOfMonth", "day of month must be between 1 and 31")
	}
	if u.ClearDayOfMonth && u.DayOfMonth != nil {
		return NewValidationError("dayOfMonth", "cannot set and clear day of month together")
	}
	if u.ClearEndDate && u.EndDate != nil {
		return NewValidationError("endDate", "cannot set and clear end date together")
	}
	return nil
}

func (u TemplateUpdate) Apply(r RecurringTemplate) RecurringTemplate {
	if u.Amount != nil {
		r.Amount = *u.Amount
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Frequency != nil {
		r.Frequency = *u.Frequency
	}
	if u.Interval != nil {
		r.Interval = *u.Interval
	}
	if u.DayOfMonth != nil {
		v := *u.DayOfMonth
		r.DayOfMonth = &v
	}
	if u.ClearDayOfMonth {
		r.DayOfMonth = nil
	}
	if u.EndDate != nil {
		v := *u.EndDate
		r.EndDate = &v
	}
	if u.ClearEndDate {
		r.EndDate = nil
	}
	return r
}
