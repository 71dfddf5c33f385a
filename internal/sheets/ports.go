package sheets

import (
	"context"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Header is the first row of the export sheet.
var Header = []any{"ID", "Date", "Description", "Kind", "Amount", "Account", "Category", "Scope", "Tags", "Template"}

// TransactionRow is the spreadsheet rendering of one transaction. Amount is
// signed so the sheet can sum a column into a net figure.
type TransactionRow struct {
	ID          string
	Date        string
	Description string
	Kind        string
	Amount      string
	Account     string
	Category    string
	Scope       string
	Tags        string
	TemplateID  string
}

// Ports for outbound adapters.
type (
	// TransactionExporter mirrors the ledger into an external sheet, keyed by
	// transaction id. Both operations are idempotent.
	TransactionExporter interface {
		Upsert(ctx context.Context, row TransactionRow) (rowRef string, err error)
		Delete(ctx context.Context, transactionID string) error
	}
)

// NewTransactionRow renders v with its date in loc.
func NewTransactionRow(v core.TransactionView, loc *time.Location) TransactionRow {
	row := TransactionRow{
		ID:          v.ID,
		Date:        v.Date.In(loc).Format(time.DateOnly),
		Description: v.Description,
		Kind:        string(v.Kind),
		Amount:      v.Signed().StringFixed(2),
		Scope:       string(core.ScopePersonal),
		Tags:        strings.Join(v.Tags, ", "),
		TemplateID:  v.RecurringTemplateID,
	}
	if v.IsBusiness {
		row.Scope = string(core.ScopeBusiness)
	}
	if v.Account != nil {
		row.Account = v.Account.Name
	}
	if v.Category != nil {
		row.Category = v.Category.Label
	}
	return row
}

// Values returns the row in Header order.
func (r TransactionRow) Values() []any {
	return []any{r.ID, r.Date, r.Description, r.Kind, r.Amount, r.Account, r.Category, r.Scope, r.Tags, r.TemplateID}
}
