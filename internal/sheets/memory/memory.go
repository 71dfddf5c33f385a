// Package memory is an in-process TransactionExporter for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fintrack/internal/sheets"
)

type Exporter struct {
	mu    sync.Mutex
	rows  map[string]sheets.TransactionRow
	order []string
	refs  map[string]int
}

func New() *Exporter {
	return &Exporter{
		rows: map[string]sheets.TransactionRow{},
		refs: map[string]int{},
	}
}

var _ sheets.TransactionExporter = (*Exporter)(nil)

// Upsert stores the row and returns a synthetic row reference that stays
// stable across updates of the same transaction.
func (e *Exporter) Upsert(_ context.Context, row sheets.TransactionRow) (string, error) {
	if row.ID == "" {
		return "", errors.New("transaction row without id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.refs[row.ID]; !ok {
		e.order = append(e.order, row.ID)
		e.refs[row.ID] = len(e.order)
	}
	e.rows[row.ID] = row
	return fmt.Sprintf("mem:%d", e.refs[row.ID]), nil
}

func (e *Exporter) Delete(_ context.Context, transactionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rows, transactionID)
	return nil
}

// Rows returns the live rows in first-written order.
func (e *Exporter) Rows() []sheets.TransactionRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]sheets.TransactionRow, 0, len(e.rows))
	for _, id := range e.order {
		if r, ok := e.rows[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
