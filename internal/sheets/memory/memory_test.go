package memory

import (
	"context"
	"testing"

	"fintrack/internal/sheets"
)

func TestExporterUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	e := New()

	ref, err := e.Upsert(ctx, sheets.TransactionRow{ID: "a", Amount: "-1.00"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected upsert: ref=%q err=%v", ref, err)
	}
	if _, err := e.Upsert(ctx, sheets.TransactionRow{ID: "b", Amount: "5.00"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	ref, err = e.Upsert(ctx, sheets.TransactionRow{ID: "a", Amount: "-2.00"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("update kept ref=%q err=%v, want mem:1", ref, err)
	}

	rows := e.Rows()
	if len(rows) != 2 || rows[0].ID != "a" || rows[0].Amount != "-2.00" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	if err := e.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := e.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete() of unknown id error = %v", err)
	}
	if rows := e.Rows(); len(rows) != 1 || rows[0].ID != "b" {
		t.Fatalf("unexpected rows after delete: %+v", rows)
	}

	if _, err := e.Upsert(ctx, sheets.TransactionRow{}); err == nil {
		t.Error("Upsert() should reject a row without id")
	}
}
