//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

// Integration tests require a real spreadsheet shared with a service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_UpsertAndDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	creds := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	file := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if creds == "" && file == "" {
		t.Skip("service account not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := New(ctx, Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: creds,
		CredentialsFile: file,
	}, log.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	row := ports.TransactionRow{
		ID:          "integration-" + time.Now().Format("20060102150405"),
		Date:        time.Now().Format(time.DateOnly),
		Description: "Integration test",
		Kind:        "expense",
		Amount:      "-1.00",
		Scope:       "personal",
	}
	first, err := client.Upsert(ctx, row)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	row.Amount = "-2.00"
	second, err := client.Upsert(ctx, row)
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if first != second {
		t.Errorf("Upsert() moved the row from %s to %s", first, second)
	}

	if err := client.Delete(ctx, row.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}
