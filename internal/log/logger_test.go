package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})
	logger.Info("Transaction created", FieldTransaction, "t1")

	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "transaction_id=t1") {
		t.Fatalf("unexpected log line: %q", out)
	}

	buf.Reset()
	logger.WithComponent(ComponentRecurring).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record written at info level: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	logger := Discard().WithComponent(ComponentHTTP)
	ctx := WithContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatalf("FromContext() returned a different logger")
	}
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("fallback component = %q, want unknown", got.Component())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithOperation(OpSweep).WithError(errors.New("boom")).WithError(nil)
	if f[FieldOperation] != OpSweep || f[FieldError] != "boom" {
		t.Fatalf("fields = %v", f)
	}
	if got := len(f.ToSlice()); got != 4 {
		t.Fatalf("ToSlice() len = %d, want 4", got)
	}
}
