package core

import (
	"errors"
	"testing"
	"time"
)

func TestYearMonthValidate(t *testing.T) {
	cases := []struct {
		in YearMonth
		ok bool
	}{
		{"2025-06", true},
		{"2025-12", true},
		{"2025-13", false},
		{"2025-00", false},
		{"2025-6", false},
		{"25-06", false},
		{"2025/06", false},
	}
	for _, tc := range cases {
		err := tc.in.Validate()
		if tc.ok && err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
		}
		if !tc.ok && !errors.Is(err, ErrValidation) {
			t.Errorf("%q: expected validation error, got %v", tc.in, err)
		}
	}
}

func TestYearMonthRange(t *testing.T) {
	start, end, err := YearMonth("2024-12").Range(time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}

func TestYearMonthAddMonths(t *testing.T) {
	if got := YearMonth("2025-01").AddMonths(-1); got != "2024-12" {
		t.Errorf("AddMonths(-1) = %q, want 2024-12", got)
	}
	if got := YearMonth("2025-11").AddMonths(3); got != "2026-02" {
		t.Errorf("AddMonths(3) = %q, want 2026-02", got)
	}
}
