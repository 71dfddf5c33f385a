package services

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intp(v int) *int { return &v }

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name       string
		from       time.Time
		frequency  core.Frequency
		interval   int
		dayOfMonth *int
		want       time.Time
	}{
		{"daily", date(2025, 1, 31), core.Daily, 1, nil, date(2025, 2, 1)},
		{"every 3 days", date(2025, 2, 27), core.Daily, 3, nil, date(2025, 3, 2)},
		{"weekly", date(2025, 1, 1), core.Weekly, 1, nil, date(2025, 1, 8)},
		{"every 2 weeks", date(2025, 12, 25), core.Weekly, 2, nil, date(2026, 1, 8)},
		{"monthly on the 15th", date(2025, 1, 15), core.Monthly, 1, intp(15), date(2025, 2, 15)},
		{"monthly without day keeps day", date(2025, 3, 10), core.Monthly, 1, nil, date(2025, 4, 10)},
		{"quarterly", date(2025, 11, 5), core.Monthly, 3, intp(5), date(2026, 2, 5)},
		{"monthly from the 31st overflows", date(2025, 1, 31), core.Monthly, 1, nil, date(2025, 3, 3)},
		{"yearly", date(2024, 6, 1), core.Yearly, 1, nil, date(2025, 6, 1)},
		{"yearly from leap day", date(2024, 2, 29), core.Yearly, 1, nil, date(2025, 3, 1)},
		{"every 2 years", date(2024, 7, 4), core.Yearly, 2, nil, date(2026, 7, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.from, tt.frequency, tt.interval, tt.dayOfMonth, time.UTC)
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Day 31 in a 30-day month is not clamped; it rolls into the next month.
func TestNextOccurrence_DayOfMonth31RollsOver(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		// May 15 + 1 month = June 15; June has 30 days so day 31 lands on July 1.
		{"target month has 30 days", date(2025, 5, 15), date(2025, 7, 1)},
		// April 30 + 1 month = May 30; May has 31 days.
		{"from a 30-day month", date(2025, 4, 30), date(2025, 5, 31)},
		// March 31 + 1 month overflows to May 1 before day 31 is applied.
		{"from the 31st across a 30-day month", date(2025, 3, 31), date(2025, 5, 31)},
		// Jan 31 + 1 month overflows to March 3 (non leap year).
		{"across february", date(2025, 1, 31), date(2025, 3, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.from, core.Monthly, 1, intp(31), time.UTC)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrence_KeepsClockAndLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	from := time.Date(2025, 1, 15, 9, 30, 0, 0, loc)
	got, err := NextOccurrence(from.UTC(), core.Monthly, 1, intp(15), loc)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 2, 15, 9, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence() = %v, want %v", got, want)
	}
}

func TestNextOccurrence_Errors(t *testing.T) {
	if _, err := NextOccurrence(date(2025, 1, 1), "hourly", 1, nil, time.UTC); err == nil {
		t.Errorf("expected error for unknown frequency")
	}
	if _, err := NextOccurrence(date(2025, 1, 1), core.Daily, 0, nil, time.UTC); err == nil {
		t.Errorf("expected error for zero interval")
	}
}

func TestGetOccurrenceAdvancer(t *testing.T) {
	for _, f := range []core.Frequency{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if _, err := GetOccurrenceAdvancer(f); err != nil {
			t.Errorf("GetOccurrenceAdvancer(%s) error = %v", f, err)
		}
	}
}
