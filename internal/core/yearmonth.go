package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var yearMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// YearMonth is a calendar month key in "YYYY-MM" form.
type YearMonth string

// YearMonthOf returns the month key containing t in t's location.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

func (ym YearMonth) Validate() error {
	if !yearMonthPattern.MatchString(string(ym)) {
		return NewValidationError("yearMonth", "expected YYYY-MM, got %q", string(ym))
	}
	if m := ym.month(); m < 1 || m > 12 {
		return NewValidationError("yearMonth", "month out of range in %q", string(ym))
	}
	return nil
}

// Range returns the half-open interval [start, end) covering the month in loc.
func (ym YearMonth) Range(loc *time.Location) (time.Time, time.Time, error) {
	if err := ym.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(ym.year(), time.Month(ym.month()), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}

// AddMonths shifts the key by n calendar months. The receiver must be valid.
func (ym YearMonth) AddMonths(n int) YearMonth {
	t := time.Date(ym.year(), time.Month(ym.month())+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return YearMonthOf(t)
}

func (ym YearMonth) year() int {
	y, _ := strconv.Atoi(string(ym)[:4])
	return y
}

func (ym YearMonth) month() int {
	m, _ := strconv.Atoi(string(ym)[5:7])
	return m
}
