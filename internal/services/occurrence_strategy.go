// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for advancing recurring templates.
// Each frequency (daily, weekly, monthly, yearly) has its own advancer that
// computes the next occurrence from the current one.

package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

const day = 24 * time.Hour

// OccurrenceAdvancer is the strategy interface for computing the next occurrence.
type OccurrenceAdvancer interface {
	// Next returns the instant one period of `interval` units after from.
	Next(from time.Time, interval int, dayOfMonth *int) time.Time
}

// DailyAdvancer adds interval × 24h.
type DailyAdvancer struct{}

func (DailyAdvancer) Next(from time.Time, interval int, _ *int) time.Time {
	return from.Add(time.Duration(interval) * day)
}

// WeeklyAdvancer adds interval × 7 × 24h.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(from time.Time, interval int, _ *int) time.Time {
	return from.Add(time.Duration(interval) * 7 * day)
}

// MonthlyAdvancer adds interval calendar months, then pins dayOfMonth when set.
// Both steps use time.Date normalization: day 31 in a 30-day month rolls
// into the following month.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(from time.Time, interval int, dayOfMonth *int) time.Time {
	y, m, d := from.Date()
	hh, mm, ss := from.Clock()
	next := time.Date(y, m+time.Month(interval), d, hh, mm, ss, from.Nanosecond(), from.Location())
	if dayOfMonth != nil {
		next = time.Date(next.Year(), next.Month(), *dayOfMonth, hh, mm, ss, from.Nanosecond(), from.Location())
	}
	return next
}

// YearlyAdvancer adds interval years keeping month and day (Feb 29 normalizes to Mar 1).
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(from time.Time, interval int, _ *int) time.Time {
	return from.AddDate(interval, 0, 0)
}

// occurrenceStrategies maps frequencies to their advancers.
var occurrenceStrategies = map[core.Frequency]OccurrenceAdvancer{
	core.Daily:   DailyAdvancer{},
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// GetOccurrenceAdvancer returns the advancer registered for a frequency.
func GetOccurrenceAdvancer(frequency core.Frequency) (OccurrenceAdvancer, error) {
	advancer, ok := occurrenceStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return advancer, nil
}

// NextOccurrence advances from by exactly one period of the template schedule.
// Calendar arithmetic happens in loc.
func NextOccurrence(from time.Time, frequency core.Frequency, interval int, dayOfMonth *int, loc *time.Location) (time.Time, error) {
	if interval < 1 {
		return time.Time{}, core.NewValidationError("interval", "interval must be a positive integer")
	}
	advancer, err := GetOccurrenceAdvancer(frequency)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return advancer.Next(from.In(loc), interval, dayOfMonth), nil
}
