// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for decoding request bodies and query
// parameters into domain values. Malformed input is reported as a
// core.ValidationError so it maps to 400.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.NewValidationError("body", "request body is empty")
		case errors.As(err, &maxErr):
			return core.NewValidationError("body", "request body too large")
		default:
			return core.NewValidationError("body", "invalid JSON: %v", err)
		}
	}
	if dec.More() {
		return core.NewValidationError("body", "request body must hold a single JSON object")
	}
	return nil
}

// parseDate reads a YYYY-MM-DD calendar date in loc.
func parseDate(field, s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, core.NewValidationError(field, "invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func parseOptionalDate(field string, s *string, loc *time.Location) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseDate(field, *s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// queryScope returns the scope filter; empty means all.
func queryScope(r *http.Request) (core.Scope, error) {
	scope := core.Scope(strings.TrimSpace(r.URL.Query().Get("scope")))
	if scope != "" && !scope.IsValid() {
		return "", core.NewValidationError("scope", "unknown scope %q", scope)
	}
	return scope, nil
}

func queryKind(r *http.Request) (core.Kind, error) {
	kind := core.Kind(strings.TrimSpace(r.URL.Query().Get("kind")))
	if kind != "" && !kind.IsValid() {
		return "", core.NewValidationError("kind", "unknown kind %q", kind)
	}
	return kind, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, core.NewValidationError(name, "invalid boolean %q", v)
	}
	return &b, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.NewValidationError(name, "invalid integer %q", v)
	}
	return n, nil
}

// queryYearMonth reads "YYYY-MM", defaulting to the month containing now.
func queryYearMonth(r *http.Request, name string, now time.Time) (core.YearMonth, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.YearMonthOf(now), nil
	}
	ym := core.YearMonth(v)
	if err := ym.Validate(); err != nil {
		return "", err
	}
	return ym, nil
}

func queryDate(r *http.Request, name string, loc *time.Location) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	return parseOptionalDate(name, &v, loc)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}

func sanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = sanitizeInput(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
