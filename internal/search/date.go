package search

import (
	"regexp"
	"strings"
	"time"
)

var bareDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate accepts a bare YYYY-MM-DD date (interpreted at UTC midnight)
// or a full RFC 3339 timestamp (converted to UTC). Anything else returns
// the zero time, which callers treat as "no boundary".
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if bareDate.MatchString(s) {
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// InDateRange decides whether a record with timestamp t falls inside the
// inclusive [start, end] window. Zero boundaries are open ends. A zero
// record timestamp is always included: records are never silently dropped
// just because their timestamp is missing or unparseable.
func InDateRange(t, start, end time.Time) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	if t.IsZero() {
		return true
	}
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

// isoFromUnix renders optional unix seconds as an RFC 3339 UTC string,
// or "" when absent.
func isoFromUnix(ts *float64) string {
	if ts == nil {
		return ""
	}
	sec := int64(*ts)
	nsec := int64((*ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC().Format(time.RFC3339)
}
