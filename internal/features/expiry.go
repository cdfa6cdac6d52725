package features

import (
	"regexp"
	"strconv"
	"time"
)

// MissingExpiryMonths is the months-to-expiry sentinel for absent or malformed values
const MissingExpiryMonths = -1

var expiryPattern = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)

// ExpiryAnalyzer computes months-to-expiry relative to a clock
type ExpiryAnalyzer struct {
	now func() time.Time
}

// NewExpiryAnalyzer creates an analyzer. A nil clock means time.Now.
func NewExpiryAnalyzer(now func() time.Time) ExpiryAnalyzer {
	if now == nil {
		now = time.Now
	}
	return ExpiryAnalyzer{now: now}
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Analyze parses an "MM/YYYY" expiry. The expiry date is the first day of
// that month. isFuture reports whether it lies strictly after now; months is
// the signed whole-month difference. Absent or malformed input yields
// (false, -1).
func (a ExpiryAnalyzer) Analyze(raw *string) (isFuture bool, months int) {
	if raw == nil {
		return false, MissingExpiryMonths
	}
	month, year, ok := parseMonthYear(*raw)
	if !ok {
		return false, MissingExpiryMonths
	}

	now := a.clock()()
	expiry := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	months = (year-now.Year())*12 + (month - int(now.Month()))
	return expiry.After(now), months
}

func (a ExpiryAnalyzer) clock() func() time.Time {
	if a.now == nil {
		return time.Now
	}
	return a.now
}

func parseMonthYear(s string) (month, year int, ok bool) {
	m := expiryPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(m[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	year, err = strconv.Atoi(m[2])
	if err != nil || year < 1 {
		return 0, 0, false
	}
	return month, year, true
}
