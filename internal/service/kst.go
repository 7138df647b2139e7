package service

import (
	"fmt"
	"strings"
	"time"

	"kbo_pickem/server/internal/config"
)

// KST is Korea Standard Time. Korea observes no daylight saving, so a fixed zone is exact.
var KST = time.FixedZone("KST", 9*60*60)

// DateInKST returns the KST calendar date of t as a UTC midnight, the form stored in DATE columns
func DateInKST(t time.Time) time.Time {
	y, m, d := t.In(KST).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current KST date
func Today(now time.Time) time.Time {
	return DateInKST(now)
}

// Yesterday returns the KST date before now
func Yesterday(now time.Time) time.Time {
	return DateInKST(now).AddDate(0, 0, -1)
}

// ParseDate parses a YYYY-MM-DD wire date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(config.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return d, nil
}

// ParseDateOr parses s, falling back to def when s is empty
func ParseDateOr(s string, def time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseDate(s)
}

// FormatDate renders a stored date in wire form
func FormatDate(t time.Time) string {
	return t.Format(config.DateLayout)
}
