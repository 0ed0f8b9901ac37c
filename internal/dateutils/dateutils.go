// Package dateutils provides date parsing and formatting used by the
// statement extraction pipeline.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutIndian    = "02/01/2006"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutWithMonth = "02-Jan-2006"
	DateLayoutCompact   = "20060102"
)

// StatementFormats is the ordered list of layouts tried by ParseDate.
// Day-first layouts come before year-first ones and four-digit years before
// two-digit years. Single-digit day and month components are accepted, and
// month names match regardless of case.
var StatementFormats = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2-Jan-2006",
	"2 Jan 2006",
	"2/Jan/2006",
	"2-January-2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2-Jan-06",
	"2 Jan 06",
	"2/Jan/06",
	DateLayoutCompact,
}

// genericFormats are tried after StatementFormats, against the whole value.
var genericFormats = []string{
	time.RFC3339,
	DateLayoutFull,
	"2006-01-02T15:04:05",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	time.RFC1123,
	time.ANSIC,
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDate attempts to parse a date string using the statement layouts,
// then generic timestamp layouts, then the first whitespace-separated token.
// Returns the date at UTC midnight and the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("unable to parse empty date")
	}

	if t, layout, ok := tryLayouts(dateStr, StatementFormats); ok {
		return t, layout, nil
	}
	if t, layout, ok := tryLayouts(dateStr, genericFormats); ok {
		return t, layout, nil
	}

	if fields := strings.Fields(dateStr); len(fields) > 1 {
		if t, layout, ok := tryLayouts(fields[0], StatementFormats); ok {
			return t, layout, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

func tryLayouts(value string, layouts []string) (time.Time, string, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return DateOnly(t), layout, true
		}
	}
	return time.Time{}, "", false
}

// DateOnly truncates t to its calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate formats a time.Time value according to the specified layout
// If no layout is provided, DateLayoutISO is used
func FormatDate(date time.Time, layout string) string {
	if layout == "" {
		layout = DateLayoutISO
	}
	return date.Format(layout)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD).
// The zero time formats as an empty string.
func ToISODate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutISO)
}

// CleanDateString trims the value and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	return whitespace.ReplaceAllString(dateStr, " ")
}

// CompareDates compares two dates and returns:
//
//	-1 if date1 is before date2
//	 0 if date1 is equal to date2
//	 1 if date1 is after date2
func CompareDates(date1, date2 time.Time) int {
	date1 = DateOnly(date1)
	date2 = DateOnly(date2)

	if date1.Before(date2) {
		return -1
	} else if date1.After(date2) {
		return 1
	} else {
		return 0
	}
}

// InRange reports whether date falls within [from, to]. A zero bound is open.
func InRange(date, from, to time.Time) bool {
	if !from.IsZero() && CompareDates(date, from) < 0 {
		return false
	}
	if !to.IsZero() && CompareDates(date, to) > 0 {
		return false
	}
	return true
}
