package store

import "time"

// DateLayout is the canonical on-disk date format
const DateLayout = "2006-01-02"

// dateLayouts are the input formats accepted when coercing date columns
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
}

// NormalizeDate coerces a cell value to YYYY-MM-DD. An unparseable value
// becomes the empty string ("no date"), never an error.
func NormalizeDate(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout)
		}
	}
	return ""
}

// ParseDate parses a canonical date cell, reporting ok=false for "no date"
func ParseDate(value string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
