package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tracker/schema"
	"tracker/store"
)

// Event categories
const (
	CategoryWorkshop   = "Workshop"
	CategoryDemo       = "Demo"
	CategoryMeeting    = "Meeting"
	CategoryConference = "Conference"
)

// Categories lists the valid event categories
var Categories = []string{CategoryWorkshop, CategoryDemo, CategoryMeeting, CategoryConference}

// categoryPrefixes maps each category to its event-ID prefix
var categoryPrefixes = map[string]string{
	CategoryWorkshop:   "W",
	CategoryDemo:       "D",
	CategoryMeeting:    "M",
	CategoryConference: "C",
}

// ValidCategory reports whether category is one of the known categories
func ValidCategory(category string) bool {
	_, ok := categoryPrefixes[category]
	return ok
}

// GenerateEventID produces the next event key for a category and date:
// <prefix><YYYYMMDD>-<2-digit-seq>, where the sequence continues from the
// highest existing ID sharing the same prefix and date. Unknown categories
// fall back to the "E" prefix.
func GenerateEventID(events *store.Table, category string, date time.Time) string {
	prefix, ok := categoryPrefixes[category]
	if !ok {
		prefix = "E"
	}
	stem := prefix + date.Format("20060102") + "-"

	nextSeq := 1
	for _, row := range events.Rows {
		id := row[schema.ColEventID]
		if !strings.HasPrefix(id, stem) {
			continue
		}
		seq, err := strconv.Atoi(id[strings.LastIndex(id, "-")+1:])
		if err != nil {
			continue
		}
		if seq >= nextSeq {
			nextSeq = seq + 1
		}
	}

	return fmt.Sprintf("%s%02d", stem, nextSeq)
}

// CohortNameTaken reports whether a cohort with the given name already
// exists. Cohort names must be unique at creation.
func CohortNameTaken(cohorts *store.Table, name string) bool {
	return cohorts.FindRow(schema.ColName, name) >= 0
}
