package dataprocessing

import (
	"strings"
	"time"
)

// Accepted timestamp range: [MinTimestamp, MaxTimestamp)
var (
	MinTimestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxTimestamp = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// timestampLayouts are tried in order. Fractional seconds after the seconds field
// are accepted by every layout that has one.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
}

// ParseTimestamp parses free text into a timestamp.
// Text without a zone is read as UTC; an explicit offset is kept so calendar
// dates follow the writer's clock. Unparsable text reports false.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InRange reports whether t falls inside [MinTimestamp, MaxTimestamp).
func InRange(t time.Time) bool {
	return !t.Before(MinTimestamp) && t.Before(MaxTimestamp)
}
