package exporter

import (
	"strconv"
	"strings"

	"attributioncli/pkg/contracts/domain"
)

// TimestampLayout is how timestamps appear in exported tables
const TimestampLayout = "2006-01-02 15:04:05.999999"

// formatFloat formats a float64 with the shortest exact representation, always
// keeping a decimal point so integral values read as 1.0 rather than 1
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatTime formats a nullable timestamp; missing is an empty cell
func formatTime(t domain.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(TimestampLayout)
}

// formatText formats a nullable text value; missing is an empty cell
func formatText(s domain.NullString) string {
	return s.Or("")
}
