package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ExportHeader is the header row of the flat contact export
const ExportHeader = "Contact ID,Contact Create date,Contact Update date,Fields Title,Field Value,Events ID,Events Category,Events Create date,Events Hash"

// ExportRow is one line of the flat contact export. Empty fields stay empty cells.
type ExportRow struct {
	ContactID      string
	ContactCreated string
	ContactUpdated string
	FieldTitle     string
	FieldValue     string
	EventID        string
	EventCategory  string
	EventCreated   string
	EventHash      string
}

func (r ExportRow) cells() []string {
	return []string{
		r.ContactID, r.ContactCreated, r.ContactUpdated, r.FieldTitle, r.FieldValue,
		r.EventID, r.EventCategory, r.EventCreated, r.EventHash,
	}
}

// ExportCSV renders rows below ExportHeader. Cells are written unquoted.
func ExportCSV(rows ...ExportRow) string {
	var b strings.Builder
	b.WriteString(ExportHeader)
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(strings.Join(r.cells(), ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteExport writes content to dir/export.csv and returns the path
func WriteExport(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "export.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

// SampleExport is a small two-source export.
//
//	c1 google   three events, one eight days after acquisition (engaged, retained)
//	c2 facebook one event
//	c3 google   no events
//	one row without a Contact ID carrying an orphan event
func SampleExport() string {
	return ExportCSV(
		ExportRow{"c1", "2024-01-01 10:00:00", "2024-01-05 10:00:00", "utm_source", "google", "e1", "view", "2024-01-02 09:00:00", "h1"},
		ExportRow{"c1", "2024-01-01 10:00:00", "2024-01-05 10:00:00", "utm_source", "google", "e2", "click", "2024-01-03 09:00:00", "h2"},
		ExportRow{"c1", "2024-01-01 10:00:00", "2024-01-05 10:00:00", "utm_source", "google", "e3", "view", "2024-01-20 09:00:00", "h3"},
		ExportRow{"c2", "2024-01-02 08:00:00", "2024-01-02 08:00:00", "utm_source", "facebook", "e4", "view", "2024-01-02 09:00:00", "h4"},
		ExportRow{ContactID: "c3", ContactCreated: "2024-01-03 08:00:00", FieldTitle: "utm_source", FieldValue: "google"},
		ExportRow{ContactCreated: "2024-01-01", EventID: "e9", EventCategory: "click", EventCreated: "2024-01-03"},
	)
}
