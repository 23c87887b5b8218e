package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "attributioncli/internal/errors"
	"attributioncli/pkg/contracts/domain"
)

// missingSentinels are cell values that mean "no value" after trimming.
var missingSentinels = map[string]struct{}{
	"":     {},
	"nan":  {},
	"None": {},
}

// PreprocessStats counts what cleaning did to the table
type PreprocessStats struct {
	Rows               int `json:"rows"`
	MissingContactIDs  int `json:"missing_contact_ids"`
	UnparsedTimestamps int `json:"unparsed_timestamps"`
	OutOfRangeDates    int `json:"out_of_range_dates"`
}

// columnIndices holds the header position of each source column, -1 when absent
type columnIndices struct {
	contactID      int
	contactCreated int
	contactUpdated int
	fieldTitle     int
	fieldValue     int
	eventID        int
	eventCategory  int
	eventCreated   int
	eventHash      int
}

func findColumnIndices(t *Table) columnIndices {
	return columnIndices{
		contactID:      t.ColumnIndex(domain.ColumnContactID),
		contactCreated: t.ColumnIndex(domain.ColumnContactCreated),
		contactUpdated: t.ColumnIndex(domain.ColumnContactUpdated),
		fieldTitle:     t.ColumnIndex(domain.ColumnFieldTitle),
		fieldValue:     t.ColumnIndex(domain.ColumnFieldValue),
		eventID:        t.ColumnIndex(domain.ColumnEventID),
		eventCategory:  t.ColumnIndex(domain.ColumnEventCategory),
		eventCreated:   t.ColumnIndex(domain.ColumnEventCreated),
		eventHash:      t.ColumnIndex(domain.ColumnEventHash),
	}
}

// Preprocessor turns a raw export table into typed, cleaned rows
type Preprocessor struct {
	logger *slog.Logger
}

// NewPreprocessor creates a preprocessor. A nil logger uses slog.Default().
func NewPreprocessor(logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{logger: logger}
}

// LoadFile reads and preprocesses the export at path
func (p *Preprocessor) LoadFile(ctx context.Context, path string) ([]domain.RawRow, PreprocessStats, error) {
	table, err := ReadTableFile(path)
	if err != nil {
		return nil, PreprocessStats{}, err
	}
	return p.Process(ctx, table)
}

// Process cleans every cell of table. Malformed cells become missing; only a
// missing Contact ID column fails the call.
func (p *Preprocessor) Process(ctx context.Context, table *Table) ([]domain.RawRow, PreprocessStats, error) {
	cols := findColumnIndices(table)
	if cols.contactID < 0 {
		return nil, PreprocessStats{}, apperrors.NewParsingError(
			fmt.Sprintf("required column %q not found", domain.ColumnContactID), nil).
			WithContext("header", table.Header)
	}

	stats := PreprocessStats{Rows: len(table.Rows)}
	rows := make([]domain.RawRow, 0, len(table.Rows))

	for i, record := range table.Rows {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, apperrors.NewCancelledError("preprocess", err)
			}
		}

		row := domain.RawRow{
			ContactID:      cleanCell(record, cols.contactID),
			ContactCreated: p.timestampCell(record, cols.contactCreated, &stats),
			ContactUpdated: p.timestampCell(record, cols.contactUpdated, &stats),
			FieldTitle:     cleanCell(record, cols.fieldTitle),
			FieldValue:     cleanCell(record, cols.fieldValue),
			EventID:        cleanCell(record, cols.eventID),
			EventCategory:  cleanCell(record, cols.eventCategory),
			EventCreated:   p.timestampCell(record, cols.eventCreated, &stats),
			EventHash:      cleanCell(record, cols.eventHash),
		}
		if !row.ContactID.Valid {
			stats.MissingContactIDs++
		}
		rows = append(rows, row)
	}

	p.logger.InfoContext(ctx, "preprocessed contact export",
		slog.Int("rows", stats.Rows),
		slog.Int("missing_contact_ids", stats.MissingContactIDs),
		slog.Int("unparsed_timestamps", stats.UnparsedTimestamps),
		slog.Int("out_of_range_dates", stats.OutOfRangeDates))

	return rows, stats, nil
}

// timestampCell parses a timestamp cell, counting coerced and out-of-range values
func (p *Preprocessor) timestampCell(record []string, index int, stats *PreprocessStats) domain.NullTime {
	text := cleanCell(record, index)
	if !text.Valid {
		return domain.NullTime{}
	}

	t, ok := ParseTimestamp(text.String)
	if !ok {
		stats.UnparsedTimestamps++
		return domain.NullTime{}
	}
	if !InRange(t) {
		stats.OutOfRangeDates++
		return domain.NullTime{}
	}
	return domain.NewNullTime(t)
}

// cleanCell trims a cell and maps missing sentinels to an absent value.
// An absent column (index -1) is always missing.
func cleanCell(record []string, index int) domain.NullString {
	if index < 0 || index >= len(record) {
		return domain.NullString{}
	}
	return CleanText(record[index])
}

// CleanText trims value and maps "", "nan" and "None" to missing
func CleanText(value string) domain.NullString {
	value = strings.TrimSpace(value)
	if _, missing := missingSentinels[value]; missing {
		return domain.NullString{}
	}
	return domain.NewNullString(value)
}
