package exporter

import (
	"attributioncli/pkg/contracts/domain"
)

// Table is a named, header-first tabular rendering of one model table
type Table struct {
	Name    string
	Headers []string
	Records [][]string
	// Numeric lists the column indices that hold numbers
	Numeric []int
}

// Table names shared by the CSV, workbook and store outputs
const (
	TableMetrics     = "metrics"
	TableUsers       = "users"
	TableCategoryMix = "cat_mix"
	TableContacts    = "contacts"
	TableUTM         = "utm"
	TableEvents      = "events"
)

// MetricsTable renders per-source metrics as in per_utm_metrics.csv
func MetricsTable(metrics []domain.SourceMetrics) Table {
	records := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		records = append(records, []string{
			m.Source,
			formatInt(m.AcquisitionVolume),
			formatInt(m.EngagedUsers),
			formatInt(m.RetainedUsers),
			formatFloat(m.AvgEventsPerUser),
			formatFloat(m.EngagementRate),
			formatFloat(m.RetentionRate),
		})
	}

	return Table{
		Name: TableMetrics,
		Headers: []string{
			"utm_source", "acquisition_volume", "engaged_users", "retention_users",
			"avg_events_per_user", "engagement_rate", "retention_rate",
		},
		Records: records,
		Numeric: []int{1, 2, 3, 4, 5, 6},
	}
}

// UsersTable renders the per-contact rollup as in users_table.csv
func UsersTable(users []domain.UserRollup) Table {
	records := make([][]string, 0, len(users))
	for _, u := range users {
		records = append(records, []string{
			u.ContactID,
			formatTime(u.CreatedAt),
			formatTime(u.UpdatedAt),
			u.Source,
			formatInt(u.TotalEvents),
			formatInt(u.EventsAfterAcq),
			formatTime(u.FirstEventAt),
			formatInt(u.DistinctEventDays),
			formatBool(u.Engaged),
			formatBool(u.Retained),
		})
	}

	return Table{
		Name: TableUsers,
		Headers: []string{
			domain.ColumnContactID, "contact_created_at", "contact_updated_at", "utm_source",
			"total_events", "events_after_acq", "first_event_at", "distinct_event_days",
			"engaged", "retained",
		},
		Records: records,
		Numeric: []int{4, 5, 7},
	}
}

// CategoryMixTable renders the category mix as in event_category_mix.csv
func CategoryMixTable(mix []domain.CategoryMix) Table {
	records := make([][]string, 0, len(mix))
	for _, m := range mix {
		records = append(records, []string{
			m.Source,
			m.Category,
			formatInt(m.Events),
			formatInt(m.TotalEvents),
			formatFloat(m.Share),
		})
	}

	return Table{
		Name:    TableCategoryMix,
		Headers: []string{"utm_source", "event_category", "events", "total_events", "share"},
		Records: records,
		Numeric: []int{2, 3, 4},
	}
}

// ContactsTable renders the deduplicated contacts
func ContactsTable(contacts []domain.Contact) Table {
	records := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		records = append(records, []string{c.ID, formatTime(c.CreatedAt), formatTime(c.UpdatedAt)})
	}

	return Table{
		Name:    TableContacts,
		Headers: []string{domain.ColumnContactID, "contact_created_at", "contact_updated_at"},
		Records: records,
	}
}

// AttributionTable renders each contact's normalized source
func AttributionTable(sources []domain.AttributionSource) Table {
	records := make([][]string, 0, len(sources))
	for _, s := range sources {
		records = append(records, []string{s.ContactID, s.Source})
	}

	return Table{
		Name:    TableUTM,
		Headers: []string{domain.ColumnContactID, "utm_source"},
		Records: records,
	}
}

// EventsTable renders the raw event projection
func EventsTable(events []domain.Event) Table {
	records := make([][]string, 0, len(events))
	for _, e := range events {
		records = append(records, []string{
			formatText(e.ContactID),
			e.ID,
			formatText(e.Category),
			formatTime(e.CreatedAt),
			formatText(e.Hash),
		})
	}

	return Table{
		Name:    TableEvents,
		Headers: []string{domain.ColumnContactID, "event_id", "event_category", "event_created_at", "event_hash"},
		Records: records,
	}
}
