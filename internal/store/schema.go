package store

import (
	"database/sql"
	"fmt"
	"strings"

	"attributioncli/pkg/contracts/domain"
)

// Table names in the store. They match the sheet names of the workbook.
const (
	TableContacts     = "contacts"
	TableUTM          = "utm"
	TableEvents       = "events"
	TableUsers        = "users"
	TableMetrics      = "metrics"
	TableCategoryMix  = "cat_mix"
	TablePipelineRuns = "pipeline_runs"
)

type column struct {
	name string
	kind columnKind
}

// tableDef is a model table together with how its rows are read from the model
type tableDef struct {
	name    string
	columns []column
	rows    func(m *domain.AttributionModel) [][]any
}

// modelTables are replaced on every save, in this order
var modelTables = []tableDef{
	{
		name: TableContacts,
		columns: []column{
			{"contact_id", kindText},
			{"contact_created_at", kindTime},
			{"contact_updated_at", kindTime},
		},
		rows: func(m *domain.AttributionModel) [][]any {
			out := make([][]any, 0, len(m.Contacts))
			for _, c := range m.Contacts {
				out = append(out, []any{c.ID, nullTime(c.CreatedAt), nullTime(c.UpdatedAt)})
			}
			return out
		},
	},
	{
		name: TableUTM,
		columns: []column{
			{"contact_id", kindText},
			{"utm_source", kindText},
		},
		rows: func(m *domain.AttributionModel) [][]any {
			out := make([][]any, 0, len(m.Attribution))
			for _, a := range m.Attribution {
				out = append(out, []any{a.ContactID, a.Source})
			}
			return out
		},
	},
	{
		name: TableEvents,
		columns: []column{
			{"contact_id", kindText},
			{"event_id", kindText},
			{"event_category", kindText},
			{"event_created_at", kindTime},
			{"event_hash", kindText},
		},
		rows: func(m *domain.AttributionModel) [][]any {
			out := make([][]any, 0, len(m.Events))
			for _, e := range m.Events {
				out = append(out, []any{
					nullString(e.ContactID), e.ID, nullString(e.Category), nullTime(e.CreatedAt), nullString(e.Hash),
				})
			}
			return out
		},
	},
	{
		name: TableUsers,
		columns: []column{
			{"contact_id", kindText},
			{"contact_created_at", kindTime},
			{"contact_updated_at", kindTime},
			{"utm_source", kindText},
			{"total_events", kindInt},
			{"events_after_acq", kindInt},
			{"first_event_at", kindTime},
			{"distinct_event_days", kindInt},
			{"engaged", kindBool},
			{"retained", kindBool},
		},
		rows: func(m *domain.AttributionModel) [][]any {
			out := make([][]any, 0, len(m.Users))
			for _, u := range m.Users {
				out = append(out, []any{
					u.ContactID,
					nullTime(u.CreatedAt),
					nullTime(u.UpdatedAt),
					u.Source,
					int64(u.TotalEvents),
					int64(u.EventsAfterAcq),
					nullTime(u.FirstEventAt),
					int64(u.DistinctEventDays),
					u.Engaged,
					u.Retained,
				})
			}
			return out
		},
	},
	{
		name: TableMetrics,
		columns: []column{
			{"utm_source", kindText},
			{"acquisition_volume", kindInt},
			{"engaged_users", kindInt},
			{"retention_users", kindInt},
			{"avg_events_per_user", kindFloat},
			{"engagement_rate", kindFloat},
			{"retention_rate", kindFloat},
		},
		rows: func(m *domain.AttributionModel) [][]any {
			out := make([][]any, 0, len(m.Metrics))
			for _, s := range m.Metrics {
				out = append(out, []any{
					s.Source,
					int64(s.AcquisitionVolume),
					int64(s.EngagedUsers),
					int64(s.RetainedUsers),
					s.AvgEventsPerUser,
					s.EngagementRate,
					s.RetentionRate,
				})
			}
			return out
		},
	},
	{
		name: TableCategoryMix,
		columns: []column{
			{"utm_source", kindText},
			{"event_category", kindText},
			{"events", kindInt},
			{"total_events", kindInt},
			{"share", kindFloat},
		},
		rows: func(m *domain.AttributionModel) [][]any {
			out := make([][]any, 0, len(m.CategoryMix))
			for _, c := range m.CategoryMix {
				out = append(out, []any{c.Source, c.Category, int64(c.Events), int64(c.TotalEvents), c.Share})
			}
			return out
		},
	},
}

// pipelineRuns keeps one row per persisted run and is never dropped
var pipelineRuns = tableDef{
	name: TablePipelineRuns,
	columns: []column{
		{"run_id", kindText},
		{"input_path", kindText},
		{"input_rows", kindInt},
		{"contacts", kindInt},
		{"events", kindInt},
		{"orphan_events", kindInt},
		{"sources", kindInt},
		{"status", kindText},
		{"started_at", kindTime},
		{"finished_at", kindTime},
	},
}

func (s *Store) qualified(table string) string {
	if s.schema == "" || !s.spec.schemas {
		return table
	}
	return s.schema + "." + table
}

func (s *Store) dropTableSQL(t tableDef) string {
	return "DROP TABLE IF EXISTS " + s.qualified(t.name)
}

func (s *Store) createTableSQL(t tableDef, ifNotExists bool) string {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = c.name + " " + s.spec.types[c.kind]
	}
	create := "CREATE TABLE "
	if ifNotExists {
		create += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (%s)", create, s.qualified(t.name), strings.Join(defs, ", "))
}

func (s *Store) insertSQL(t tableDef) string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.qualified(t.name), strings.Join(names, ", "), s.spec.placeholders(len(t.columns)))
}

func nullTime(t domain.NullTime) sql.NullTime {
	if !t.Valid {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.Time.UTC(), Valid: true}
}

func nullString(s domain.NullString) sql.NullString {
	return sql.NullString{String: s.String, Valid: s.Valid}
}
