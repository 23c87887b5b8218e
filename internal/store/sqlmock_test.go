package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "attributioncli/internal/errors"
	"attributioncli/pkg/contracts/domain"
)

func newMockStore(t *testing.T, dialect Dialect, schema string) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db, dialect, schema, nil)
	require.NoError(t, err)
	return s, mock
}

// singleUserModel has rows only in utm, users and metrics
func singleUserModel() *domain.AttributionModel {
	return &domain.AttributionModel{
		Attribution: []domain.AttributionSource{{ContactID: "A", Source: "google"}},
		Users: []domain.UserRollup{{
			ContactID: "A", Source: "google", TotalEvents: 3, EventsAfterAcq: 3,
			DistinctEventDays: 2, Engaged: true, Retained: true,
		}},
		Metrics: []domain.SourceMetrics{{
			Source: "google", AcquisitionVolume: 1, EngagedUsers: 1, RetainedUsers: 1,
			AvgEventsPerUser: 3, EngagementRate: 1, RetentionRate: 1,
		}},
	}
}

func expectReplace(mock sqlmock.Sqlmock, table string) {
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS " + table)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE " + table + " (")).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestStore_SaveModel_Postgres(t *testing.T) {
	s, mock := newMockStore(t, DialectPostgres, "analytics")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE SCHEMA IF NOT EXISTS analytics")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	expectReplace(mock, "analytics.contacts")

	expectReplace(mock, "analytics.utm")
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO analytics.utm (contact_id, utm_source) VALUES ($1, $2)"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analytics.utm")).
		WithArgs("A", "google").
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectReplace(mock, "analytics.events")

	expectReplace(mock, "analytics.users")
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO analytics.users")).
		WillBeClosed()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analytics.users")).
		WithArgs("A", nil, nil, "google", int64(3), int64(3), nil, int64(2), true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectReplace(mock, "analytics.metrics")
	mock.ExpectPrepare(regexp.QuoteMeta("$7)"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analytics.metrics")).
		WithArgs("google", int64(1), int64(1), int64(1), 3.0, 1.0, 1.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectReplace(mock, "analytics.cat_mix")
	mock.ExpectCommit()

	require.NoError(t, s.SaveModel(context.Background(), singleUserModel()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveModel_MySQLTypes(t *testing.T) {
	s, mock := newMockStore(t, DialectMySQL, "")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS contacts")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(
		"CREATE TABLE contacts (contact_id TEXT, contact_created_at DATETIME(6), contact_updated_at DATETIME(6))")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectReplace(mock, "utm")
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO utm (contact_id, utm_source) VALUES (?, ?)"))
	mock.ExpectExec("INSERT INTO utm").
		WithArgs("A", "google").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectReplace(mock, "events")
	expectReplace(mock, "users")
	mock.ExpectPrepare("INSERT INTO users")
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	expectReplace(mock, "metrics")
	mock.ExpectPrepare("INSERT INTO metrics")
	mock.ExpectExec("INSERT INTO metrics").WillReturnResult(sqlmock.NewResult(0, 1))
	expectReplace(mock, "cat_mix")
	mock.ExpectCommit()

	require.NoError(t, s.SaveModel(context.Background(), singleUserModel()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveModel_RollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t, DialectMySQL, "")

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS contacts").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE contacts").
		WillReturnError(errors.New("access denied"))
	mock.ExpectRollback()

	err := s.SaveModel(context.Background(), singleUserModel())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	assert.Contains(t, err.Error(), "access denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordRun_Postgres(t *testing.T) {
	s, mock := newMockStore(t, DialectPostgres, "")

	run := Run{
		ID:           uuid.MustParse("6f1c2b52-5f0b-4a8e-9f3a-0d6f3c1e2a10"),
		InputPath:    "data/DataTask.csv",
		InputRows:    120,
		Contacts:     10,
		Events:       90,
		OrphanEvents: 2,
		Sources:      3,
		Status:       "completed",
		StartedAt:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS pipeline_runs (run_id TEXT,")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pipeline_runs (run_id, input_path, input_rows, contacts, events, orphan_events, sources, status, started_at, finished_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)")).
		WithArgs(run.ID.String(), "data/DataTask.csv", int64(120), int64(10), int64(90), int64(2), int64(3),
			"completed", run.StartedAt, run.FinishedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.RecordRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordRun_Error(t *testing.T) {
	s, mock := newMockStore(t, DialectPostgres, "")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pipeline_runs").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO pipeline_runs").
		WillReturnError(errors.New("connection reset"))

	err := s.RecordRun(context.Background(), Run{ID: uuid.New()})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
	assert.Contains(t, appErr.Context, "run_id")
}

func TestCreateTableSQL_Dialects(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectDuckDB, "CREATE TABLE cat_mix (utm_source VARCHAR, event_category VARCHAR, events BIGINT, total_events BIGINT, share DOUBLE)"},
		{DialectSQLite, "CREATE TABLE cat_mix (utm_source TEXT, event_category TEXT, events INTEGER, total_events INTEGER, share REAL)"},
		{DialectPostgres, "CREATE TABLE cat_mix (utm_source TEXT, event_category TEXT, events BIGINT, total_events BIGINT, share DOUBLE PRECISION)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			s, err := New(nil, tt.dialect, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.createTableSQL(modelTables[5], false))
		})
	}
}

func TestQualified_IgnoresSchemaForSQLite(t *testing.T) {
	s, err := New(nil, DialectSQLite, "analytics", nil)
	require.NoError(t, err)

	assert.Equal(t, "users", s.qualified(TableUsers))
}
