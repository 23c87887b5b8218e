package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"

	apperrors "attributioncli/internal/errors"
	"attributioncli/pkg/contracts/domain"
)

// Options configures a store connection
type Options struct {
	Dialect Dialect
	// DSN is a file path for the embedded dialects and a connection string otherwise
	DSN string
	// Schema qualifies every table when the dialect supports schemas
	Schema      string
	PingTimeout time.Duration
}

// Store persists the attribution model into a SQL database
type Store struct {
	db     *sql.DB
	spec   dialectSpec
	schema string
	logger *slog.Logger
}

// Run is one row of the pipeline_runs table
type Run struct {
	ID           uuid.UUID
	InputPath    string
	InputRows    int
	Contacts     int
	Events       int
	OrphanEvents int
	Sources      int
	Status       string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Open connects to the configured database and verifies it with a ping
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	dialect, err := ParseDialect(string(opts.Dialect))
	if err != nil {
		return nil, apperrors.NewConfigError("invalid store dialect", err)
	}
	spec := dialects[dialect]

	if strings.TrimSpace(opts.DSN) == "" {
		return nil, apperrors.NewConfigError("store dsn is required", nil)
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 10 * time.Second
	}

	dsn := opts.DSN
	if dialect.Embedded() {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, apperrors.NewStorageError("failed to create store directory", err)
		}
		if dialect == DialectSQLite {
			dsn = sqliteDSN(dsn)
		}
	}

	db, err := sql.Open(spec.driver, dsn)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("open %s store", dialect), err)
	}
	if dialect.Embedded() {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, apperrors.NewStorageError(fmt.Sprintf("ping %s store", dialect), err)
	}

	return newStore(db, spec, opts.Schema, logger), nil
}

// New wraps an existing connection
func New(db *sql.DB, dialect Dialect, schema string, logger *slog.Logger) (*Store, error) {
	d, err := ParseDialect(string(dialect))
	if err != nil {
		return nil, apperrors.NewConfigError("invalid store dialect", err)
	}
	return newStore(db, dialects[d], schema, logger), nil
}

func newStore(db *sql.DB, spec dialectSpec, schema string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, spec: spec, schema: schema, logger: logger}
}

// sqliteDSN turns a plain file path into a modernc DSN with a busy timeout
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.Clean(path))
}

// DB exposes the underlying connection pool
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveModel replaces every model table with the contents of model in one
// transaction. Tables are dropped and recreated so schema changes never leave
// stale columns behind.
func (s *Store) SaveModel(ctx context.Context, model *domain.AttributionModel) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("begin transaction", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	if err = s.ensureSchema(ctx, tx); err != nil {
		return err
	}

	for _, table := range modelTables {
		var rows int
		rows, err = s.replaceTable(ctx, tx, table, table.rows(model))
		if err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("save table %s", table.name), err)
		}
		s.logger.DebugContext(ctx, "Saved table",
			slog.String("table", s.qualified(table.name)),
			slog.Int("rows", rows))
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewStorageError("commit model", err)
	}
	return nil
}

func (s *Store) ensureSchema(ctx context.Context, tx *sql.Tx) error {
	if s.schema == "" || !s.spec.createSchema {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+s.schema); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("create schema %s", s.schema), err)
	}
	return nil
}

func (s *Store) replaceTable(ctx context.Context, tx *sql.Tx, table tableDef, rows [][]any) (int, error) {
	if _, err := tx.ExecContext(ctx, s.dropTableSQL(table)); err != nil {
		return 0, fmt.Errorf("drop: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.createTableSQL(table, false)); err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return insertRows(ctx, tx, s.insertSQL(table), rows)
}

func insertRows(ctx context.Context, tx *sql.Tx, query string, rows [][]any) (n int, err error) {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		err = multierr.Append(err, stmt.Close())
	}()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return i, fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return len(rows), nil
}

// RecordRun appends run to the pipeline_runs table, creating it on first use
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if err := s.ensureRunsTable(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, s.insertSQL(pipelineRuns),
		run.ID.String(),
		run.InputPath,
		int64(run.InputRows),
		int64(run.Contacts),
		int64(run.Events),
		int64(run.OrphanEvents),
		int64(run.Sources),
		run.Status,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
	)
	if err != nil {
		return apperrors.NewStorageError("record pipeline run", err).WithContext("run_id", run.ID.String())
	}

	s.logger.DebugContext(ctx, "Recorded pipeline run",
		slog.String("run_id", run.ID.String()),
		slog.String("status", run.Status))
	return nil
}

func (s *Store) ensureRunsTable(ctx context.Context) error {
	if s.schema != "" && s.spec.createSchema {
		if _, err := s.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+s.schema); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("create schema %s", s.schema), err)
		}
	}
	if _, err := s.db.ExecContext(ctx, s.createTableSQL(pipelineRuns, true)); err != nil {
		return apperrors.NewStorageError("create pipeline_runs", err)
	}
	return nil
}

// CountRows returns the number of rows in one of the store's tables
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	if !knownTable(table) {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("table %s", table))
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.qualified(table)).Scan(&n); err != nil {
		return 0, apperrors.NewStorageError(fmt.Sprintf("count %s", table), err)
	}
	return n, nil
}

// knownTable guards the identifiers that may be interpolated into SQL
func knownTable(name string) bool {
	if name == pipelineRuns.name {
		return true
	}
	for _, t := range modelTables {
		if t.name == name {
			return true
		}
	}
	return false
}
