// Package store persists the attribution model as queryable SQL tables.
//
// DuckDB is the default backend; SQLite, PostgreSQL and MySQL are available
// through the same Store. Model tables (contacts, utm, events, users, metrics,
// cat_mix) are replaced on every save while pipeline_runs accumulates one row
// per run.
package store
