package store

import (
	"fmt"
	"strings"
)

// Dialect names a supported SQL backend
type Dialect string

const (
	DialectDuckDB   Dialect = "duckdb"
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// columnKind is the logical type of a stored column
type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindFloat
	kindBool
	kindTime
)

// dialectSpec is everything that differs between backends
type dialectSpec struct {
	driver string
	// numbered placeholders ($1, $2) instead of ?
	numbered bool
	// schemas qualify table names
	schemas bool
	// CREATE SCHEMA IF NOT EXISTS is supported
	createSchema bool
	types        map[columnKind]string
}

var dialects = map[Dialect]dialectSpec{
	DialectDuckDB: {
		driver:       "duckdb",
		schemas:      true,
		createSchema: true,
		types: map[columnKind]string{
			kindText:  "VARCHAR",
			kindInt:   "BIGINT",
			kindFloat: "DOUBLE",
			kindBool:  "BOOLEAN",
			kindTime:  "TIMESTAMP",
		},
	},
	DialectSQLite: {
		driver: "sqlite",
		types: map[columnKind]string{
			kindText:  "TEXT",
			kindInt:   "INTEGER",
			kindFloat: "REAL",
			kindBool:  "BOOLEAN",
			kindTime:  "TIMESTAMP",
		},
	},
	DialectPostgres: {
		driver:       "pgx",
		numbered:     true,
		schemas:      true,
		createSchema: true,
		types: map[columnKind]string{
			kindText:  "TEXT",
			kindInt:   "BIGINT",
			kindFloat: "DOUBLE PRECISION",
			kindBool:  "BOOLEAN",
			kindTime:  "TIMESTAMP",
		},
	},
	DialectMySQL: {
		driver:  "mysql",
		schemas: true,
		types: map[columnKind]string{
			kindText:  "TEXT",
			kindInt:   "BIGINT",
			kindFloat: "DOUBLE",
			kindBool:  "BOOLEAN",
			kindTime:  "DATETIME(6)",
		},
	},
}

// ParseDialect resolves a dialect name, case-insensitively
func ParseDialect(name string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(name)))
	if d == "" {
		return DialectDuckDB, nil
	}
	if _, ok := dialects[d]; !ok {
		return "", fmt.Errorf("unsupported store dialect %q", name)
	}
	return d, nil
}

// Embedded reports whether the dialect stores into a local file
func (d Dialect) Embedded() bool {
	return d == DialectDuckDB || d == DialectSQLite
}

func (s dialectSpec) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		if s.numbered {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}
