// Package config provides configuration management for the attribution pipeline.
// It handles loading configuration from multiple sources, validation, and resolves
// every artifact path a run writes.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command-line flags (applied by cmd/attribution after Load)
//	2. Environment variables, including a local .env file
//	3. YAML configuration file (attribution.yaml)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ATTRIBUTION_* for namespacing:
//
//	ATTRIBUTION_INPUT_PATH=data/DataTask.csv
//	ATTRIBUTION_OUTPUT_DIR=outputs
//	ATTRIBUTION_STORE_DIALECT=postgres
//	ATTRIBUTION_STORE_DSN=postgres://...
//	ATTRIBUTION_LOGGING_LEVEL=debug
//
// # Path Management
//
// Paths resolves artifact locations below the output directory:
//
//	paths := cfg.Paths()
//	paths.MetricsCSV   // outputs/per_utm_metrics.csv
//	paths.DuckDBFile   // outputs/duckdb/attribution.duckdb
package config
