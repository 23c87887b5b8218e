package config

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// Paths contains every artifact path of one run.
// This is the single source of truth for output file locations.
type Paths struct {
	InputFile  string
	OutputsDir string

	MetricsCSV     string
	UsersCSV       string
	CategoryMixCSV string
	Workbook       string

	AcquisitionChart string
	EngagementChart  string
	RetentionChart   string

	DuckDBDir  string
	DuckDBFile string
}

// NewPaths resolves artifact paths below outputsDir.
func NewPaths(inputFile, outputsDir string) *Paths {
	duckdbDir := filepath.Join(outputsDir, DuckDBDirName)
	return &Paths{
		InputFile:  inputFile,
		OutputsDir: outputsDir,

		MetricsCSV:     filepath.Join(outputsDir, MetricsCSVName),
		UsersCSV:       filepath.Join(outputsDir, UsersCSVName),
		CategoryMixCSV: filepath.Join(outputsDir, CategoryMixCSVName),
		Workbook:       filepath.Join(outputsDir, WorkbookName),

		AcquisitionChart: filepath.Join(outputsDir, AcquisitionChartName),
		EngagementChart:  filepath.Join(outputsDir, EngagementChartName),
		RetentionChart:   filepath.Join(outputsDir, RetentionChartName),

		DuckDBDir:  duckdbDir,
		DuckDBFile: filepath.Join(duckdbDir, DuckDBFileName),
	}
}

// Paths returns the artifact paths for this configuration
func (c *Config) Paths() *Paths {
	return NewPaths(c.Input.Path, c.Output.Dir)
}

// StoreDSN returns the configured DSN, defaulting to the DuckDB file for file-based dialects.
func (c *Config) StoreDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	paths := c.Paths()
	if strings.EqualFold(c.Store.Dialect, "sqlite") {
		return filepath.Join(paths.DuckDBDir, "attribution.sqlite")
	}
	return paths.DuckDBFile
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved artifact paths",
		slog.String("input", p.InputFile),
		slog.String("outputs_dir", p.OutputsDir),
		slog.String("duckdb_file", p.DuckDBFile))
}
