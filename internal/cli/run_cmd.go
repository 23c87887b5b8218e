package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"attributioncli/internal/app"
	"attributioncli/internal/config"
	apperrors "attributioncli/internal/errors"
)

type runFlags struct {
	configPath  string
	input       string
	output      string
	noCharts    bool
	noWorkbook  bool
	noDB        bool
	saveDuckDB  bool
	bomPrefix   bool
	dbPath      string
	dialect     string
	dsn         string
	schema      string
	logLevel    string
	logFormat   string
	trace       bool
	metricsFile string
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the attribution model and write metrics, charts, workbook and store tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if stopErr := application.Stop(ctx); stopErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", stopErr)
				}
			}()

			result, err := application.Run(ctx)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), result)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "YAML config file (default: attribution.yaml or configs/attribution.yaml)")
	flags.StringVarP(&f.input, "input", "i", "", "Flat contact export CSV")
	flags.StringVarP(&f.output, "output", "o", "", "Output directory")
	flags.BoolVar(&f.noCharts, "no-charts", false, "Skip the PNG bar charts")
	flags.BoolVar(&f.noWorkbook, "no-workbook", false, "Skip the Excel workbook")
	flags.BoolVar(&f.noDB, "no-db", false, "Skip saving model tables to the store")
	flags.BoolVar(&f.saveDuckDB, "save-duckdb", true, "Save model tables to the store")
	flags.BoolVar(&f.bomPrefix, "bom", false, "Prefix CSV files with a UTF-8 byte order mark")
	flags.StringVar(&f.dbPath, "db-path", "", "Database file for embedded dialects")
	flags.StringVar(&f.dialect, "dialect", "", "Store dialect: duckdb, sqlite, postgres or mysql")
	flags.StringVar(&f.dsn, "dsn", "", "Store connection string (overrides --db-path)")
	flags.StringVar(&f.schema, "schema", "", "Store schema for postgres, duckdb and mysql")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&f.logFormat, "log-format", "", "Log format: json or text")
	flags.BoolVar(&f.trace, "trace", false, "Print OpenTelemetry spans to stderr")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write pipeline counters in the Prometheus text format")

	return cmd
}

// loadConfig layers changed flags over the loaded configuration
func loadConfig(cmd *cobra.Command, f *runFlags) (*config.Config, error) {
	flags := cmd.Flags()
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, apperrors.NewConfigError("load configuration", err)
	}

	if flags.Changed("input") {
		cfg.Input.Path = f.input
	}
	if flags.Changed("output") {
		cfg.Output.Dir = f.output
	}
	if f.noCharts {
		cfg.Output.Charts = false
	}
	if f.noWorkbook {
		cfg.Output.Workbook = false
	}
	if flags.Changed("bom") {
		cfg.Output.BOMPrefix = f.bomPrefix
	}
	if flags.Changed("save-duckdb") {
		cfg.Store.Enabled = f.saveDuckDB
	}
	if f.noDB {
		cfg.Store.Enabled = false
	}
	if flags.Changed("dialect") {
		cfg.Store.Dialect = f.dialect
	}
	if flags.Changed("db-path") {
		cfg.Store.DSN = f.dbPath
	}
	if flags.Changed("dsn") {
		cfg.Store.DSN = f.dsn
	}
	if flags.Changed("schema") {
		cfg.Store.Schema = f.schema
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if f.trace {
		cfg.Telemetry.Tracing = true
	}
	if flags.Changed("metrics-file") {
		cfg.Telemetry.MetricsFile = f.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// Execute runs the root command with ctx and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return ExitCode(err)
}
