package config

// Application constants
const (
	AppName = "attribution"

	DefaultInputPath  = "data/DataTask.csv"
	DefaultOutputsDir = "outputs"
	DefaultLogFile    = "logs/attribution.log"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
)

// Artifact file names inside the output directory
const (
	MetricsCSVName     = "per_utm_metrics.csv"
	UsersCSVName       = "users_table.csv"
	CategoryMixCSVName = "event_category_mix.csv"
	WorkbookName       = "attribution_report.xlsx"

	AcquisitionChartName = "acquisition_volume_by_utm.png"
	EngagementChartName  = "engagement_rate_by_utm.png"
	RetentionChartName   = "retention_rate_by_utm.png"

	DuckDBDirName  = "duckdb"
	DuckDBFileName = "attribution.duckdb"
)
