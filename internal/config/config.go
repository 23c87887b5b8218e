package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Store     StoreConfig     `yaml:"store" envconfig:"STORE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig describes the flat contact export
type InputConfig struct {
	Path string `yaml:"path" split_words:"true" validate:"required"`
}

// OutputConfig controls which artifacts a run writes and where
type OutputConfig struct {
	Dir       string `yaml:"dir" split_words:"true" validate:"required"`
	Charts    bool   `yaml:"charts" split_words:"true"`
	Workbook  bool   `yaml:"workbook" split_words:"true"`
	BOMPrefix bool   `yaml:"bom_prefix" split_words:"true"`
}

// StoreConfig contains the queryable model store configuration.
// An empty DSN means the DuckDB file under the output directory.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled" split_words:"true"`
	Dialect string `yaml:"dialect" split_words:"true" validate:"oneof=duckdb sqlite postgres mysql"`
	DSN     string `yaml:"dsn" split_words:"true"`
	Schema  string `yaml:"schema" split_words:"true" validate:"omitempty,alphanum"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// TelemetryConfig contains tracing and metrics export configuration
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" split_words:"true" validate:"required"`
	Tracing     bool   `yaml:"tracing" split_words:"true"`
	MetricsFile string `yaml:"metrics_file" split_words:"true"`
}

// EnvPrefix namespaces every environment variable, e.g. ATTRIBUTION_INPUT_PATH.
// Leaf fields carry no envconfig tag so envconfig never falls back to an
// unprefixed name such as PATH.
const EnvPrefix = "ATTRIBUTION"

// Load builds the configuration from defaults, an optional YAML file, an optional
// .env file and the environment, in increasing order of precedence.
// An empty path falls back to the well-known config locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file keep their value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalizes logging values.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Store.Dialect = strings.ToLower(strings.TrimSpace(c.Store.Dialect))

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	if c.Store.Enabled && c.Store.Dialect != "duckdb" && c.Store.Dialect != "sqlite" && c.Store.DSN == "" {
		return fmt.Errorf("store dialect %s requires a dsn", c.Store.Dialect)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"attribution.yaml",
		"configs/attribution.yaml",
		"../configs/attribution.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path: DefaultInputPath,
		},
		Output: OutputConfig{
			Dir:      DefaultOutputsDir,
			Charts:   true,
			Workbook: true,
		},
		Store: StoreConfig{
			Enabled: true,
			Dialect: "duckdb",
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: "console",
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
		},
	}
}
