package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the tests touch and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"ATTRIBUTION_INPUT_PATH", "ATTRIBUTION_OUTPUT_DIR", "ATTRIBUTION_OUTPUT_CHARTS",
		"ATTRIBUTION_STORE_ENABLED", "ATTRIBUTION_STORE_DIALECT", "ATTRIBUTION_STORE_DSN",
		"ATTRIBUTION_LOGGING_LEVEL", "ATTRIBUTION_LOGGING_OUTPUT", "ATTRIBUTION_LOGGING_FORMAT",
		"ATTRIBUTION_LOGGING_FILE_PATH", "ATTRIBUTION_OUTPUT_BOM_PREFIX", "ATTRIBUTION_OUTPUT_WORKBOOK",
		"ATTRIBUTION_TELEMETRY_TRACING", "ATTRIBUTION_TELEMETRY_METRICS_FILE",
	}
	for _, envVar := range envVars {
		if val, ok := os.LookupEnv(envVar); ok {
			t.Cleanup(func() { os.Setenv(envVar, val) })
		} else {
			t.Cleanup(func() { os.Unsetenv(envVar) })
		}
		os.Unsetenv(envVar)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attribution.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(t *testing.T)
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name:        "defaults only",
			fileContent: "",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultInputPath, cfg.Input.Path)
				assert.Equal(t, DefaultOutputsDir, cfg.Output.Dir)
				assert.True(t, cfg.Output.Charts)
				assert.True(t, cfg.Store.Enabled)
				assert.Equal(t, "duckdb", cfg.Store.Dialect)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "file overrides defaults",
			fileContent: `
input:
  path: exports/contacts.csv
output:
  dir: build/out
  charts: false
store:
  dialect: sqlite
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "exports/contacts.csv", cfg.Input.Path)
				assert.Equal(t, "build/out", cfg.Output.Dir)
				assert.False(t, cfg.Output.Charts)
				assert.True(t, cfg.Output.Workbook)
				assert.Equal(t, "sqlite", cfg.Store.Dialect)
			},
		},
		{
			name: "environment overrides file",
			setupEnv: func(t *testing.T) {
				os.Setenv("ATTRIBUTION_OUTPUT_DIR", "env/out")
				os.Setenv("ATTRIBUTION_LOGGING_LEVEL", "DEBUG")
			},
			fileContent: "output:\n  dir: file/out\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "env/out", cfg.Output.Dir)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "unknown dialect rejected",
			setupEnv: func(t *testing.T) {
				os.Setenv("ATTRIBUTION_STORE_DIALECT", "oracle")
			},
			wantErr: true,
		},
		{
			name: "server dialect without dsn rejected",
			setupEnv: func(t *testing.T) {
				os.Setenv("ATTRIBUTION_STORE_DIALECT", "postgres")
			},
			wantErr: true,
		},
		{
			name: "server dialect allowed when store disabled",
			setupEnv: func(t *testing.T) {
				os.Setenv("ATTRIBUTION_STORE_DIALECT", "mysql")
				os.Setenv("ATTRIBUTION_STORE_ENABLED", "false")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Store.Enabled)
			},
		},
		{
			name:        "malformed yaml",
			fileContent: "output: [unterminated",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.setupEnv != nil {
				tt.setupEnv(t)
			}
			path := writeConfigFile(t, tt.fileContent)

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_IgnoresUnprefixedEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PATH", "/usr/local/bin:/usr/bin")
	t.Setenv("DIR", "elsewhere")
	t.Setenv("OUTPUT", "file")
	t.Setenv("LEVEL", "error")
	t.Setenv("FORMAT", "text")
	t.Setenv("DSN", "postgres://localhost/other")
	t.Setenv("TRACING", "true")

	cfg, err := Load(writeConfigFile(t, "input:\n  path: exports/contacts.csv\n"))
	require.NoError(t, err)

	assert.Equal(t, "exports/contacts.csv", cfg.Input.Path)
	assert.Equal(t, DefaultOutputsDir, cfg.Output.Dir)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Logging.Format)
	assert.Empty(t, cfg.Store.DSN)
	assert.False(t, cfg.Telemetry.Tracing)
}

func TestLoad_SplitWordsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ATTRIBUTION_OUTPUT_BOM_PREFIX", "true")
	t.Setenv("ATTRIBUTION_TELEMETRY_METRICS_FILE", "out/metrics.prom")
	t.Setenv("ATTRIBUTION_LOGGING_FILE_PATH", "logs/run.log")

	cfg, err := Load(writeConfigFile(t, ""))
	require.NoError(t, err)

	assert.True(t, cfg.Output.BOMPrefix)
	assert.Equal(t, "out/metrics.prom", cfg.Telemetry.MetricsFile)
	assert.Equal(t, "logs/run.log", cfg.Logging.FilePath)
}

func TestValidate_FillsLogFile(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "both"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestValidate_RequiresInput(t *testing.T) {
	cfg := Default()
	cfg.Input.Path = ""

	assert.Error(t, cfg.Validate())
}
