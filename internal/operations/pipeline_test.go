package operations

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attributioncli/internal/config"
	apperrors "attributioncli/internal/errors"
	"attributioncli/internal/shared/testutil"
	"attributioncli/internal/store"
)

func testOptions(input, outputs string) Options {
	paths := config.NewPaths(input, outputs)
	return Options{
		Paths:     paths,
		Charts:    true,
		Workbook:  true,
		SaveStore: true,
		Store: store.Options{
			Dialect: store.DialectSQLite,
			DSN:     filepath.Join(paths.DuckDBDir, "attribution.sqlite"),
		},
	}
}

func runPipeline(t *testing.T, opts Options) (*Result, error) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	p, err := NewPipeline(opts, nil, logger)
	require.NoError(t, err)
	return p.RunAll(context.Background())
}

func TestPipeline_RunAll(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(testutil.WriteExport(t, dir, testutil.SampleExport()), filepath.Join(dir, "outputs"))

	result, err := runPipeline(t, opts)
	require.NoError(t, err)
	require.NotNil(t, result.Model)

	for _, key := range []string{
		ArtifactMetricsCSV, ArtifactUsersCSV, ArtifactCatMixCSV,
		ArtifactAcqPNG, ArtifactEngPNG, ArtifactRetPNG,
		ArtifactWorkbook, ArtifactDuckDBFile,
	} {
		path, ok := result.Artifacts[key]
		require.True(t, ok, "missing artifact %s", key)
		assert.FileExists(t, path)
	}
	assert.DirExists(t, result.Artifacts[ArtifactDuckDBDir])

	assert.Len(t, result.Model.Contacts, 3)
	assert.Len(t, result.Model.Metrics, 2)
	assert.Equal(t, "google", result.Model.Metrics[0].Source)
	assert.Equal(t, 2, result.Model.Metrics[0].AcquisitionVolume)

	metrics, err := os.ReadFile(opts.Paths.MetricsCSV)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "utm_source,acquisition_volume,engaged_users,retention_users")

	db, err := store.Open(context.Background(), opts.Store, quietLogger(t))
	require.NoError(t, err)
	defer db.Close()

	n, err := db.CountRows(context.Background(), store.TableUsers)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	runs, err := db.CountRows(context.Background(), store.TablePipelineRuns)
	require.NoError(t, err)
	assert.Equal(t, 1, runs)

	for _, step := range result.State.OrderedSteps() {
		assert.Equal(t, StepStatusCompleted, step.GetStatus(), step.ID)
	}
}

func TestPipeline_RunAll_Idempotent(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(testutil.WriteExport(t, dir, testutil.SampleExport()), filepath.Join(dir, "outputs"))

	_, err := runPipeline(t, opts)
	require.NoError(t, err)
	first := map[string][]byte{}
	for _, path := range []string{opts.Paths.MetricsCSV, opts.Paths.UsersCSV, opts.Paths.CategoryMixCSV} {
		first[path], err = os.ReadFile(path)
		require.NoError(t, err)
	}

	_, err = runPipeline(t, opts)
	require.NoError(t, err)
	for path, want := range first {
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, filepath.Base(path))
	}

	db, err := store.Open(context.Background(), opts.Store, quietLogger(t))
	require.NoError(t, err)
	defer db.Close()

	users, err := db.CountRows(context.Background(), store.TableUsers)
	require.NoError(t, err)
	assert.Equal(t, 3, users, "tables are replaced, not appended")

	runs, err := db.CountRows(context.Background(), store.TablePipelineRuns)
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
}

func TestPipeline_RunAll_OptionalOutputsDisabled(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(testutil.WriteExport(t, dir, testutil.SampleExport()), filepath.Join(dir, "outputs"))
	opts.Charts = false
	opts.Workbook = false
	opts.SaveStore = false

	result, err := runPipeline(t, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{ArtifactCatMixCSV, ArtifactMetricsCSV, ArtifactUsersCSV}, result.Artifacts.Keys())
	assert.Equal(t, StepStatusSkipped, result.State.GetStep(StepIDCharts).GetStatus())
	assert.Equal(t, StepStatusSkipped, result.State.GetStep(StepIDPersist).GetStatus())
	assert.NoDirExists(t, opts.Paths.DuckDBDir)
}

func TestPipeline_RunAll_StoreOutsideOutputs(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(testutil.WriteExport(t, dir, testutil.SampleExport()), filepath.Join(dir, "outputs"))
	opts.Charts = false
	opts.Workbook = false
	opts.Store.DSN = filepath.Join(dir, "warehouse", "model.sqlite")

	result, err := runPipeline(t, opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "warehouse"), result.Artifacts[ArtifactDuckDBDir])
	assert.FileExists(t, opts.Store.DSN)
	assert.NoDirExists(t, opts.Paths.DuckDBDir)
}

func TestPipeline_RunAll_MalformedInput(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteExport(t, dir, "Contact ID,Field Value\n\"c1,unterminated\n")
	opts := testOptions(input, filepath.Join(dir, "outputs"))

	result, err := runPipeline(t, opts)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	assert.Equal(t, StepIDPreprocess, FailedStep(err))
	assert.Empty(t, result.Artifacts)

	for _, path := range []string{opts.Paths.MetricsCSV, opts.Paths.UsersCSV, opts.Paths.CategoryMixCSV, opts.Paths.Workbook} {
		assert.NoFileExists(t, path)
	}
}

func TestPipeline_RunAll_MissingInput(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "outputs"))

	result, err := runPipeline(t, opts)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Path = "data/export.csv"
	cfg.Output.Dir = "out"
	cfg.Store.Dialect = "SQLite"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, store.DialectSQLite, opts.Store.Dialect)
	assert.Equal(t, filepath.Join("out", "per_utm_metrics.csv"), opts.Paths.MetricsCSV)
	assert.Equal(t, cfg.StoreDSN(), opts.Store.DSN)
}

func quietLogger(t *testing.T) *slog.Logger {
	logger, _ := testutil.NewTestLogger(t)
	return logger
}

func TestPipeline_RunAll_Logs(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(testutil.WriteExport(t, dir, testutil.SampleExport()), filepath.Join(dir, "outputs"))
	opts.SaveStore = false

	logger, logs := testutil.NewTestLogger(t)
	p, err := NewPipeline(opts, nil, logger)
	require.NoError(t, err)
	_, err = p.RunAll(context.Background())
	require.NoError(t, err)

	model := testutil.AssertLogged(t, logs, slog.LevelInfo, "Built attribution model")
	assert.Equal(t, int64(3), model.Attrs["contacts"])
	assert.Equal(t, int64(5), model.Attrs["events"])
	assert.Equal(t, int64(1), model.Attrs["orphan_events"])

	testutil.AssertLogged(t, logs, slog.LevelInfo, "Operation completed")
	assert.Zero(t, logs.Count(slog.LevelError))
}
