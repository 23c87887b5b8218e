// Package shared holds helpers used across package boundaries.
//
// The testutil subpackage provides a capturing slog handler for log
// assertions and builders for flat contact export fixtures:
//
//	logger, logs := testutil.NewTestLogger(t)
//	input := testutil.WriteExport(t, t.TempDir(), testutil.SampleExport())
//	...
//	testutil.AssertLogged(t, logs, slog.LevelInfo, "Built attribution model")
package shared
