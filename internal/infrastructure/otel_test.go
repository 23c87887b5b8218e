package infrastructure

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_Defaults(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Registry)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_TracingWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceWriter = &buf

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "preprocess")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	AddSpanEvent(ctx, "rows.parsed", map[string]interface{}{"rows": 3})
	SetSpanAttributes(ctx, map[string]interface{}{"step.missing_contact_ids": 1})
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "preprocess")
	assert.Contains(t, buf.String(), "rows.parsed")
	assert.Contains(t, buf.String(), "step.missing_contact_ids")
}

func TestWriteMetricsTextfile(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordModel(ctx, 10, 4, 6, 1)
	metrics.RecordStep(ctx, "metrics", 25*time.Millisecond, true)
	metrics.RecordRun(ctx, true)

	path := filepath.Join(t.TempDir(), "metrics", "attribution.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "attribution_rows_ingested")
	assert.Contains(t, text, "attribution_orphan_events")
	assert.Contains(t, text, "attribution_step_duration_seconds")
}

func TestWriteMetricsTextfile_DisabledIsNoop(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "attribution.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))
	assert.NoFileExists(t, path)
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var metrics *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordStep(ctx, "model", time.Second, false)
		metrics.RecordModel(ctx, 1, 1, 1, 0)
		metrics.RecordRun(ctx, false)
	})
}
