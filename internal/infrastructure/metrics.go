package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the counters one pipeline run reports
type PipelineMetrics struct {
	RowsIngested metric.Int64Counter
	Contacts     metric.Int64Counter
	Events       metric.Int64Counter
	OrphanEvents metric.Int64Counter
	Runs         metric.Int64Counter
	RunErrors    metric.Int64Counter
	StepDuration metric.Float64Histogram
	HeapAlloc    metric.Int64Gauge
	Goroutines   metric.Int64Gauge
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsIngested, err := meter.Int64Counter(
		"attribution_rows_ingested",
		metric.WithDescription("Source rows read from the contact export"),
	)
	if err != nil {
		return nil, err
	}

	contacts, err := meter.Int64Counter(
		"attribution_contacts",
		metric.WithDescription("Distinct contacts in the model"),
	)
	if err != nil {
		return nil, err
	}

	events, err := meter.Int64Counter(
		"attribution_events",
		metric.WithDescription("Event rows in the model"),
	)
	if err != nil {
		return nil, err
	}

	orphanEvents, err := meter.Int64Counter(
		"attribution_orphan_events",
		metric.WithDescription("Events whose contact is missing or unknown"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		"attribution_runs",
		metric.WithDescription("Pipeline runs started"),
	)
	if err != nil {
		return nil, err
	}

	runErrors, err := meter.Int64Counter(
		"attribution_run_errors",
		metric.WithDescription("Pipeline runs that failed"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"attribution_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"attribution_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	goroutines, err := meter.Int64Gauge(
		"attribution_goroutines",
		metric.WithDescription("Number of goroutines at the end of the run"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsIngested: rowsIngested,
		Contacts:     contacts,
		Events:       events,
		OrphanEvents: orphanEvents,
		Runs:         runs,
		RunErrors:    runErrors,
		StepDuration: stepDuration,
		HeapAlloc:    heapAlloc,
		Goroutines:   goroutines,
	}, nil
}

// RecordStep records one step's duration and outcome
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

// RecordModel records the row counts of a built model
func (m *PipelineMetrics) RecordModel(ctx context.Context, rows, contacts, events, orphans int) {
	if m == nil {
		return
	}
	m.RowsIngested.Add(ctx, int64(rows))
	m.Contacts.Add(ctx, int64(contacts))
	m.Events.Add(ctx, int64(events))
	m.OrphanEvents.Add(ctx, int64(orphans))
}

// RecordRun counts a finished run and samples runtime memory
func (m *PipelineMetrics) RecordRun(ctx context.Context, success bool) {
	if m == nil {
		return
	}

	m.Runs.Add(ctx, 1)
	if !success {
		m.RunErrors.Add(ctx, 1)
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.HeapAlloc.Record(ctx, int64(memStats.HeapAlloc))
	m.Goroutines.Record(ctx, int64(runtime.NumGoroutine()))
}
