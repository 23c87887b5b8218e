// Package app wires one attribution run together.
//
// NewApplication takes a validated configuration and builds, in order:
//
//  1. the global slog logger (unless WithLogger supplies one)
//  2. the OpenTelemetry providers and the operation tracer
//  3. the pipeline with its six steps
//
// Run executes the pipeline once and, when a metrics file is configured,
// dumps the run's counters in the Prometheus text format. Stop flushes
// telemetry and closes the log file.
//
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	defer application.Stop(ctx)
//	result, err := application.Run(ctx)
package app
