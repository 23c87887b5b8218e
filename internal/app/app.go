package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"attributioncli/internal/config"
	"attributioncli/internal/infrastructure"
	"attributioncli/internal/operations"
	"attributioncli/pkg/contracts"
)

// ShutdownTimeout bounds the telemetry flush at exit
const ShutdownTimeout = 5 * time.Second

// Application wires configuration, logging, telemetry and the pipeline
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Tracer        *operations.OperationTracer
	Pipeline      *operations.Pipeline

	ownsLogFile bool
}

// Option customizes NewApplication
type Option func(*options)

type options struct {
	logger      *slog.Logger
	traceWriter io.Writer
}

// WithLogger uses logger instead of the global logger built from cfg.Logging
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTraceWriter sends pretty-printed spans to w instead of stderr
func WithTraceWriter(w io.Writer) Option {
	return func(o *options) { o.traceWriter = w }
}

// NewApplication creates a new application instance from a validated configuration
func NewApplication(cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &Application{Config: cfg, Logger: o.logger}
	if app.Logger == nil {
		logger, err := infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.Logger = logger
		app.ownsLogFile = true
	}

	app.Logger.Debug("Application starting",
		slog.String("version", contracts.Version),
		slog.String("input", cfg.Input.Path),
		slog.String("output_dir", cfg.Output.Dir))

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.ServiceName = cfg.Telemetry.ServiceName
	otelCfg.EnableTracing = cfg.Telemetry.Tracing
	otelCfg.TraceWriter = o.traceWriter
	otelProviders, err := infrastructure.InitializeOTel(otelCfg, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.OTelProviders = otelProviders

	tracer, err := operations.NewOperationTracer(otelProviders)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize operation tracer: %w", err)
	}
	app.Tracer = tracer

	runOpts := operations.OptionsFromConfig(cfg)
	runOpts.Paths.LogPathResolution(app.Logger)

	pipeline, err := operations.NewPipeline(runOpts, tracer, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	app.Pipeline = pipeline

	return app, nil
}

// Run executes one pipeline run and dumps the run metrics when a metrics file is configured
func (a *Application) Run(ctx context.Context) (*operations.Result, error) {
	result, err := a.Pipeline.RunAll(ctx)

	if path := a.Config.Telemetry.MetricsFile; path != "" {
		if mErr := a.OTelProviders.WriteMetricsTextfile(path); mErr != nil {
			a.Logger.WarnContext(ctx, "Failed to write metrics file",
				slog.String("path", path),
				slog.String("error", mErr.Error()))
		} else if err == nil {
			result.Artifacts[operations.ArtifactMetricsFile] = path
		}
	}

	if err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Pipeline failed")
		return result, err
	}

	a.Logger.InfoContext(ctx, "Pipeline completed",
		slog.String("run_id", result.RunID),
		slog.Int("artifacts", len(result.Artifacts)),
		slog.Duration("duration", result.State.Duration()))
	return result, nil
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	var err error
	if a.OTelProviders != nil {
		err = multierr.Append(err, a.OTelProviders.Shutdown(shutdownCtx))
	}
	if a.ownsLogFile {
		err = multierr.Append(err, infrastructure.CloseLogFile())
	}
	return err
}
