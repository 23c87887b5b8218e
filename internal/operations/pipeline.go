package operations

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"attributioncli/internal/config"
	"attributioncli/internal/infrastructure"
	"attributioncli/internal/store"
	"attributioncli/internal/validation"
	"attributioncli/pkg/contracts/domain"
)

// Options selects what a pipeline run writes
type Options struct {
	Paths     *config.Paths
	Charts    bool
	Workbook  bool
	BOMPrefix bool
	SaveStore bool
	Store     store.Options
}

// OptionsFromConfig derives run options from a validated configuration
func OptionsFromConfig(cfg *config.Config) Options {
	dialect, _ := store.ParseDialect(cfg.Store.Dialect)
	return Options{
		Paths:     cfg.Paths(),
		Charts:    cfg.Output.Charts,
		Workbook:  cfg.Output.Workbook,
		BOMPrefix: cfg.Output.BOMPrefix,
		SaveStore: cfg.Store.Enabled,
		Store: store.Options{
			Dialect: dialect,
			DSN:     cfg.StoreDSN(),
			Schema:  cfg.Store.Schema,
		},
	}
}

// Result is everything a finished run produced
type Result struct {
	RunID     string
	State     *OperationState
	Model     *domain.AttributionModel
	Artifacts Artifacts
}

// Pipeline wires the attribution steps into a Manager
type Pipeline struct {
	opts      Options
	manager   *Manager
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewPipeline registers preprocess, model, metrics, export, charts and persist
func NewPipeline(opts Options, tracer *OperationTracer, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	manager := NewManager(NewRegistry(), tracer, logger)
	steps := []Step{
		NewPreprocessStep(infrastructure.WithComponent(logger, StepIDPreprocess)),
		NewModelStep(manager.tracer, infrastructure.WithComponent(logger, StepIDModel)),
		NewMetricsStep(),
		NewExportStep(opts.Paths, opts.Workbook, opts.BOMPrefix, infrastructure.WithComponent(logger, StepIDExport)),
		NewChartsStep(opts.Paths, opts.Charts, infrastructure.WithComponent(logger, StepIDCharts)),
		NewPersistStep(opts.Store, opts.SaveStore, infrastructure.WithComponent(logger, StepIDPersist)),
	}
	for _, step := range steps {
		if err := manager.RegisterStep(step); err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		opts:      opts,
		manager:   manager,
		validator: validation.NewFileValidator(logger),
		logger:    logger,
	}, nil
}

// RunAll validates the input, runs every step and returns the written artifacts.
// Nothing is written when the input cannot be read or parsed.
func (p *Pipeline) RunAll(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	ctx = infrastructure.WithRunID(infrastructure.EnsureTraceID(ctx), runID)

	outputDirs := []string{p.opts.Paths.OutputsDir}
	if p.opts.SaveStore && p.opts.Store.Dialect.Embedded() && p.opts.Store.DSN != "" {
		outputDirs = append(outputDirs, filepath.Dir(p.opts.Store.DSN))
	}
	if err := p.validator.ValidateRun(p.opts.Paths.InputFile, outputDirs...); err != nil {
		return nil, err
	}

	state := NewOperationState(runID, p.opts.Paths.InputFile)
	err := p.manager.Execute(ctx, state)

	result := &Result{
		RunID:     runID,
		State:     state,
		Model:     state.Model,
		Artifacts: state.Artifacts(),
	}
	return result, err
}
