package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"attributioncli/internal/charts"
	"attributioncli/internal/config"
	"attributioncli/internal/dataprocessing"
	apperrors "attributioncli/internal/errors"
	"attributioncli/internal/exporter"
	"attributioncli/internal/kpi"
	"attributioncli/internal/modeling"
	"attributioncli/internal/store"
	"attributioncli/pkg/contracts/domain"
)

// Step identifiers, in pipeline order
const (
	StepIDPreprocess = "preprocess"
	StepIDModel      = "model"
	StepIDMetrics    = "metrics"
	StepIDExport     = "export"
	StepIDCharts     = "charts"
	StepIDPersist    = "persist"
)

// PreprocessStep reads the export and cleans every cell
type PreprocessStep struct {
	BaseStep
	preprocessor *dataprocessing.Preprocessor
}

// NewPreprocessStep creates the preprocess step
func NewPreprocessStep(logger *slog.Logger) *PreprocessStep {
	return &PreprocessStep{
		BaseStep:     NewBaseStep(StepIDPreprocess, "Preprocess Export"),
		preprocessor: dataprocessing.NewPreprocessor(logger),
	}
}

// Execute loads state.InputPath into state.Rows
func (s *PreprocessStep) Execute(ctx context.Context, state *OperationState) error {
	rows, stats, err := s.preprocessor.LoadFile(ctx, state.InputPath)
	if err != nil {
		return err
	}
	state.Rows = rows
	state.Stats = stats

	step := state.GetStep(s.ID())
	step.SetMetadata("rows", stats.Rows)
	step.SetMetadata("missing_contact_ids", stats.MissingContactIDs)
	return nil
}

// ModelStep extracts contacts, attribution and events and rolls them up per contact
type ModelStep struct {
	BaseStep
	tracer *OperationTracer
	logger *slog.Logger
}

// NewModelStep creates the model step
func NewModelStep(tracer *OperationTracer, logger *slog.Logger) *ModelStep {
	return &ModelStep{
		BaseStep: NewBaseStep(StepIDModel, "Build Attribution Model", StepIDPreprocess),
		tracer:   tracer,
		logger:   logger,
	}
}

// Execute builds state.Model from state.Rows
func (s *ModelStep) Execute(ctx context.Context, state *OperationState) error {
	contacts := modeling.BuildContacts(state.Rows)
	attribution := modeling.ExtractAttribution(state.Rows)
	events := modeling.BuildEvents(state.Rows)
	rollup := modeling.Rollup(contacts, attribution, events)

	state.Model = &domain.AttributionModel{
		Contacts:       contacts,
		Attribution:    attribution,
		Events:         events,
		EnrichedEvents: rollup.Events,
		Users:          rollup.Users,
	}
	state.Orphans = rollup.Orphans

	if s.tracer != nil {
		s.tracer.Metrics().RecordModel(ctx, state.Stats.Rows, len(contacts), len(events), rollup.Orphans)
	}

	step := state.GetStep(s.ID())
	step.SetMetadata("contacts", len(contacts))
	step.SetMetadata("events", len(events))
	step.SetMetadata("orphan_events", rollup.Orphans)

	s.logger.InfoContext(ctx, "Built attribution model",
		slog.Int("contacts", len(contacts)),
		slog.Int("attributed", len(attribution)),
		slog.Int("events", len(events)),
		slog.Int("orphan_events", rollup.Orphans))
	return nil
}

// MetricsStep computes per-source metrics and the category mix
type MetricsStep struct {
	BaseStep
}

// NewMetricsStep creates the metrics step
func NewMetricsStep() *MetricsStep {
	return &MetricsStep{BaseStep: NewBaseStep(StepIDMetrics, "Compute Metrics", StepIDModel)}
}

// Validate requires a built model
func (s *MetricsStep) Validate(state *OperationState) error {
	if state.Model == nil {
		return fmt.Errorf("no model to compute metrics from")
	}
	return nil
}

// Execute fills state.Model.Metrics and state.Model.CategoryMix
func (s *MetricsStep) Execute(ctx context.Context, state *OperationState) error {
	state.Model.Metrics = kpi.MetricsPerSource(state.Model.Users)
	state.Model.CategoryMix = kpi.CategoryMix(state.Model.EnrichedEvents, state.Model.Attribution)

	state.GetStep(s.ID()).SetMetadata("sources", len(state.Model.Metrics))
	return nil
}

// ExportStep writes the derived CSV tables and the optional workbook concurrently
type ExportStep struct {
	BaseStep
	paths    *config.Paths
	csv      *exporter.CSVWriter
	workbook *exporter.WorkbookWriter
	withBook bool
	bom      bool
}

// NewExportStep creates the export step
func NewExportStep(paths *config.Paths, withWorkbook, bom bool, logger *slog.Logger) *ExportStep {
	return &ExportStep{
		BaseStep: NewBaseStep(StepIDExport, "Export Tables", StepIDMetrics),
		paths:    paths,
		csv:      exporter.NewCSVWriter("", logger),
		workbook: exporter.NewWorkbookWriter(logger),
		withBook: withWorkbook,
		bom:      bom,
	}
}

// Validate requires computed metrics
func (s *ExportStep) Validate(state *OperationState) error {
	if state.Model == nil {
		return fmt.Errorf("no model to export")
	}
	return nil
}

// Execute writes every table; the first failure cancels the rest
func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	model := state.Model
	metrics := exporter.MetricsTable(model.Metrics)
	users := exporter.UsersTable(model.Users)
	mix := exporter.CategoryMixTable(model.CategoryMix)

	jobs := []struct {
		key   string
		path  string
		table exporter.Table
	}{
		{ArtifactMetricsCSV, s.paths.MetricsCSV, metrics},
		{ArtifactUsersCSV, s.paths.UsersCSV, users},
		{ArtifactCatMixCSV, s.paths.CategoryMixCSV, mix},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := s.csv.WriteTable(job.path, job.table, s.bom); err != nil {
				return apperrors.NewExportError(fmt.Sprintf("write %s", filepath.Base(job.path)), err)
			}
			state.AddArtifact(job.key, job.path)
			return nil
		})
	}

	if s.withBook {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.workbook.Write(s.paths.Workbook,
				metrics, users, mix,
				exporter.ContactsTable(model.Contacts),
				exporter.AttributionTable(model.Attribution),
				exporter.EventsTable(model.Events),
			)
			if err != nil {
				return apperrors.NewExportError("write workbook", err)
			}
			state.AddArtifact(ArtifactWorkbook, s.paths.Workbook)
			return nil
		})
	}

	return g.Wait()
}

// ChartsStep renders the three metrics bar charts
type ChartsStep struct {
	BaseStep
	paths    *config.Paths
	renderer *charts.Renderer
	enabled  bool
}

// NewChartsStep creates the charts step
func NewChartsStep(paths *config.Paths, enabled bool, logger *slog.Logger) *ChartsStep {
	return &ChartsStep{
		BaseStep: NewBaseStep(StepIDCharts, "Render Charts", StepIDMetrics),
		paths:    paths,
		renderer: charts.NewRenderer(logger),
		enabled:  enabled,
	}
}

// Validate skips the step when charts are turned off
func (s *ChartsStep) Validate(state *OperationState) error {
	if !s.enabled {
		return skipf("charts disabled")
	}
	if state.Model == nil {
		return fmt.Errorf("no metrics to chart")
	}
	return nil
}

// Execute writes the chart PNGs
func (s *ChartsStep) Execute(ctx context.Context, state *OperationState) error {
	files := charts.Files{
		Acquisition: s.paths.AcquisitionChart,
		Engagement:  s.paths.EngagementChart,
		Retention:   s.paths.RetentionChart,
	}
	if err := s.renderer.WriteMetricsCharts(ctx, files, state.Model.Metrics); err != nil {
		return apperrors.NewExportError("render charts", err)
	}

	state.AddArtifact(ArtifactAcqPNG, files.Acquisition)
	state.AddArtifact(ArtifactEngPNG, files.Engagement)
	state.AddArtifact(ArtifactRetPNG, files.Retention)
	return nil
}

// PersistStep saves the model into the queryable store and logs the run
type PersistStep struct {
	BaseStep
	options store.Options
	enabled bool
	logger  *slog.Logger
}

// NewPersistStep creates the persist step
func NewPersistStep(options store.Options, enabled bool, logger *slog.Logger) *PersistStep {
	return &PersistStep{
		BaseStep: NewBaseStep(StepIDPersist, "Persist Model", StepIDExport),
		options:  options,
		enabled:  enabled,
		logger:   logger,
	}
}

// Validate skips the step when persistence is turned off
func (s *PersistStep) Validate(state *OperationState) error {
	if !s.enabled {
		return skipf("store disabled")
	}
	if state.Model == nil {
		return fmt.Errorf("no model to persist")
	}
	return nil
}

// Execute replaces the model tables and appends a pipeline_runs row
func (s *PersistStep) Execute(ctx context.Context, state *OperationState) (err error) {
	db, err := store.Open(ctx, s.options, s.logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, db.Close())
	}()

	if err := db.SaveModel(ctx, state.Model); err != nil {
		return err
	}

	runID, parseErr := uuid.Parse(state.ID)
	if parseErr != nil {
		runID = uuid.New()
	}
	run := store.Run{
		ID:           runID,
		InputPath:    state.InputPath,
		InputRows:    state.Stats.Rows,
		Contacts:     len(state.Model.Contacts),
		Events:       len(state.Model.Events),
		OrphanEvents: state.Orphans,
		Sources:      len(state.Model.Metrics),
		Status:       string(OperationStatusCompleted),
		StartedAt:    state.StartTime,
		FinishedAt:   time.Now(),
	}
	if err := db.RecordRun(ctx, run); err != nil {
		return err
	}

	if dialect, _ := store.ParseDialect(string(s.options.Dialect)); dialect.Embedded() {
		state.AddArtifact(ArtifactDuckDBFile, s.options.DSN)
		state.AddArtifact(ArtifactDuckDBDir, filepath.Dir(s.options.DSN))
	}
	return nil
}
