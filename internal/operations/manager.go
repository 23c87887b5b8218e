package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "attributioncli/internal/errors"
	"attributioncli/internal/infrastructure"
)

// Manager runs registered steps in dependency order
type Manager struct {
	registry *Registry
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if tracer == nil {
		tracer, _ = NewOperationTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		tracer:   tracer,
		logger:   logger,
	}
}

// RegisterStep registers a Step with the operation
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// Execute runs every step sequentially. The first failure stops the run and
// marks the remaining steps skipped.
func (m *Manager) Execute(ctx context.Context, state *OperationState) (err error) {
	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		state.Fail(err)
		return err
	}
	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, state.ID, state.InputPath)
	defer func() {
		m.tracer.RecordOperationCompletion(ctx, span, state)
		span.End()
	}()

	state.Start()
	m.logger.InfoContext(ctx, "Operation started",
		slog.String("operation_id", state.ID),
		slog.Int("step_count", len(steps)))

	for i, step := range steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = NewCancellationError(step.ID(), apperrors.NewCancelledError(step.ID(), ctxErr))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			state.Cancel(err)
			m.logger.WarnContext(ctx, "Operation cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			return err
		}

		if err = m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			if ctx.Err() != nil {
				state.Cancel(err)
			} else {
				state.Fail(err)
			}
			m.logger.ErrorContext(ctx, "Operation failed",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return err
		}
	}

	state.Complete()
	m.logger.InfoContext(ctx, "Operation completed",
		slog.String("operation_id", state.ID),
		slog.Duration("duration", state.Duration()))
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())

	ctx, span := m.tracer.TraceStepExecution(ctx, state.ID, step.ID())
	defer span.End()

	stepState.Start()
	start := time.Now()

	if err := step.Validate(state); err != nil {
		if errors.Is(err, ErrSkip) {
			stepState.Skip(err.Error())
			m.tracer.RecordStepCompletion(ctx, span, step.ID(), time.Since(start), StepStatusSkipped, nil)
			m.logger.DebugContext(ctx, "Step skipped",
				slog.String("step", step.ID()),
				slog.String("reason", err.Error()))
			return nil
		}
		opErr := NewExecutionError(step.ID(), err)
		stepState.Fail(opErr)
		m.tracer.RecordStepCompletion(ctx, span, step.ID(), time.Since(start), StepStatusFailed, opErr)
		return opErr
	}

	m.logger.DebugContext(ctx, "Step started", slog.String("step", step.ID()))

	if err := step.Execute(ctx, state); err != nil {
		var opErr *OperationError
		if ctx.Err() != nil {
			opErr = NewCancellationError(step.ID(), err)
		} else {
			opErr = NewExecutionError(step.ID(), err)
		}
		stepState.Fail(opErr)
		m.tracer.RecordStepCompletion(ctx, span, step.ID(), time.Since(start), StepStatusFailed, opErr)
		return opErr
	}

	stepState.Complete()
	infrastructure.SetSpanAttributes(ctx, stepState.SpanAttributes())
	duration := time.Since(start)
	m.tracer.RecordStepCompletion(ctx, span, step.ID(), duration, StepStatusCompleted, nil)
	m.logger.InfoContext(ctx, "Step completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStep(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}
