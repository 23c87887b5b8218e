// Package operations runs the attribution pipeline as an ordered set of steps.
//
// Core Components:
//
// Manager: executes registered steps sequentially in dependency order, with
// one span per step. A failed step stops the run and the remaining steps are
// marked skipped.
//
// Step: a single unit of work. Validate may return an error wrapping ErrSkip
// to skip a step that is turned off for this run.
//
// Registry: registration and topological ordering of steps.
//
// OperationState: the run's status, per-step StepState, and the data steps
// hand to each other (rows, model, artifacts).
//
// Pipeline: the concrete preprocess, model, metrics, export, charts and
// persist steps. RunAll returns the map of written artifacts.
package operations
