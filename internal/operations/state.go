package operations

import (
	"sort"
	"sync"
	"time"

	"attributioncli/internal/dataprocessing"
	"attributioncli/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// Artifact keys, one per file a run can produce
const (
	ArtifactMetricsCSV  = "metrics_csv"
	ArtifactUsersCSV    = "users_csv"
	ArtifactCatMixCSV   = "cat_mix_csv"
	ArtifactAcqPNG      = "acq_png"
	ArtifactEngPNG      = "eng_png"
	ArtifactRetPNG      = "ret_png"
	ArtifactWorkbook    = "workbook_xlsx"
	ArtifactDuckDBFile  = "duckdb_file"
	ArtifactDuckDBDir   = "duckdb_dir"
	ArtifactMetricsFile = "metrics_prom"
)

// Artifacts maps artifact keys to the paths written by a run
type Artifacts map[string]string

// Keys returns the artifact keys in sorted order
func (a Artifacts) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OperationState represents the complete state of a operation execution.
// Steps hand their results to later steps through its typed fields.
type OperationState struct {
	mu sync.RWMutex

	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	StartTime time.Time            `json:"start_time"`
	EndTime   *time.Time           `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`
	order []string

	InputPath string                         `json:"input_path"`
	Rows      []domain.RawRow                `json:"-"`
	Stats     dataprocessing.PreprocessStats `json:"stats"`
	Model     *domain.AttributionModel       `json:"-"`
	Orphans   int                            `json:"orphan_events"`

	artifacts Artifacts

	Error error `json:"-"`
}

// NewOperationState creates a new operation state
func NewOperationState(id, inputPath string) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		InputPath: inputPath,
		artifacts: make(Artifacts),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the operation status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStep returns the state of a specific Step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStep registers the state of a Step, keeping first-registration order
func (p *OperationState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Steps[stepID]; !ok {
		p.order = append(p.order, stepID)
	}
	p.Steps[stepID] = state
}

// OrderedSteps returns the step states in execution order
func (p *OperationState) OrderedSteps() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	steps := make([]*StepState, 0, len(p.order))
	for _, id := range p.order {
		steps = append(steps, p.Steps[id])
	}
	return steps
}

// AddArtifact records a written file. Safe for concurrent use.
func (p *OperationState) AddArtifact(key, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artifacts[key] = path
}

// Artifacts returns a copy of the recorded artifacts
func (p *OperationState) Artifacts() Artifacts {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(Artifacts, len(p.artifacts))
	for k, v := range p.artifacts {
		out[k] = v
	}
	return out
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// HasFailures returns true if any Step has failed
func (p *OperationState) HasFailures() bool {
	for _, step := range p.OrderedSteps() {
		if step.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}

// IsComplete returns true if all steps are completed or skipped
func (p *OperationState) IsComplete() bool {
	for _, step := range p.OrderedSteps() {
		status := step.GetStatus()
		if status == StepStatusPending || status == StepStatusActive {
			return false
		}
	}
	return true
}
