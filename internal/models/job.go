package models

import (
	"fmt"
	"time"
)

// StepRecord captures one executed step's outcome for inspection/debugging
type StepRecord struct {
	FlowStepID string       `json:"flow_step_id"`
	Type       StepType     `json:"type"`
	Position   int          `json:"position"`
	Entries    []*DataEntry `json:"entries,omitempty"` // data packet snapshot after the step ran
	Outcome    *StepOutcome `json:"outcome,omitempty"` // handler results for publish/update steps
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// Job is one execution instance of a flow.
// Status transitions are monotonic forward; failed/completed jobs retain
// their error detail and partial step data for administrative inspection.
type Job struct {
	ID          string       `json:"id" badgerhold:"key"`
	FlowID      string       `json:"flow_id"`
	PipelineID  string       `json:"pipeline_id"`
	Status      JobStatus    `json:"status"`
	StepData    []StepRecord `json:"step_data,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// NewJob creates a pending job for a flow
func NewJob(id string, flow *Flow) *Job {
	return &Job{
		ID:         id,
		FlowID:     flow.ID,
		PipelineID: flow.PipelineID,
		Status:     JobStatusPending,
		CreatedAt:  time.Now(),
	}
}

// Transition moves the job to a new status, enforcing forward-only movement
func (j *Job) Transition(status JobStatus) error {
	if j.Status.IsTerminal() {
		return fmt.Errorf("job %s is %s and cannot transition to %s", j.ID, j.Status, status)
	}
	now := time.Now()
	switch status {
	case JobStatusProcessing:
		j.StartedAt = &now
	case JobStatusCompleted, JobStatusFailed, JobStatusCompletedNoItems, JobStatusAgentSkipped:
		j.CompletedAt = &now
	}
	j.Status = status
	return nil
}

// SetError records failure detail on the job
func (j *Job) SetError(message string) {
	j.Error = message
}
