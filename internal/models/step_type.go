package models

// StepType identifies what kind of work a pipeline step performs
type StepType string

const (
	StepTypeFetch   StepType = "fetch"
	StepTypeAI      StepType = "ai"
	StepTypePublish StepType = "publish"
	StepTypeUpdate  StepType = "update"
)

// IsValidStepType checks if a given StepType is one of the valid constants
func IsValidStepType(t StepType) bool {
	switch t {
	case StepTypeFetch, StepTypeAI, StepTypePublish, StepTypeUpdate:
		return true
	default:
		return false
	}
}

// JobStatus represents the lifecycle state of a job
type JobStatus string

const (
	JobStatusPending          JobStatus = "pending"
	JobStatusProcessing       JobStatus = "processing"
	JobStatusCompleted        JobStatus = "completed"
	JobStatusFailed           JobStatus = "failed"
	JobStatusCompletedNoItems JobStatus = "completed_no_items"
	JobStatusAgentSkipped     JobStatus = "agent_skipped"
)

// IsTerminal reports whether the status is a terminal state.
// Terminal jobs are never resurrected; transitions are monotonic forward.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCompletedNoItems, JobStatusAgentSkipped:
		return true
	default:
		return false
	}
}
