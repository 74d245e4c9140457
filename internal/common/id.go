package common

import (
	"github.com/google/uuid"
)

// NewJobID generates a unique job ID
// Format: job_<uuid>
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewPipelineID generates a unique pipeline ID
func NewPipelineID() string {
	return "pipe_" + uuid.New().String()
}

// NewFlowID generates a unique flow ID
func NewFlowID() string {
	return "flow_" + uuid.New().String()
}

// NewFlowStepID generates a unique flow step ID
func NewFlowStepID() string {
	return "fstep_" + uuid.New().String()
}
