package models

import (
	"errors"
	"fmt"
	"time"
)

// StepDefinition is one stage in a pipeline template.
// Config holds optional static configuration shared by every flow
// instantiated from the pipeline.
type StepDefinition struct {
	Type     StepType               `json:"type"`
	Position int                    `json:"position"`
	Config   map[string]interface{} `json:"config,omitempty"`
}

// Pipeline is a reusable template of ordered step definitions.
// Flows reference a pipeline and bind concrete handlers per step.
type Pipeline struct {
	ID        string           `json:"id" badgerhold:"key"`
	Name      string           `json:"name"`
	Steps     []StepDefinition `json:"steps"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Validate validates the pipeline template
func (p *Pipeline) Validate() error {
	if p.ID == "" {
		return errors.New("pipeline ID is required")
	}
	if p.Name == "" {
		return errors.New("pipeline name is required")
	}
	if len(p.Steps) == 0 {
		return errors.New("pipeline must have at least one step")
	}

	seen := make(map[int]bool, len(p.Steps))
	for i, step := range p.Steps {
		if !IsValidStepType(step.Type) {
			return fmt.Errorf("step %d: invalid step type: %s", i, step.Type)
		}
		if seen[step.Position] {
			return fmt.Errorf("step %d: duplicate position %d", i, step.Position)
		}
		seen[step.Position] = true
	}
	return nil
}
