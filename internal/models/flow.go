package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// HandlerBinding binds a registered handler slug with per-flow settings
type HandlerBinding struct {
	Slug     string                 `json:"slug"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

// FlowStep is one stage of a flow: a pipeline step with concrete handler
// bindings. Fetch and AI steps carry at most one binding; publish and update
// steps may carry several, executed in list order.
type FlowStep struct {
	FlowStepID string           `json:"flow_step_id"`
	Type       StepType         `json:"type"`
	Position   int              `json:"position"`
	Handlers   []HandlerBinding `json:"handlers"`
	Config     map[string]interface{} `json:"config,omitempty"`
}

// Handler returns the first configured binding, for single-handler step types
func (s *FlowStep) Handler() (HandlerBinding, bool) {
	if len(s.Handlers) == 0 {
		return HandlerBinding{}, false
	}
	return s.Handlers[0], true
}

// Flow is a schedulable instantiation of a pipeline with bound handlers.
// Its step list mirrors the pipeline's structure at creation time but can
// diverge in handler binding.
type Flow struct {
	ID         string     `json:"id" badgerhold:"key"`
	PipelineID string     `json:"pipeline_id"`
	Name       string     `json:"name"`
	Steps      []FlowStep `json:"steps"`
	Schedule   string     `json:"schedule,omitempty"` // cron expression; empty = manual only
	Enabled    bool       `json:"enabled"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Validate validates flow structure (handler/type agreement is checked
// against the registry at run/bind time, not here)
func (f *Flow) Validate() error {
	if f.ID == "" {
		return errors.New("flow ID is required")
	}
	if f.PipelineID == "" {
		return errors.New("flow pipeline_id is required")
	}
	if f.Name == "" {
		return errors.New("flow name is required")
	}
	if len(f.Steps) == 0 {
		return errors.New("flow must have at least one step")
	}
	for i, step := range f.Steps {
		if step.FlowStepID == "" {
			return fmt.Errorf("step %d: flow_step_id is required", i)
		}
		if !IsValidStepType(step.Type) {
			return fmt.Errorf("step %d: invalid step type: %s", i, step.Type)
		}
	}
	return nil
}

// OrderedSteps returns the flow steps sorted by position
func (f *Flow) OrderedSteps() []FlowStep {
	steps := make([]FlowStep, len(f.Steps))
	copy(steps, f.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Position < steps[j].Position
	})
	return steps
}

// NewFlowFromPipeline creates a flow mirroring the pipeline's step structure.
// Handler bindings start empty and are filled in by the caller.
func NewFlowFromPipeline(id, name string, pipeline *Pipeline, newStepID func() string) *Flow {
	now := time.Now()
	flow := &Flow{
		ID:         id,
		PipelineID: pipeline.ID,
		Name:       name,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, def := range pipeline.Steps {
		flow.Steps = append(flow.Steps, FlowStep{
			FlowStepID: newStepID(),
			Type:       def.Type,
			Position:   def.Position,
			Config:     def.Config,
		})
	}
	return flow
}
