package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFlow() *Flow {
	return &Flow{
		ID:         "flow_1",
		PipelineID: "pipe_1",
		Name:       "nightly",
		Steps: []FlowStep{
			{FlowStepID: "fs_1", Type: StepTypeFetch, Position: 0},
			{FlowStepID: "fs_2", Type: StepTypePublish, Position: 1},
		},
	}
}

func TestFlowValidate(t *testing.T) {
	require.NoError(t, validFlow().Validate())

	flow := validFlow()
	flow.ID = ""
	assert.Error(t, flow.Validate())

	flow = validFlow()
	flow.PipelineID = ""
	assert.Error(t, flow.Validate())

	flow = validFlow()
	flow.Name = ""
	assert.Error(t, flow.Validate())

	flow = validFlow()
	flow.Steps = nil
	assert.Error(t, flow.Validate())

	flow = validFlow()
	flow.Steps[0].FlowStepID = ""
	assert.Error(t, flow.Validate())

	flow = validFlow()
	flow.Steps[1].Type = "mystery"
	assert.Error(t, flow.Validate())
}

func TestOrderedSteps(t *testing.T) {
	flow := &Flow{
		Steps: []FlowStep{
			{FlowStepID: "fs_c", Position: 2},
			{FlowStepID: "fs_a", Position: 0},
			{FlowStepID: "fs_b", Position: 1},
		},
	}

	ordered := flow.OrderedSteps()
	require.Len(t, ordered, 3)
	assert.Equal(t, "fs_a", ordered[0].FlowStepID)
	assert.Equal(t, "fs_b", ordered[1].FlowStepID)
	assert.Equal(t, "fs_c", ordered[2].FlowStepID)

	// the flow's own slice is untouched
	assert.Equal(t, "fs_c", flow.Steps[0].FlowStepID)
}

func TestFlowStepHandler(t *testing.T) {
	step := FlowStep{}
	_, ok := step.Handler()
	assert.False(t, ok)

	step.Handlers = []HandlerBinding{{Slug: "rss"}, {Slug: "other"}}
	binding, ok := step.Handler()
	require.True(t, ok)
	assert.Equal(t, "rss", binding.Slug)
}

func TestNewFlowFromPipeline(t *testing.T) {
	pipeline := &Pipeline{
		ID:   "pipe_1",
		Name: "news",
		Steps: []StepDefinition{
			{Type: StepTypeFetch, Position: 0},
			{Type: StepTypeAI, Position: 1, Config: map[string]interface{}{"prompt": "rewrite"}},
		},
	}

	counter := 0
	flow := NewFlowFromPipeline("flow_1", "nightly", pipeline, func() string {
		counter++
		return fmt.Sprintf("fs_%d", counter)
	})

	assert.Equal(t, "pipe_1", flow.PipelineID)
	assert.True(t, flow.Enabled)
	require.Len(t, flow.Steps, 2)
	assert.Equal(t, "fs_1", flow.Steps[0].FlowStepID)
	assert.Equal(t, StepTypeAI, flow.Steps[1].Type)
	assert.Equal(t, "rewrite", flow.Steps[1].Config["prompt"])
	// bindings start empty: the caller fills them in
	assert.Empty(t, flow.Steps[0].Handlers)
}
