package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

func newTestOrchestrator(storage interfaces.StorageManager, registry interfaces.HandlerRegistry, llm interfaces.LLMService) *Orchestrator {
	return NewOrchestrator(Options{
		Registry:        registry,
		Storage:         storage,
		LLM:             llm,
		StepTimeout:     time.Second,
		PersistStepData: true,
		Logger:          testLogger(),
	})
}

func TestOrchestrator_FetchPublishCompletes(t *testing.T) {
	fetch := &stubFetchHandler{
		result: &models.FetchResult{Item: &models.FetchItem{Title: "item", Body: "body"}},
	}
	publish := &stubPublishHandler{fields: map[string]interface{}{"post_id": 7}}

	storage := newMemStorageManager()
	orch := newTestOrchestrator(storage, newTestRegistry(
		fetchDescriptor("src", fetch),
		publishDescriptor("dst", publish),
	), nil)

	flow := testFlow(fetchFlowStep("src"), publishFlowStep("dst"))
	job, err := orch.Run(context.Background(), flow)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)
	require.Len(t, job.StepData, 2)
	assert.Equal(t, models.StepTypeFetch, job.StepData[0].Type)
	assert.Equal(t, models.StepTypePublish, job.StepData[1].Type)
	require.NotNil(t, job.StepData[1].Outcome)
	assert.True(t, job.StepData[1].Outcome.OverallSuccess())

	// the publish handler saw the fetched entry
	assert.Equal(t, "item", publish.gotReq.Entry.Content.Title)

	// the terminal job state was persisted
	stored, err := storage.jobs.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, stored.Status)
}

func TestOrchestrator_NoItemsEndsEarlyWithoutError(t *testing.T) {
	fetch := &stubFetchHandler{result: &models.FetchResult{}}
	publish := &stubPublishHandler{}

	orch := newTestOrchestrator(newMemStorageManager(), newTestRegistry(
		fetchDescriptor("src", fetch),
		publishDescriptor("dst", publish),
	), nil)

	flow := testFlow(fetchFlowStep("src"), publishFlowStep("dst"))
	job, err := orch.Run(context.Background(), flow)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusCompletedNoItems, job.Status)
	assert.Empty(t, job.Error)
	// the publish step never ran
	assert.Equal(t, 0, publish.calls)
	assert.Len(t, job.StepData, 1)
}

func TestOrchestrator_AgentSkipRecordsReason(t *testing.T) {
	fetch := &stubFetchHandler{
		result: &models.FetchResult{Item: &models.FetchItem{Title: "item", Body: "body"}},
	}
	publish := &stubPublishHandler{}
	llm := &stubLLM{response: "SKIP: not newsworthy"}

	orch := newTestOrchestrator(newMemStorageManager(), newTestRegistry(
		fetchDescriptor("src", fetch),
		publishDescriptor("dst", publish),
	), llm)

	flow := testFlow(fetchFlowStep("src"), aiFlowStep(nil), publishFlowStep("dst"))
	job, err := orch.Run(context.Background(), flow)
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusAgentSkipped, job.Status)
	assert.Contains(t, job.Error, "not newsworthy")
	assert.Equal(t, 0, publish.calls)
}

func TestOrchestrator_AllOutputFailuresFailTheJob(t *testing.T) {
	fetch := &stubFetchHandler{
		result: &models.FetchResult{Item: &models.FetchItem{Title: "item", Body: "body"}},
	}
	publish := &stubPublishHandler{err: errors.New("endpoint down")}

	orch := newTestOrchestrator(newMemStorageManager(), newTestRegistry(
		fetchDescriptor("src", fetch),
		publishDescriptor("dst", publish),
	), nil)

	flow := testFlow(fetchFlowStep("src"), publishFlowStep("dst"))
	job, err := orch.Run(context.Background(), flow)
	require.Error(t, err)

	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.NotEmpty(t, job.Error)
	// partial step data survives for inspection
	assert.Len(t, job.StepData, 2)
}

func TestOrchestrator_InvalidFlowIsRejected(t *testing.T) {
	orch := newTestOrchestrator(newMemStorageManager(), newTestRegistry(), nil)

	_, err := orch.Run(context.Background(), &models.Flow{ID: "flow_x"})
	assert.Error(t, err)
}

func TestOrchestrator_StepsRunInPositionOrder(t *testing.T) {
	var order []string
	fetch := &stubFetchHandler{fn: func(req interfaces.FetchRequest) (*models.FetchResult, error) {
		order = append(order, "fetch")
		return &models.FetchResult{Item: &models.FetchItem{Title: "t", Body: "b"}}, nil
	}}
	publish := &stubPublishHandler{}

	orch := newTestOrchestrator(newMemStorageManager(), newTestRegistry(
		fetchDescriptor("src", fetch),
		publishDescriptor("dst", publish),
	), nil)

	// declare steps out of order; positions must win
	publishStep := publishFlowStep("dst")
	publishStep.Position = 1
	fetchStep := fetchFlowStep("src")
	fetchStep.Position = 0
	flow := &models.Flow{
		ID:         "flow_test",
		PipelineID: "pipe_test",
		Name:       "ordered",
		Steps:      []models.FlowStep{publishStep, fetchStep},
		Enabled:    true,
	}

	job, err := orch.Run(context.Background(), flow)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, []string{"fetch"}, order)
	assert.Equal(t, 1, publish.calls)
}
