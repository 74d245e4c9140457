package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

type memFlowStorage struct {
	flows map[string]*models.Flow
}

func newMemFlowStorage(flows ...*models.Flow) *memFlowStorage {
	s := &memFlowStorage{flows: make(map[string]*models.Flow)}
	for _, flow := range flows {
		s.flows[flow.ID] = flow
	}
	return s
}

func (s *memFlowStorage) Save(ctx context.Context, flow *models.Flow) error {
	s.flows[flow.ID] = flow
	return nil
}

func (s *memFlowStorage) Get(ctx context.Context, id string) (*models.Flow, error) {
	flow, ok := s.flows[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return flow, nil
}

func (s *memFlowStorage) List(ctx context.Context) ([]*models.Flow, error) {
	out := make([]*models.Flow, 0, len(s.flows))
	for _, flow := range s.flows {
		out = append(out, flow)
	}
	return out, nil
}

func (s *memFlowStorage) ListByPipeline(ctx context.Context, pipelineID string) ([]*models.Flow, error) {
	var out []*models.Flow
	for _, flow := range s.flows {
		if flow.PipelineID == pipelineID {
			out = append(out, flow)
		}
	}
	return out, nil
}

func (s *memFlowStorage) Delete(ctx context.Context, id string) error {
	delete(s.flows, id)
	return nil
}

func newTestService(flows ...*models.Flow) *Service {
	return NewService(nil, newMemFlowStorage(flows...), arbor.NewLogger())
}

func scheduledFlow(id, schedule string) *models.Flow {
	return &models.Flow{
		ID:         id,
		PipelineID: "pipe_1",
		Name:       id,
		Schedule:   schedule,
		Enabled:    true,
		Steps:      []models.FlowStep{{FlowStepID: "fs_1", Type: models.StepTypeFetch}},
	}
}

func TestRegisterFlow_AddsCronEntry(t *testing.T) {
	svc := newTestService()

	require.NoError(t, svc.RegisterFlow(scheduledFlow("flow_1", "*/15 * * * *")))
	assert.Contains(t, svc.entries, "flow_1")
}

func TestRegisterFlow_InvalidScheduleIsRejected(t *testing.T) {
	svc := newTestService()

	err := svc.RegisterFlow(scheduledFlow("flow_1", "every fortnight"))
	assert.Error(t, err)
	assert.NotContains(t, svc.entries, "flow_1")
}

func TestRegisterFlow_DisabledOrUnscheduledFlowsAreSkipped(t *testing.T) {
	svc := newTestService()

	manual := scheduledFlow("flow_manual", "")
	require.NoError(t, svc.RegisterFlow(manual))
	assert.NotContains(t, svc.entries, "flow_manual")

	disabled := scheduledFlow("flow_disabled", "*/15 * * * *")
	disabled.Enabled = false
	require.NoError(t, svc.RegisterFlow(disabled))
	assert.NotContains(t, svc.entries, "flow_disabled")
}

func TestRegisterFlow_ReplacesExistingEntry(t *testing.T) {
	svc := newTestService()

	require.NoError(t, svc.RegisterFlow(scheduledFlow("flow_1", "*/15 * * * *")))
	first := svc.entries["flow_1"]

	require.NoError(t, svc.RegisterFlow(scheduledFlow("flow_1", "0 6 * * *")))
	second := svc.entries["flow_1"]
	assert.NotEqual(t, first, second)
	assert.Len(t, svc.entries, 1)
}

func TestRegisterFlow_DisablingUnregisters(t *testing.T) {
	svc := newTestService()

	flow := scheduledFlow("flow_1", "*/15 * * * *")
	require.NoError(t, svc.RegisterFlow(flow))
	require.Contains(t, svc.entries, "flow_1")

	flow.Enabled = false
	require.NoError(t, svc.RegisterFlow(flow))
	assert.NotContains(t, svc.entries, "flow_1")
}

func TestUnregisterFlow(t *testing.T) {
	svc := newTestService()

	require.NoError(t, svc.RegisterFlow(scheduledFlow("flow_1", "*/15 * * * *")))
	svc.UnregisterFlow("flow_1")
	assert.Empty(t, svc.entries)

	// unregistering an unknown flow is a no-op
	svc.UnregisterFlow("flow_ghost")
}

func TestOverlapGuard(t *testing.T) {
	svc := newTestService()

	require.True(t, svc.tryAcquire("flow_1"))
	// a second tick for the same flow is refused while the first holds the slot
	assert.False(t, svc.tryAcquire("flow_1"))
	// other flows are unaffected
	assert.True(t, svc.tryAcquire("flow_2"))

	svc.release("flow_1")
	assert.True(t, svc.tryAcquire("flow_1"))
}

func TestStart_RegistersEnabledScheduledFlows(t *testing.T) {
	svc := newTestService(
		scheduledFlow("flow_ok", "*/30 * * * *"),
		scheduledFlow("flow_manual", ""),
		scheduledFlow("flow_bad", "gibberish"),
	)
	defer svc.Stop()

	require.NoError(t, svc.Start())
	assert.Contains(t, svc.entries, "flow_ok")
	assert.NotContains(t, svc.entries, "flow_manual")
	assert.NotContains(t, svc.entries, "flow_bad")
}
