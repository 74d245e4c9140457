package engine

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/ternarybob/conduit/internal/registry"
)

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// stubFetchHandler returns a canned result or error
type stubFetchHandler struct {
	result *models.FetchResult
	err    error
	calls  int
	fn     func(req interfaces.FetchRequest) (*models.FetchResult, error)
}

func (h *stubFetchHandler) Fetch(ctx context.Context, req interfaces.FetchRequest) (*models.FetchResult, error) {
	h.calls++
	if h.fn != nil {
		return h.fn(req)
	}
	return h.result, h.err
}

// panicFetchHandler panics on invocation
type panicFetchHandler struct{}

func (h *panicFetchHandler) Fetch(ctx context.Context, req interfaces.FetchRequest) (*models.FetchResult, error) {
	panic("boom")
}

// stubPublishHandler records the entry it received
type stubPublishHandler struct {
	err     error
	panics  bool
	gotReq  interfaces.OutputRequest
	calls   int
	fields  map[string]interface{}
}

func (h *stubPublishHandler) Publish(ctx context.Context, req interfaces.OutputRequest) (models.HandlerResult, error) {
	h.calls++
	h.gotReq = req
	if h.panics {
		panic("publish boom")
	}
	if h.err != nil {
		return models.HandlerResult{}, h.err
	}
	return models.HandlerResult{Success: true, Fields: h.fields}, nil
}

// stubLLM returns a canned chat response
type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubLLM) ProviderName() string { return "stub" }
func (s *stubLLM) Close() error         { return nil }

func newTestRegistry(descs ...interfaces.HandlerDescriptor) interfaces.HandlerRegistry {
	reg := registry.New(testLogger())
	for _, desc := range descs {
		if err := reg.Register(desc); err != nil {
			panic(err)
		}
	}
	return reg
}

// memJobStorage is an in-memory job store
type memJobStorage struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func newMemJobStorage() *memJobStorage {
	return &memJobStorage{jobs: make(map[string]*models.Job)}
}

func (s *memJobStorage) Save(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *memJobStorage) Get(ctx context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return job, nil
}

func (s *memJobStorage) List(ctx context.Context, opts *interfaces.JobListOptions) ([]*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	return out, nil
}

func (s *memJobStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

func (s *memJobStorage) DeleteCompletedBefore(ctx context.Context, cutoffUnix int64) (int, error) {
	return 0, nil
}

// memEngineData is an in-memory engine data store
type memEngineData struct {
	mu   sync.Mutex
	data map[string]*models.EngineData
}

func newMemEngineData() *memEngineData {
	return &memEngineData{data: make(map[string]*models.EngineData)}
}

func (s *memEngineData) Save(ctx context.Context, data *models.EngineData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[data.JobID] = data
	return nil
}

func (s *memEngineData) Get(ctx context.Context, jobID string) (*models.EngineData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[jobID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return data, nil
}

// memStorageManager wires the in-memory stores behind the manager interface;
// stores the orchestrator does not touch are left nil
type memStorageManager struct {
	jobs       *memJobStorage
	engineData *memEngineData
}

func newMemStorageManager() *memStorageManager {
	return &memStorageManager{
		jobs:       newMemJobStorage(),
		engineData: newMemEngineData(),
	}
}

func (m *memStorageManager) PipelineStorage() interfaces.PipelineStorage           { return nil }
func (m *memStorageManager) FlowStorage() interfaces.FlowStorage                   { return nil }
func (m *memStorageManager) JobStorage() interfaces.JobStorage                     { return m.jobs }
func (m *memStorageManager) ProcessedItemStorage() interfaces.ProcessedItemStorage { return nil }
func (m *memStorageManager) CredentialStorage() interfaces.CredentialStorage       { return nil }
func (m *memStorageManager) EngineDataStorage() interfaces.EngineDataStorage       { return m.engineData }
func (m *memStorageManager) Close() error                                          { return nil }

// testFlow builds a flow with the given steps in order
func testFlow(steps ...models.FlowStep) *models.Flow {
	for i := range steps {
		steps[i].Position = i
		if steps[i].FlowStepID == "" {
			steps[i].FlowStepID = "fstep_test_" + string(rune('a'+i))
		}
	}
	return &models.Flow{
		ID:         "flow_test",
		PipelineID: "pipe_test",
		Name:       "test flow",
		Steps:      steps,
		Enabled:    true,
	}
}
