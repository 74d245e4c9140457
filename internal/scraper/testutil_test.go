package scraper

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// memDedup is an in-memory ProcessedItemStorage
type memDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemDedup() *memDedup {
	return &memDedup{seen: make(map[string]bool)}
}

func dedupKey(flowStepID, sourceType, itemID string) string {
	return flowStepID + "|" + sourceType + "|" + itemID
}

func (d *memDedup) IsProcessed(ctx context.Context, flowStepID, sourceType, itemID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[dedupKey(flowStepID, sourceType, itemID)], nil
}

func (d *memDedup) MarkProcessed(ctx context.Context, flowStepID, sourceType, itemID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := dedupKey(flowStepID, sourceType, itemID)
	if d.seen[key] {
		return interfaces.ErrAlreadyProcessed
	}
	d.seen[key] = true
	return nil
}

func (d *memDedup) DeleteByFlowStep(ctx context.Context, flowStepID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for key := range d.seen {
		if len(key) > len(flowStepID) && key[:len(flowStepID)+1] == flowStepID+"|" {
			delete(d.seen, key)
			count++
		}
	}
	return count, nil
}

// memEngineData is an in-memory EngineDataStorage
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
