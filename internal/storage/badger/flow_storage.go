package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// FlowStorage implements interfaces.FlowStorage for Badger
type FlowStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFlowStorage creates a new FlowStorage instance
func NewFlowStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FlowStorage {
	return &FlowStorage{db: db, logger: logger}
}

func (s *FlowStorage) Save(ctx context.Context, flow *models.Flow) error {
	if flow.ID == "" {
		return fmt.Errorf("flow ID is required")
	}
	if err := s.db.Store().Upsert(flow.ID, flow); err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}
	return nil
}

func (s *FlowStorage) Get(ctx context.Context, id string) (*models.Flow, error) {
	var flow models.Flow
	if err := s.db.Store().Get(id, &flow); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flow: %w", err)
	}
	return &flow, nil
}

func (s *FlowStorage) List(ctx context.Context) ([]*models.Flow, error) {
	var flows []models.Flow
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if err := s.db.Store().Find(&flows, query); err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	result := make([]*models.Flow, len(flows))
	for i := range flows {
		result[i] = &flows[i]
	}
	return result, nil
}

func (s *FlowStorage) ListByPipeline(ctx context.Context, pipelineID string) ([]*models.Flow, error) {
	var flows []models.Flow
	query := badgerhold.Where("PipelineID").Eq(pipelineID)
	if err := s.db.Store().Find(&flows, query); err != nil {
		return nil, fmt.Errorf("failed to list flows by pipeline: %w", err)
	}
	result := make([]*models.Flow, len(flows))
	for i := range flows {
		result[i] = &flows[i]
	}
	return result, nil
}

func (s *FlowStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Flow{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}
