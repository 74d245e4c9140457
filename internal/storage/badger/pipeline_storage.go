package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// PipelineStorage implements interfaces.PipelineStorage for Badger
type PipelineStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPipelineStorage creates a new PipelineStorage instance
func NewPipelineStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PipelineStorage {
	return &PipelineStorage{db: db, logger: logger}
}

func (s *PipelineStorage) Save(ctx context.Context, pipeline *models.Pipeline) error {
	if pipeline.ID == "" {
		return fmt.Errorf("pipeline ID is required")
	}
	if err := s.db.Store().Upsert(pipeline.ID, pipeline); err != nil {
		return fmt.Errorf("failed to save pipeline: %w", err)
	}
	return nil
}

func (s *PipelineStorage) Get(ctx context.Context, id string) (*models.Pipeline, error) {
	var pipeline models.Pipeline
	if err := s.db.Store().Get(id, &pipeline); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}
	return &pipeline, nil
}

func (s *PipelineStorage) List(ctx context.Context) ([]*models.Pipeline, error) {
	var pipelines []models.Pipeline
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if err := s.db.Store().Find(&pipelines, query); err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	result := make([]*models.Pipeline, len(pipelines))
	for i := range pipelines {
		result[i] = &pipelines[i]
	}
	return result, nil
}

func (s *PipelineStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Pipeline{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to delete pipeline: %w", err)
	}
	return nil
}
