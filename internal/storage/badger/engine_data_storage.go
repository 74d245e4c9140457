package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// EngineDataStorage implements the scraper's per-job side channel for Badger
type EngineDataStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewEngineDataStorage creates a new EngineDataStorage instance
func NewEngineDataStorage(db *BadgerDB, logger arbor.ILogger) interfaces.EngineDataStorage {
	return &EngineDataStorage{db: db, logger: logger}
}

func (s *EngineDataStorage) Save(ctx context.Context, data *models.EngineData) error {
	if data.JobID == "" {
		return fmt.Errorf("engine data job ID is required")
	}
	data.UpdatedAt = time.Now()
	if err := s.db.Store().Upsert(data.JobID, data); err != nil {
		return fmt.Errorf("failed to save engine data: %w", err)
	}
	return nil
}

func (s *EngineDataStorage) Get(ctx context.Context, jobID string) (*models.EngineData, error) {
	var data models.EngineData
	if err := s.db.Store().Get(jobID, &data); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get engine data: %w", err)
	}
	return &data, nil
}
