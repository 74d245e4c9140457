package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ProcessedItemStorage implements the deduplication tracker for Badger.
// MarkProcessed relies on badgerhold's insert-or-fail semantics so that two
// concurrent job runs can never both claim the same item.
type ProcessedItemStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewProcessedItemStorage creates a new ProcessedItemStorage instance
func NewProcessedItemStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ProcessedItemStorage {
	return &ProcessedItemStorage{db: db, logger: logger}
}

func (s *ProcessedItemStorage) IsProcessed(ctx context.Context, flowStepID, sourceType, itemID string) (bool, error) {
	key := models.ProcessedItemKey(flowStepID, sourceType, itemID)
	var record models.ProcessedItem
	err := s.db.Store().Get(key, &record)
	if err == nil {
		return true, nil
	}
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	return false, fmt.Errorf("failed to query processed item: %w", err)
}

func (s *ProcessedItemStorage) MarkProcessed(ctx context.Context, flowStepID, sourceType, itemID string) error {
	record := models.NewProcessedItem(flowStepID, sourceType, itemID)
	if err := s.db.Store().Insert(record.Key, record); err != nil {
		if err == badgerhold.ErrKeyExists {
			return interfaces.ErrAlreadyProcessed
		}
		return fmt.Errorf("failed to mark item processed: %w", err)
	}
	return nil
}

func (s *ProcessedItemStorage) DeleteByFlowStep(ctx context.Context, flowStepID string) (int, error) {
	var records []models.ProcessedItem
	query := badgerhold.Where("FlowStepID").Eq(flowStepID)
	if err := s.db.Store().Find(&records, query); err != nil {
		return 0, fmt.Errorf("failed to find processed items: %w", err)
	}
	deleted := 0
	for i := range records {
		if err := s.db.Store().Delete(records[i].Key, &models.ProcessedItem{}); err != nil {
			s.logger.Warn().Err(err).Str("key", records[i].Key).Msg("Failed to delete processed item")
			continue
		}
		deleted++
	}
	return deleted, nil
}
