package models

import (
	"fmt"
	"time"
)

// ProcessedItem records that a source item has already been handled for a
// given flow step. Existence implies "already processed"; records are never
// mutated and are deleted only by administrative cleanup.
//
// Dedup scope is per-(flow_step_id, source_type): two flows fetching the
// same source track their progress independently.
type ProcessedItem struct {
	Key        string    `json:"key" badgerhold:"key"` // composite key, see ProcessedItemKey
	FlowStepID string    `json:"flow_step_id"`
	SourceType string    `json:"source_type"`
	ItemID     string    `json:"item_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProcessedItemKey builds the composite storage key.
// Badgerhold insert-or-fail on this key gives atomic check-and-mark across
// concurrently running jobs.
func ProcessedItemKey(flowStepID, sourceType, itemID string) string {
	return fmt.Sprintf("%s|%s|%s", flowStepID, sourceType, itemID)
}

// NewProcessedItem creates a record for the composite identity
func NewProcessedItem(flowStepID, sourceType, itemID string) *ProcessedItem {
	return &ProcessedItem{
		Key:        ProcessedItemKey(flowStepID, sourceType, itemID),
		FlowStepID: flowStepID,
		SourceType: sourceType,
		ItemID:     itemID,
		CreatedAt:  time.Now(),
	}
}
