package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/interfaces"
)

// Manager implements interfaces.StorageManager backed by a single BadgerDB
type Manager struct {
	db             *BadgerDB
	logger         arbor.ILogger
	pipelines      interfaces.PipelineStorage
	flows          interfaces.FlowStorage
	jobs           interfaces.JobStorage
	processedItems interfaces.ProcessedItemStorage
	credentials    interfaces.CredentialStorage
	engineData     interfaces.EngineDataStorage
}

// NewManager opens the database and wires all stores
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize badger storage: %w", err)
	}

	return &Manager{
		db:             db,
		logger:         logger,
		pipelines:      NewPipelineStorage(db, logger),
		flows:          NewFlowStorage(db, logger),
		jobs:           NewJobStorage(db, logger),
		processedItems: NewProcessedItemStorage(db, logger),
		credentials:    NewCredentialStorage(db, logger),
		engineData:     NewEngineDataStorage(db, logger),
	}, nil
}

func (m *Manager) PipelineStorage() interfaces.PipelineStorage           { return m.pipelines }
func (m *Manager) FlowStorage() interfaces.FlowStorage                   { return m.flows }
func (m *Manager) JobStorage() interfaces.JobStorage                     { return m.jobs }
func (m *Manager) ProcessedItemStorage() interfaces.ProcessedItemStorage { return m.processedItems }
func (m *Manager) CredentialStorage() interfaces.CredentialStorage       { return m.credentials }
func (m *Manager) EngineDataStorage() interfaces.EngineDataStorage       { return m.engineData }

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
