package interfaces

import "github.com/ternarybob/conduit/internal/models"

// SchedulerService drives scheduled flow execution
type SchedulerService interface {
	Start() error
	Stop()
	// RegisterFlow adds or replaces the cron entry for a flow; disabled or
	// unscheduled flows are unregistered
	RegisterFlow(flow *models.Flow) error
	UnregisterFlow(flowID string)
}
