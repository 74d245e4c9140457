package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/engine"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// Service runs enabled flows on their cron schedules. One cron entry per
// flow; an overlap guard skips a tick while the previous run for the same
// flow is still executing, so slow sources cannot stack jobs.
type Service struct {
	cron         *cron.Cron
	orchestrator *engine.Orchestrator
	flows        interfaces.FlowStorage
	logger       arbor.ILogger

	mu      sync.Mutex
	entries map[string]cron.EntryID
	running map[string]bool
}

// NewService creates the scheduler
func NewService(orchestrator *engine.Orchestrator, flows interfaces.FlowStorage, logger arbor.ILogger) *Service {
	return &Service{
		cron:         cron.New(),
		orchestrator: orchestrator,
		flows:        flows,
		logger:       logger,
		entries:      make(map[string]cron.EntryID),
		running:      make(map[string]bool),
	}
}

// Start registers all enabled scheduled flows from storage and starts the
// cron loop
func (s *Service) Start() error {
	flows, err := s.flows.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load flows for scheduling: %w", err)
	}

	registered := 0
	for _, flow := range flows {
		if err := s.RegisterFlow(flow); err != nil {
			s.logger.Warn().Err(err).Str("flow_id", flow.ID).Msg("Skipping flow with invalid schedule")
			continue
		}
		if flow.Enabled && flow.Schedule != "" {
			registered++
		}
	}

	s.cron.Start()
	s.logger.Info().Int("scheduled_flows", registered).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for in-flight runs to complete
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RegisterFlow adds or replaces the cron entry for a flow. Disabled or
// unscheduled flows are unregistered instead.
func (s *Service) RegisterFlow(flow *models.Flow) error {
	s.UnregisterFlow(flow.ID)

	if !flow.Enabled || flow.Schedule == "" {
		return nil
	}
	if err := common.ValidateCronSchedule(flow.Schedule); err != nil {
		return err
	}

	flowID := flow.ID
	entryID, err := s.cron.AddFunc(flow.Schedule, func() {
		s.runFlow(flowID)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule flow %s: %w", flow.ID, err)
	}

	s.mu.Lock()
	s.entries[flow.ID] = entryID
	s.mu.Unlock()

	s.logger.Info().
		Str("flow_id", flow.ID).
		Str("schedule", flow.Schedule).
		Msg("Flow scheduled")
	return nil
}

// UnregisterFlow removes the cron entry for a flow if present
func (s *Service) UnregisterFlow(flowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[flowID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, flowID)
	}
}

// runFlow executes one scheduled tick. The flow is re-read from storage so
// edits between ticks take effect without re-registration.
func (s *Service) runFlow(flowID string) {
	if !s.tryAcquire(flowID) {
		s.logger.Warn().Str("flow_id", flowID).Msg("Previous run still in progress, skipping tick")
		return
	}
	defer s.release(flowID)

	ctx := context.Background()
	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		s.logger.Error().Err(err).Str("flow_id", flowID).Msg("Scheduled flow no longer loadable")
		return
	}
	if !flow.Enabled {
		s.logger.Debug().Str("flow_id", flowID).Msg("Flow disabled, skipping tick")
		return
	}

	job, err := s.orchestrator.Run(ctx, flow)
	if err != nil {
		s.logger.Error().Err(err).Str("flow_id", flowID).Msg("Scheduled run failed")
		return
	}
	s.logger.Info().
		Str("flow_id", flowID).
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Msg("Scheduled run finished")
}

func (s *Service) tryAcquire(flowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[flowID] {
		return false
	}
	s.running[flowID] = true
	return true
}

func (s *Service) release(flowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, flowID)
}
