package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// OutputStep runs the publish and update step types. Each configured handler
// is invoked independently against the latest data entry; one handler's
// failure never aborts its siblings, and overall success requires at least
// one successful handler.
type OutputStep struct {
	registry   interfaces.HandlerRegistry
	engineData interfaces.EngineDataStorage
	timeout    time.Duration
	logger     arbor.ILogger
}

// NewOutputStep creates an output step bound to the handler registry
func NewOutputStep(registry interfaces.HandlerRegistry, engineData interfaces.EngineDataStorage, timeout time.Duration, logger arbor.ILogger) *OutputStep {
	return &OutputStep{registry: registry, engineData: engineData, timeout: timeout, logger: logger}
}

// Execute runs every configured handler in list order and aggregates their
// results. The step itself fails only for configuration errors or when all
// handlers fail.
func (s *OutputStep) Execute(ctx context.Context, job *models.Job, step models.FlowStep, entries []*models.DataEntry) (*models.StepOutcome, error) {
	if len(step.Handlers) == 0 {
		return nil, fmt.Errorf("%w: %s step %s has no handlers configured", ErrConfiguration, step.Type, step.FlowStepID)
	}

	entry := models.Latest(entries)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s step %s has no data entry to consume", ErrContentValidation, step.Type, step.FlowStepID)
	}

	// Attribution captured earlier in the pipeline; absent for non-scraper jobs
	var engine *models.EngineData
	if s.engineData != nil {
		if data, err := s.engineData.Get(ctx, job.ID); err == nil {
			engine = data
		}
	}

	outcome := &models.StepOutcome{
		Results: make(map[string]models.HandlerResult, len(step.Handlers)),
	}

	for _, binding := range step.Handlers {
		result := s.runHandler(ctx, job, step, binding, entry, engine)
		outcome.Results[binding.Slug] = result
		if result.Success {
			outcome.Successful = append(outcome.Successful, binding.Slug)
		} else {
			outcome.Failed = append(outcome.Failed, binding.Slug)
			s.logger.Warn().
				Str("handler", binding.Slug).
				Str("flow_step_id", step.FlowStepID).
				Str("error", result.Error).
				Msg("Output handler failed")
		}
	}

	if !outcome.OverallSuccess() {
		return outcome, fmt.Errorf("%w: all %d %s handlers failed", ErrHandlerExecution, len(step.Handlers), step.Type)
	}
	return outcome, nil
}

// runHandler invokes one handler with timeout and panic isolation, converting
// any fault into a failed HandlerResult
func (s *OutputStep) runHandler(ctx context.Context, job *models.Job, step models.FlowStep, binding models.HandlerBinding, entry *models.DataEntry, engine *models.EngineData) (result models.HandlerResult) {
	result = models.HandlerResult{Slug: binding.Slug}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("handler panicked: %v", r)
		}
	}()

	desc, found := s.registry.Resolve(binding.Slug)
	if !found {
		result.Error = fmt.Sprintf("unknown handler: %s", binding.Slug)
		return result
	}
	if desc.Type != step.Type {
		result.Error = fmt.Sprintf("handler %s is registered as %s, not %s", binding.Slug, desc.Type, step.Type)
		return result
	}

	req := interfaces.OutputRequest{
		JobID:    job.ID,
		Entry:    entry,
		Settings: binding.Settings,
		Engine:   engine,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		handlerResult models.HandlerResult
		err           error
	)
	switch step.Type {
	case models.StepTypePublish:
		if desc.Publish == nil {
			result.Error = fmt.Sprintf("handler %s has no publish capability", binding.Slug)
			return result
		}
		handlerResult, err = desc.Publish.Publish(callCtx, req)
	case models.StepTypeUpdate:
		if desc.Update == nil {
			result.Error = fmt.Sprintf("handler %s has no update capability", binding.Slug)
			return result
		}
		handlerResult, err = desc.Update.Update(callCtx, req)
	default:
		result.Error = fmt.Sprintf("step type %s is not an output step", step.Type)
		return result
	}

	if err != nil {
		result.Success = false
		if errors.Is(err, ErrAuthentication) {
			result.Error = fmt.Sprintf("authentication failed: %v", err)
		} else {
			result.Error = err.Error()
		}
		return result
	}

	handlerResult.Slug = binding.Slug
	return handlerResult
}
