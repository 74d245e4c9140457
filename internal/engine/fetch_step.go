package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// FetchStep invokes the configured fetch handler and prepends exactly one
// normalized entry to the data packet per successful invocation.
type FetchStep struct {
	registry interfaces.HandlerRegistry
	timeout  time.Duration
	logger   arbor.ILogger
}

// NewFetchStep creates a fetch step bound to the handler registry
func NewFetchStep(registry interfaces.HandlerRegistry, timeout time.Duration, logger arbor.ILogger) *FetchStep {
	return &FetchStep{registry: registry, timeout: timeout, logger: logger}
}

// Execute runs the step's fetch handler. The returned packet is the input
// packet with at most one new entry prepended. ErrNoItems means the source
// had nothing new; the input packet is returned unchanged.
func (s *FetchStep) Execute(ctx context.Context, job *models.Job, step models.FlowStep, entries []*models.DataEntry) ([]*models.DataEntry, error) {
	binding, ok := step.Handler()
	if !ok || binding.Slug == "" {
		return entries, fmt.Errorf("%w: fetch step %s has no handler configured", ErrConfiguration, step.FlowStepID)
	}

	desc, found := s.registry.Resolve(binding.Slug)
	if !found {
		return entries, fmt.Errorf("%w: unknown fetch handler: %s", ErrConfiguration, binding.Slug)
	}
	if desc.Type != models.StepTypeFetch || desc.Fetch == nil {
		return entries, fmt.Errorf("%w: handler %s is not a fetch handler", ErrConfiguration, binding.Slug)
	}

	req := interfaces.FetchRequest{
		JobID:      job.ID,
		PipelineID: job.PipelineID,
		FlowID:     job.FlowID,
		FlowStepID: step.FlowStepID,
		Settings:   binding.Settings,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.invoke(callCtx, desc.Fetch, req)
	if err != nil {
		return entries, err
	}

	item := result.First()
	if item == nil {
		return entries, ErrNoItems
	}
	if item.Title == "" && item.Body == "" {
		// Empty content is "no new data", not a hard failure
		s.logger.Debug().
			Str("handler", binding.Slug).
			Str("flow_step_id", step.FlowStepID).
			Msg("Fetch handler returned empty content")
		return entries, ErrNoItems
	}

	metadata := make(map[string]interface{}, len(item.Metadata)+4)
	for k, v := range item.Metadata {
		metadata[k] = v
	}
	if _, ok := metadata["source_type"]; !ok {
		metadata["source_type"] = binding.Slug
	}
	metadata["flow_id"] = job.FlowID
	metadata["pipeline_id"] = job.PipelineID
	metadata["flow_step_id"] = step.FlowStepID

	entry := &models.DataEntry{
		Type:      "fetch",
		Handler:   binding.Slug,
		Content:   models.EntryContent{Title: item.Title, Body: item.Body},
		Metadata:  metadata,
		Timestamp: time.Now(),
	}

	s.logger.Info().
		Str("handler", binding.Slug).
		Str("flow_step_id", step.FlowStepID).
		Str("title", item.Title).
		Msg("Fetched one new item")

	return models.Prepend(entries, entry), nil
}

// invoke calls the handler with panic isolation so an unexpected fault
// becomes a structured error rather than an unhandled crash
func (s *FetchStep) invoke(ctx context.Context, handler interfaces.FetchHandler, req interfaces.FetchRequest) (result *models.FetchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: fetch handler panicked: %v", ErrHandlerExecution, r)
		}
	}()
	result, err = handler.Fetch(ctx, req)
	if err != nil {
		if classified(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrHandlerExecution, err)
	}
	return result, nil
}
