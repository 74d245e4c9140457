package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// Orchestrator drives one job through its flow's steps in pipeline order.
// Execution is step-sequential within a job; concurrent jobs each run on
// their own goroutine and share no mutable state beyond the dedup tracker.
type Orchestrator struct {
	registry interfaces.HandlerRegistry
	jobs     interfaces.JobStorage
	logger   arbor.ILogger

	fetchStep  *FetchStep
	aiStep     *AIStep
	outputStep *OutputStep

	persistStepData bool
}

// Options configures orchestrator construction
type Options struct {
	Registry    interfaces.HandlerRegistry
	Storage     interfaces.StorageManager
	LLM         interfaces.LLMService
	StepTimeout time.Duration
	// PersistStepData keeps per-step data packet snapshots on the job record
	PersistStepData bool
	Logger          arbor.ILogger
}

// NewOrchestrator wires the step executors
func NewOrchestrator(opts Options) *Orchestrator {
	timeout := opts.StepTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Orchestrator{
		registry:        opts.Registry,
		jobs:            opts.Storage.JobStorage(),
		logger:          opts.Logger,
		fetchStep:       NewFetchStep(opts.Registry, timeout, opts.Logger),
		aiStep:          NewAIStep(opts.LLM, timeout, opts.Logger),
		outputStep:      NewOutputStep(opts.Registry, opts.Storage.EngineDataStorage(), timeout, opts.Logger),
		persistStepData: opts.PersistStepData,
	}
}

// Run creates a job for the flow and executes every step in position order.
// It blocks until the job reaches a terminal status and returns the job.
// Run never returns a non-nil error without recording it on the job first.
func (o *Orchestrator) Run(ctx context.Context, flow *models.Flow) (*models.Job, error) {
	if err := flow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}

	job := models.NewJob(common.NewJobID(), flow)
	if err := o.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	jobLogger := o.logger.WithCorrelationId(job.ID)
	jobLogger.Info().
		Str("flow_id", flow.ID).
		Str("pipeline_id", flow.PipelineID).
		Int("step_count", len(flow.Steps)).
		Msg("Starting job execution")

	if err := job.Transition(models.JobStatusProcessing); err != nil {
		return job, err
	}
	if err := o.jobs.Save(ctx, job); err != nil {
		jobLogger.Warn().Err(err).Msg("Failed to persist job status")
	}

	var entries []*models.DataEntry

	for _, step := range flow.OrderedSteps() {
		select {
		case <-ctx.Done():
			o.finish(ctx, job, jobLogger, models.JobStatusFailed, "job cancelled: "+ctx.Err().Error())
			return job, ctx.Err()
		default:
		}

		record := models.StepRecord{
			FlowStepID: step.FlowStepID,
			Type:       step.Type,
			Position:   step.Position,
			StartedAt:  time.Now(),
		}

		jobLogger.Info().
			Str("flow_step_id", step.FlowStepID).
			Str("type", string(step.Type)).
			Int("position", step.Position).
			Msg("Executing step")

		var (
			outcome *models.StepOutcome
			err     error
		)
		switch step.Type {
		case models.StepTypeFetch:
			entries, err = o.fetchStep.Execute(ctx, job, step, entries)
		case models.StepTypeAI:
			entries, err = o.aiStep.Execute(ctx, job, step, entries)
		case models.StepTypePublish, models.StepTypeUpdate:
			outcome, err = o.outputStep.Execute(ctx, job, step, entries)
		default:
			err = fmt.Errorf("%w: unknown step type: %s", ErrConfiguration, step.Type)
		}

		record.Duration = time.Since(record.StartedAt)
		record.Outcome = outcome
		if o.persistStepData {
			record.Entries = entries
		}
		if err != nil {
			record.Error = err.Error()
		}
		job.StepData = append(job.StepData, record)

		if err != nil {
			status, detail := o.classify(err)
			o.finish(ctx, job, jobLogger, status, detail)
			if status == models.JobStatusFailed {
				return job, err
			}
			// No-items and agent-skip end the job early without a job error
			return job, nil
		}

		if err := o.jobs.Save(ctx, job); err != nil {
			jobLogger.Warn().Err(err).Msg("Failed to persist step progress")
		}
	}

	o.finish(ctx, job, jobLogger, models.JobStatusCompleted, "")
	return job, nil
}

// classify maps a step error to the job's terminal status and error detail
func (o *Orchestrator) classify(err error) (models.JobStatus, string) {
	switch {
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrContentValidation):
		return models.JobStatusCompletedNoItems, ""
	case errors.Is(err, ErrAgentSkipped):
		reason := strings.TrimSpace(strings.TrimPrefix(err.Error(), ErrAgentSkipped.Error()+":"))
		return models.JobStatusAgentSkipped, reason
	default:
		return models.JobStatusFailed, err.Error()
	}
}

// finish moves the job to a terminal status and persists it. Failed jobs
// retain error detail and partial step data for inspection.
func (o *Orchestrator) finish(ctx context.Context, job *models.Job, jobLogger arbor.ILogger, status models.JobStatus, detail string) {
	if detail != "" {
		job.SetError(detail)
	}
	if err := job.Transition(status); err != nil {
		jobLogger.Warn().Err(err).Msg("Invalid job status transition")
		return
	}
	if err := o.jobs.Save(ctx, job); err != nil {
		jobLogger.Error().Err(err).Msg("Failed to persist terminal job status")
	}

	event := jobLogger.Info()
	if status == models.JobStatusFailed {
		event = jobLogger.Error()
	}
	event.
		Str("status", string(status)).
		Str("error", detail).
		Msg("Job finished")
}
