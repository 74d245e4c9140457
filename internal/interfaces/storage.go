package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/conduit/internal/models"
)

// ErrNotFound is returned by storage lookups when no record exists
var ErrNotFound = errors.New("not found")

// ErrAlreadyProcessed is returned by MarkProcessed when the composite key
// already exists. Callers use it as the losing side of an atomic
// check-and-mark between concurrent job runs.
var ErrAlreadyProcessed = errors.New("item already processed")

// PipelineStorage persists pipeline templates
type PipelineStorage interface {
	Save(ctx context.Context, pipeline *models.Pipeline) error
	Get(ctx context.Context, id string) (*models.Pipeline, error)
	List(ctx context.Context) ([]*models.Pipeline, error)
	Delete(ctx context.Context, id string) error
}

// FlowStorage persists flow instantiations
type FlowStorage interface {
	Save(ctx context.Context, flow *models.Flow) error
	Get(ctx context.Context, id string) (*models.Flow, error)
	List(ctx context.Context) ([]*models.Flow, error)
	ListByPipeline(ctx context.Context, pipelineID string) ([]*models.Flow, error)
	Delete(ctx context.Context, id string) error
}

// JobListOptions filters job listing
type JobListOptions struct {
	FlowID string
	Status models.JobStatus
	Limit  int
	Offset int
}

// JobStorage persists job execution records
type JobStorage interface {
	Save(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, opts *JobListOptions) ([]*models.Job, error)
	Delete(ctx context.Context, id string) error
	// DeleteCompletedBefore removes terminal jobs older than the cutoff,
	// returning the number deleted
	DeleteCompletedBefore(ctx context.Context, cutoffUnix int64) (int, error)
}

// ProcessedItemStorage is the deduplication tracker: a persistent set of
// already-handled source items keyed per (flow_step_id, source_type)
type ProcessedItemStorage interface {
	IsProcessed(ctx context.Context, flowStepID, sourceType, itemID string) (bool, error)
	// MarkProcessed inserts the record, returning ErrAlreadyProcessed if it
	// exists. Insert-or-fail, not read-then-write.
	MarkProcessed(ctx context.Context, flowStepID, sourceType, itemID string) error
	DeleteByFlowStep(ctx context.Context, flowStepID string) (int, error)
}

// CredentialStorage is the injected secret store for provider credentials
// and tokens (site-scoped single identity)
type CredentialStorage interface {
	SaveToken(ctx context.Context, token *models.OAuthToken) error
	GetToken(ctx context.Context, provider string) (*models.OAuthToken, error)
	DeleteToken(ctx context.Context, provider string) error
	SaveCredential(ctx context.Context, cred *models.ClientCredential) error
	GetCredential(ctx context.Context, provider string) (*models.ClientCredential, error)
	SaveState(ctx context.Context, state *models.AuthState) error
	// ConsumeState retrieves and deletes a state nonce in one call;
	// expired or unknown states return ErrNotFound
	ConsumeState(ctx context.Context, state string) (*models.AuthState, error)
}

// EngineDataStorage is the scraper's per-job side channel
type EngineDataStorage interface {
	Save(ctx context.Context, data *models.EngineData) error
	Get(ctx context.Context, jobID string) (*models.EngineData, error)
}

// StorageManager aggregates all stores behind one lifecycle
type StorageManager interface {
	PipelineStorage() PipelineStorage
	FlowStorage() FlowStorage
	JobStorage() JobStorage
	ProcessedItemStorage() ProcessedItemStorage
	CredentialStorage() CredentialStorage
	EngineDataStorage() EngineDataStorage
	Close() error
}
