package interfaces

import (
	"context"

	"github.com/ternarybob/conduit/internal/models"
)

// FetchRequest carries the context a fetch handler needs to pull one item
type FetchRequest struct {
	JobID      string
	PipelineID string
	FlowID     string
	FlowStepID string
	Settings   map[string]interface{}
}

// FetchHandler pulls at most one new item from an external source per
// invocation (Single Item Execution Model). Implementations query the
// source in its natural order, skip items the dedup tracker reports as
// processed, mark and return the first unprocessed candidate.
type FetchHandler interface {
	Fetch(ctx context.Context, req FetchRequest) (*models.FetchResult, error)
}

// OutputRequest carries everything an output handler needs to deliver the
// latest data entry to its destination
type OutputRequest struct {
	JobID    string
	Entry    *models.DataEntry
	Settings map[string]interface{}
	// Engine carries attribution data captured earlier in the pipeline
	// (source URL, image URL); may be nil
	Engine *models.EngineData
}

// PublishHandler delivers content to a destination. Errors are converted to
// failed HandlerResults at the step boundary; handlers should still populate
// result fields on success (post ID, URL, ...).
type PublishHandler interface {
	Publish(ctx context.Context, req OutputRequest) (models.HandlerResult, error)
}

// UpdateHandler modifies an existing destination record identified by the
// entry's metadata
type UpdateHandler interface {
	Update(ctx context.Context, req OutputRequest) (models.HandlerResult, error)
}

// SettingField describes one configurable handler setting for the API surface
type SettingField struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "string", "int", "bool", "url"
	Required bool   `json:"required"`
	Label    string `json:"label,omitempty"`
}

// HandlerDescriptor is one registry entry. Exactly one of Fetch/Publish/
// Update is non-nil, matching Type.
type HandlerDescriptor struct {
	Slug           string
	Type           models.StepType
	Label          string
	SettingsSchema []SettingField
	AuthProvider   string // credential store key, empty when unauthenticated

	Fetch   FetchHandler
	Publish PublishHandler
	Update  UpdateHandler
}

// HandlerRegistry maps handler slugs to descriptors. Populated once at
// bootstrap by self-registering handler packages; read-only during job
// execution. A miss is an explicit "not found", never a panic.
type HandlerRegistry interface {
	Register(desc HandlerDescriptor) error
	Resolve(slug string) (HandlerDescriptor, bool)
	List() []HandlerDescriptor
}
