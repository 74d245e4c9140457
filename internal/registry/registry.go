package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// Registry implements interfaces.HandlerRegistry.
// Handlers self-register during bootstrap; the registry is treated as a
// read-only lookup table once job execution begins.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]interfaces.HandlerDescriptor
	logger   arbor.ILogger
}

// New creates an empty handler registry
func New(logger arbor.ILogger) *Registry {
	return &Registry{
		handlers: make(map[string]interfaces.HandlerDescriptor),
		logger:   logger,
	}
}

// Register adds a handler descriptor. Duplicate slugs and descriptors whose
// capability does not match their declared type are rejected.
func (r *Registry) Register(desc interfaces.HandlerDescriptor) error {
	if desc.Slug == "" {
		return fmt.Errorf("handler slug is required")
	}
	if !models.IsValidStepType(desc.Type) {
		return fmt.Errorf("handler %s: invalid type: %s", desc.Slug, desc.Type)
	}

	switch desc.Type {
	case models.StepTypeFetch:
		if desc.Fetch == nil {
			return fmt.Errorf("handler %s: fetch capability is required", desc.Slug)
		}
	case models.StepTypePublish:
		if desc.Publish == nil {
			return fmt.Errorf("handler %s: publish capability is required", desc.Slug)
		}
	case models.StepTypeUpdate:
		if desc.Update == nil {
			return fmt.Errorf("handler %s: update capability is required", desc.Slug)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[desc.Slug]; exists {
		return fmt.Errorf("handler %s: already registered", desc.Slug)
	}
	r.handlers[desc.Slug] = desc

	r.logger.Info().
		Str("slug", desc.Slug).
		Str("type", string(desc.Type)).
		Msg("Handler registered")
	return nil
}

// Resolve looks up a handler by slug. A miss returns false, never an error
// or panic; the requesting step reports the failure upward.
func (r *Registry) Resolve(slug string) (interfaces.HandlerDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.handlers[slug]
	return desc, ok
}

// List returns all registered descriptors sorted by slug
func (r *Registry) List() []interfaces.HandlerDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]interfaces.HandlerDescriptor, 0, len(r.handlers))
	for _, desc := range r.handlers {
		descs = append(descs, desc)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].Slug < descs[j].Slug })
	return descs
}
