package handlers

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// memDedup is an in-memory ProcessedItemStorage
type memDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemDedup() *memDedup {
	return &memDedup{seen: make(map[string]bool)}
}

func (d *memDedup) key(flowStepID, sourceType, itemID string) string {
	return flowStepID + "|" + sourceType + "|" + itemID
}

func (d *memDedup) IsProcessed(ctx context.Context, flowStepID, sourceType, itemID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[d.key(flowStepID, sourceType, itemID)], nil
}

func (d *memDedup) MarkProcessed(ctx context.Context, flowStepID, sourceType, itemID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := d.key(flowStepID, sourceType, itemID)
	if d.seen[key] {
		return interfaces.ErrAlreadyProcessed
	}
	d.seen[key] = true
	return nil
}

func (d *memDedup) DeleteByFlowStep(ctx context.Context, flowStepID string) (int, error) {
	return 0, nil
}

// memCredStore holds one static credential per provider; token and state
// operations are unused by handler tests
type memCredStore struct {
	creds map[string]*models.ClientCredential
}

func newMemCredStore() *memCredStore {
	return &memCredStore{creds: make(map[string]*models.ClientCredential)}
}

func (s *memCredStore) SaveCredential(ctx context.Context, cred *models.ClientCredential) error {
	s.creds[cred.Provider] = cred
	return nil
}

func (s *memCredStore) GetCredential(ctx context.Context, provider string) (*models.ClientCredential, error) {
	cred, ok := s.creds[provider]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return cred, nil
}

func (s *memCredStore) SaveToken(ctx context.Context, token *models.OAuthToken) error { return nil }
func (s *memCredStore) GetToken(ctx context.Context, provider string) (*models.OAuthToken, error) {
	return nil, interfaces.ErrNotFound
}
func (s *memCredStore) DeleteToken(ctx context.Context, provider string) error      { return nil }
func (s *memCredStore) SaveState(ctx context.Context, state *models.AuthState) error { return nil }
func (s *memCredStore) ConsumeState(ctx context.Context, state string) (*models.AuthState, error) {
	return nil, interfaces.ErrNotFound
}
