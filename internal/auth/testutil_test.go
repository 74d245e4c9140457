package auth

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// memCredStore is an in-memory CredentialStorage for provider tests
type memCredStore struct {
	mu     sync.Mutex
	tokens map[string]*models.OAuthToken
	creds  map[string]*models.ClientCredential
	states map[string]*models.AuthState
}

func newMemCredStore() *memCredStore {
	return &memCredStore{
		tokens: make(map[string]*models.OAuthToken),
		creds:  make(map[string]*models.ClientCredential),
		states: make(map[string]*models.AuthState),
	}
}

func (s *memCredStore) SaveToken(ctx context.Context, token *models.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *token
	s.tokens[token.Provider] = &copied
	return nil
}

func (s *memCredStore) GetToken(ctx context.Context, provider string) (*models.OAuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[provider]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *token
	return &copied, nil
}

func (s *memCredStore) DeleteToken(ctx context.Context, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, provider)
	return nil
}

func (s *memCredStore) SaveCredential(ctx context.Context, cred *models.ClientCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cred
	s.creds[cred.Provider] = &copied
	return nil
}

func (s *memCredStore) GetCredential(ctx context.Context, provider string) (*models.ClientCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[provider]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *cred
	return &copied, nil
}

func (s *memCredStore) SaveState(ctx context.Context, state *models.AuthState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *state
	s.states[state.State] = &copied
	return nil
}

// ConsumeState deletes the record before the TTL check so a nonce can never
// be presented twice, expired or not
func (s *memCredStore) ConsumeState(ctx context.Context, state string) (*models.AuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.states[state]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	delete(s.states, state)
	if time.Now().After(record.ExpiresAt) {
		return nil, interfaces.ErrNotFound
	}
	return record, nil
}
