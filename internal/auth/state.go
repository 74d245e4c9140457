package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

// StateManager issues and validates the single-use, time-boxed state nonces
// carried through the OAuth redirect flow.
type StateManager struct {
	store interfaces.CredentialStorage
	ttl   time.Duration
}

// NewStateManager creates a state manager with the given nonce lifetime
func NewStateManager(store interfaces.CredentialStorage, ttl time.Duration) *StateManager {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &StateManager{store: store, ttl: ttl}
}

// Issue creates and persists a new state nonce for a provider
func (m *StateManager) Issue(ctx context.Context, provider string) (string, error) {
	state := &models.AuthState{
		State:     uuid.New().String(),
		Provider:  provider,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.store.SaveState(ctx, state); err != nil {
		return "", fmt.Errorf("failed to persist auth state: %w", err)
	}
	return state.State, nil
}

// Validate consumes the nonce and returns its provider. Unknown, reused or
// expired nonces fail with ErrInvalidState.
func (m *StateManager) Validate(ctx context.Context, state string) (string, error) {
	record, err := m.store.ConsumeState(ctx, state)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", ErrInvalidState
		}
		return "", err
	}
	return record.Provider, nil
}
