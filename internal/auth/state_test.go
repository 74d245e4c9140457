package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateManager_IssueAndValidate(t *testing.T) {
	manager := NewStateManager(newMemCredStore(), 5*time.Minute)

	state, err := manager.Issue(context.Background(), "threads")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	provider, err := manager.Validate(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "threads", provider)
}

func TestStateManager_NonceIsSingleUse(t *testing.T) {
	manager := NewStateManager(newMemCredStore(), 5*time.Minute)

	state, err := manager.Issue(context.Background(), "threads")
	require.NoError(t, err)

	_, err = manager.Validate(context.Background(), state)
	require.NoError(t, err)

	_, err = manager.Validate(context.Background(), state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateManager_UnknownNonceIsInvalid(t *testing.T) {
	manager := NewStateManager(newMemCredStore(), 5*time.Minute)

	_, err := manager.Validate(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateManager_ExpiredNonceIsInvalid(t *testing.T) {
	store := newMemCredStore()
	manager := NewStateManager(store, time.Minute)
	state, err := manager.Issue(context.Background(), "threads")
	require.NoError(t, err)

	store.mu.Lock()
	record := store.states[state]
	record.ExpiresAt = time.Now().Add(-time.Second)
	store.mu.Unlock()

	_, err = manager.Validate(context.Background(), state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateManager_DistinctNonces(t *testing.T) {
	manager := NewStateManager(newMemCredStore(), time.Minute)

	a, err := manager.Issue(context.Background(), "threads")
	require.NoError(t, err)
	b, err := manager.Issue(context.Background(), "threads")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
