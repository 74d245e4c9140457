package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CredentialStorage implements interfaces.CredentialStorage for Badger.
// One token and one client credential per provider (site-scoped identity).
type CredentialStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCredentialStorage creates a new CredentialStorage instance
func NewCredentialStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CredentialStorage {
	return &CredentialStorage{db: db, logger: logger}
}

func (s *CredentialStorage) SaveToken(ctx context.Context, token *models.OAuthToken) error {
	if token.Provider == "" {
		return fmt.Errorf("token provider is required")
	}
	token.UpdatedAt = time.Now()
	if err := s.db.Store().Upsert("token:"+token.Provider, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *CredentialStorage) GetToken(ctx context.Context, provider string) (*models.OAuthToken, error) {
	var token models.OAuthToken
	if err := s.db.Store().Get("token:"+provider, &token); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

func (s *CredentialStorage) DeleteToken(ctx context.Context, provider string) error {
	if err := s.db.Store().Delete("token:"+provider, &models.OAuthToken{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (s *CredentialStorage) SaveCredential(ctx context.Context, cred *models.ClientCredential) error {
	if cred.Provider == "" {
		return fmt.Errorf("credential provider is required")
	}
	if err := s.db.Store().Upsert("cred:"+cred.Provider, cred); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *CredentialStorage) GetCredential(ctx context.Context, provider string) (*models.ClientCredential, error) {
	var cred models.ClientCredential
	if err := s.db.Store().Get("cred:"+provider, &cred); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

func (s *CredentialStorage) SaveState(ctx context.Context, state *models.AuthState) error {
	if state.State == "" {
		return fmt.Errorf("state nonce is required")
	}
	if err := s.db.Store().Upsert("state:"+state.State, state); err != nil {
		return fmt.Errorf("failed to save auth state: %w", err)
	}
	return nil
}

func (s *CredentialStorage) ConsumeState(ctx context.Context, state string) (*models.AuthState, error) {
	var record models.AuthState
	if err := s.db.Store().Get("state:"+state, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auth state: %w", err)
	}

	// Single-use: delete before returning
	if err := s.db.Store().Delete("state:"+state, &models.AuthState{}); err != nil && err != badgerhold.ErrNotFound {
		return nil, fmt.Errorf("failed to consume auth state: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, interfaces.ErrNotFound
	}
	return &record, nil
}
