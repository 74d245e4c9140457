package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
)

// AppPasswordProvider implements interfaces.AuthProvider for services using
// a static username/application-password pair (WordPress). No token
// lifecycle: the stored credential is the session.
type AppPasswordProvider struct {
	name   string
	store  interfaces.CredentialStorage
	logger arbor.ILogger
}

// NewAppPasswordProvider creates an app-password provider
func NewAppPasswordProvider(name string, store interfaces.CredentialStorage, logger arbor.ILogger) *AppPasswordProvider {
	return &AppPasswordProvider{name: name, store: store, logger: logger}
}

func (p *AppPasswordProvider) Name() string { return p.name }

func (p *AppPasswordProvider) IsConfigured(ctx context.Context) bool {
	cred, err := p.store.GetCredential(ctx, p.name)
	if err != nil {
		return false
	}
	return cred.Username != "" && cred.Password != ""
}

// BasicAuth returns the stored username/password pair and base URL
func (p *AppPasswordProvider) BasicAuth(ctx context.Context) (username, password, baseURL string, err error) {
	cred, err := p.store.GetCredential(ctx, p.name)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", "", "", fmt.Errorf("%w: no credentials for %s", ErrConfigMissing, p.name)
		}
		return "", "", "", err
	}
	if cred.Username == "" || cred.Password == "" {
		return "", "", "", fmt.Errorf("%w: incomplete credentials for %s", ErrConfigMissing, p.name)
	}
	return cred.Username, cred.Password, cred.BaseURL, nil
}

// AccessToken returns the basic-auth credential in header-ready form
func (p *AppPasswordProvider) AccessToken(ctx context.Context) (string, error) {
	user, pass, _, err := p.BasicAuth(ctx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass)), nil
}
