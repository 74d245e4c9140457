package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"golang.org/x/oauth2"
)

// DefaultRefreshWindow is the safety margin before expiry at which a token
// is proactively refreshed. Long-lived-token providers use a wider window.
const DefaultRefreshWindow = 5 * time.Minute

// RefreshFunc exchanges a stored token for a fresh one
type RefreshFunc func(ctx context.Context, token *models.OAuthToken) (*models.OAuthToken, error)

// ExchangeFunc converts a short-lived token into a long-lived one
// immediately after the authorization-code exchange (Threads-style)
type ExchangeFunc func(ctx context.Context, token *models.OAuthToken) (*models.OAuthToken, error)

// OAuth2Provider implements interfaces.OAuthProvider on golang.org/x/oauth2.
// Credentials and tokens live in the injected CredentialStorage, site-scoped
// to a single admin identity.
type OAuth2Provider struct {
	name          string
	endpoint      oauth2.Endpoint
	scopes        []string
	redirectURL   string
	refreshWindow time.Duration
	store         interfaces.CredentialStorage
	logger        arbor.ILogger

	// refresher overrides the default oauth2 refresh; used by long-lived
	// providers whose refresh is a plain token exchange, and by tests
	refresher RefreshFunc
	// longLivedExchange, when set, runs after the code exchange and only the
	// returned long-lived credential is persisted
	longLivedExchange ExchangeFunc
}

// OAuth2Option customizes provider construction
type OAuth2Option func(*OAuth2Provider)

// WithRefreshWindow overrides the expiry safety window
func WithRefreshWindow(window time.Duration) OAuth2Option {
	return func(p *OAuth2Provider) { p.refreshWindow = window }
}

// WithRefresher overrides the token refresh implementation
func WithRefresher(fn RefreshFunc) OAuth2Option {
	return func(p *OAuth2Provider) { p.refresher = fn }
}

// WithLongLivedExchange enables the short-lived to long-lived token swap
func WithLongLivedExchange(fn ExchangeFunc) OAuth2Option {
	return func(p *OAuth2Provider) { p.longLivedExchange = fn }
}

// NewOAuth2Provider creates a provider for one integration
func NewOAuth2Provider(name string, endpoint oauth2.Endpoint, scopes []string, redirectURL string, store interfaces.CredentialStorage, logger arbor.ILogger, opts ...OAuth2Option) *OAuth2Provider {
	p := &OAuth2Provider{
		name:          name,
		endpoint:      endpoint,
		scopes:        scopes,
		redirectURL:   redirectURL,
		refreshWindow: DefaultRefreshWindow,
		store:         store,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the credential store key for this provider
func (p *OAuth2Provider) Name() string { return p.name }

// IsConfigured reports whether client id/secret are stored
func (p *OAuth2Provider) IsConfigured(ctx context.Context) bool {
	cred, err := p.store.GetCredential(ctx, p.name)
	if err != nil {
		return false
	}
	return cred.IsConfigured()
}

// oauthConfig builds the x/oauth2 config from stored client credentials
func (p *OAuth2Provider) oauthConfig(ctx context.Context) (*oauth2.Config, error) {
	cred, err := p.store.GetCredential(ctx, p.name)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("%w: no client credentials for %s", ErrConfigMissing, p.name)
		}
		return nil, err
	}
	if !cred.IsConfigured() {
		return nil, fmt.Errorf("%w: incomplete client credentials for %s", ErrConfigMissing, p.name)
	}
	return &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     p.endpoint,
		RedirectURL:  p.redirectURL,
		Scopes:       p.scopes,
	}, nil
}

// AuthURL builds the provider authorization URL carrying the state nonce
func (p *OAuth2Provider) AuthURL(ctx context.Context, state string) (string, error) {
	conf, err := p.oauthConfig(ctx)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// HandleCallback exchanges the authorization code and persists the token.
// Long-lived providers swap the short-lived token first and persist only the
// long-lived credential.
func (p *OAuth2Provider) HandleCallback(ctx context.Context, code string) error {
	conf, err := p.oauthConfig(ctx)
	if err != nil {
		return err
	}

	exchanged, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: code exchange failed for %s: %v", ErrAuthenticationFailed, p.name, err)
	}

	token := &models.OAuthToken{
		Provider:     p.name,
		AccessToken:  exchanged.AccessToken,
		RefreshToken: exchanged.RefreshToken,
		TokenType:    exchanged.TokenType,
		ExpiresAt:    exchanged.Expiry,
	}

	if p.longLivedExchange != nil {
		longLived, err := p.longLivedExchange(ctx, token)
		if err != nil {
			return fmt.Errorf("%w: long-lived token exchange failed for %s: %v", ErrAuthenticationFailed, p.name, err)
		}
		token = longLived
		token.Provider = p.name
	}

	if err := p.store.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to persist token for %s: %w", p.name, err)
	}

	p.logger.Info().
		Str("provider", p.name).
		Str("expires_at", token.ExpiresAt.Format(time.RFC3339)).
		Msg("OAuth token stored")
	return nil
}

// AccessToken returns a valid access token. A token inside the refresh
// window is refreshed proactively; a refresh failure on a still-valid token
// falls back to the current token rather than failing the caller.
func (p *OAuth2Provider) AccessToken(ctx context.Context) (string, error) {
	stored, err := p.store.GetToken(ctx, p.name)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return "", fmt.Errorf("%w: no stored token for %s", ErrConfigMissing, p.name)
		}
		return "", err
	}

	if !stored.ExpiresWithin(p.refreshWindow) {
		return stored.AccessToken, nil
	}

	refreshed, err := p.refresh(ctx, stored)
	if err != nil {
		if stored.Expired() {
			return "", fmt.Errorf("%w: refresh failed for expired %s token: %v", ErrAuthenticationFailed, p.name, err)
		}
		p.logger.Warn().
			Err(err).
			Str("provider", p.name).
			Str("expires_at", stored.ExpiresAt.Format(time.RFC3339)).
			Msg("Token refresh failed, returning current token")
		return stored.AccessToken, nil
	}

	if err := p.store.SaveToken(ctx, refreshed); err != nil {
		p.logger.Warn().Err(err).Str("provider", p.name).Msg("Failed to persist refreshed token")
	}
	return refreshed.AccessToken, nil
}

// refresh exchanges the stored token for a fresh one
func (p *OAuth2Provider) refresh(ctx context.Context, stored *models.OAuthToken) (*models.OAuthToken, error) {
	if p.refresher != nil {
		refreshed, err := p.refresher(ctx, stored)
		if err != nil {
			return nil, err
		}
		refreshed.Provider = p.name
		return refreshed, nil
	}

	if stored.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token stored for %s", p.name)
	}

	conf, err := p.oauthConfig(ctx)
	if err != nil {
		return nil, err
	}

	source := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute), // force the source to refresh
	})
	fresh, err := source.Token()
	if err != nil {
		return nil, err
	}

	refreshed := &models.OAuthToken{
		Provider:     p.name,
		AccessToken:  fresh.AccessToken,
		RefreshToken: fresh.RefreshToken,
		TokenType:    fresh.TokenType,
		ExpiresAt:    fresh.Expiry,
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = stored.RefreshToken
	}
	return refreshed, nil
}
