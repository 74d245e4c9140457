package models

import "time"

// OAuthToken is a stored credential for one provider.
// Credential storage is site-scoped (single admin identity), not per-user.
type OAuthToken struct {
	Provider     string    `json:"provider" badgerhold:"key"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExpiresWithin reports whether the token expires inside the given window.
// A zero ExpiresAt means the token does not expire.
func (t *OAuthToken) ExpiresWithin(window time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Until(t.ExpiresAt) < window
}

// Expired reports whether the token is already past its expiry
func (t *OAuthToken) Expired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.ExpiresAt)
}

// ClientCredential holds static app credentials for a provider
type ClientCredential struct {
	Provider     string `json:"provider" badgerhold:"key"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	// App-password providers store username/password here instead
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// IsConfigured reports whether the required static credentials are present
func (c *ClientCredential) IsConfigured() bool {
	if c == nil {
		return false
	}
	if c.ClientID != "" && c.ClientSecret != "" {
		return true
	}
	return c.Username != "" && c.Password != ""
}

// AuthState is a single-use, time-boxed nonce for an OAuth callback
type AuthState struct {
	State     string    `json:"state" badgerhold:"key"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
