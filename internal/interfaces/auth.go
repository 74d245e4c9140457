package interfaces

import "context"

// AuthProvider manages credentials for one integration
type AuthProvider interface {
	// Name is the credential store key for this provider
	Name() string
	// IsConfigured reports whether required static credentials are present
	IsConfigured(ctx context.Context) bool
	// AccessToken returns a valid access token, refreshing proactively when
	// the stored token is inside the provider's expiry safety window
	AccessToken(ctx context.Context) (string, error)
}

// OAuthProvider extends AuthProvider with the redirect-based
// authorization-code flow
type OAuthProvider interface {
	AuthProvider
	// AuthURL builds the provider authorization URL carrying the state nonce
	AuthURL(ctx context.Context, state string) (string, error)
	// HandleCallback exchanges the authorization code and persists the
	// resulting token
	HandleCallback(ctx context.Context, code string) error
}
