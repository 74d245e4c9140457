package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
	"golang.org/x/oauth2"
)

const (
	threadsAuthURL     = "https://threads.net/oauth/authorize"
	threadsTokenURL    = "https://graph.threads.net/oauth/access_token"
	threadsExchangeURL = "https://graph.threads.net/access_token"
	threadsRefreshURL  = "https://graph.threads.net/refresh_access_token"

	// long-lived tokens last ~60 days; refresh a week out so a failed
	// refresh still leaves plenty of runway
	threadsRefreshWindow = 7 * 24 * time.Hour
)

// threadsTokenResponse is the exchange/refresh response shape
type threadsTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewThreadsProvider creates the Threads OAuth provider. Threads issues
// short-lived tokens from the code exchange which must immediately be
// swapped for long-lived ones; refresh is a plain GET, not a standard
// refresh-token grant.
func NewThreadsProvider(store interfaces.CredentialStorage, client *http.Client, redirectURL string, logger arbor.ILogger) *OAuth2Provider {
	endpoint := oauth2.Endpoint{
		AuthURL:  threadsAuthURL,
		TokenURL: threadsTokenURL,
	}
	scopes := []string{"threads_basic", "threads_content_publish"}

	exchange := func(ctx context.Context, token *models.OAuthToken) (*models.OAuthToken, error) {
		cred, err := store.GetCredential(ctx, "threads")
		if err != nil {
			return nil, err
		}
		query := url.Values{
			"grant_type":    {"th_exchange_token"},
			"client_secret": {cred.ClientSecret},
			"access_token":  {token.AccessToken},
		}
		return threadsTokenCall(ctx, client, threadsExchangeURL, query)
	}

	refresh := func(ctx context.Context, token *models.OAuthToken) (*models.OAuthToken, error) {
		query := url.Values{
			"grant_type":   {"th_refresh_token"},
			"access_token": {token.AccessToken},
		}
		return threadsTokenCall(ctx, client, threadsRefreshURL, query)
	}

	return NewOAuth2Provider("threads", endpoint, scopes, redirectURL, store, logger,
		WithRefreshWindow(threadsRefreshWindow),
		WithLongLivedExchange(exchange),
		WithRefresher(refresh),
	)
}

// threadsTokenCall performs one GET token operation against the graph API
func threadsTokenCall(ctx context.Context, client *http.Client, endpoint string, query url.Values) (*models.OAuthToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("threads token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("threads token endpoint returned status %d", resp.StatusCode)
	}

	var parsed threadsTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("threads token response parse failed: %w", err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("threads token endpoint returned empty token")
	}

	return &models.OAuthToken{
		Provider:    "threads",
		AccessToken: parsed.AccessToken,
		TokenType:   parsed.TokenType,
		ExpiresAt:   time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	}, nil
}
