package server

import (
	"errors"
	"net/http"

	"github.com/ternarybob/conduit/internal/auth"
	"github.com/ternarybob/conduit/internal/models"
)

// saveCredentialHandler stores client credentials (OAuth client id/secret or
// an app-password pair) for a provider
func (s *Server) saveCredentialHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var cred models.ClientCredential
	if !DecodeJSON(w, r, &cred) {
		return
	}
	if cred.Provider == "" {
		WriteError(w, http.StatusBadRequest, "provider is required")
		return
	}
	if !cred.IsConfigured() {
		WriteError(w, http.StatusBadRequest, "either client_id/client_secret or username/password must be set")
		return
	}

	if err := s.app.StorageManager.CredentialStorage().SaveCredential(r.Context(), &cred); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to save credential: "+err.Error())
		return
	}

	s.app.Logger.Info().Str("provider", cred.Provider).Msg("Client credential stored")
	WriteSuccess(w, "credential stored")
}

// authConnectHandler starts the redirect flow: issues a state nonce and
// redirects the browser to the provider's authorization URL
func (s *Server) authConnectHandler(w http.ResponseWriter, r *http.Request, provider string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	oauthProvider, ok := s.app.OAuthProviders[provider]
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown oauth provider: "+provider)
		return
	}

	state, err := s.app.StateManager.Issue(r.Context(), provider)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	authURL, err := oauthProvider.AuthURL(r.Context(), state)
	if err != nil {
		if errors.Is(err, auth.ErrConfigMissing) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// authCallbackHandler completes the redirect flow: validates the single-use
// state nonce then exchanges the code for a token
func (s *Server) authCallbackHandler(w http.ResponseWriter, r *http.Request, provider string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		WriteError(w, http.StatusBadRequest, "state and code query parameters are required")
		return
	}

	stateProvider, err := s.app.StateManager.Validate(r.Context(), state)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidState) {
			WriteError(w, http.StatusBadRequest, "invalid, expired or reused state")
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stateProvider != provider {
		WriteError(w, http.StatusBadRequest, "state was issued for a different provider")
		return
	}

	oauthProvider, ok := s.app.OAuthProviders[provider]
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown oauth provider: "+provider)
		return
	}

	if err := oauthProvider.HandleCallback(r.Context(), code); err != nil {
		if errors.Is(err, auth.ErrAuthenticationFailed) {
			WriteError(w, http.StatusBadGateway, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(w, provider+" connected")
}

// authStatusHandler reports whether a provider has credentials and a token
func (s *Server) authStatusHandler(w http.ResponseWriter, r *http.Request, provider string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]interface{}{
		"provider":   provider,
		"configured": false,
		"connected":  false,
	}

	if oauthProvider, ok := s.app.OAuthProviders[provider]; ok {
		status["configured"] = oauthProvider.IsConfigured(r.Context())
		if token, err := s.app.StorageManager.CredentialStorage().GetToken(r.Context(), provider); err == nil {
			status["connected"] = !token.Expired()
			status["expires_at"] = token.ExpiresAt
		}
	} else if provider == s.app.WordPressAuth.Name() {
		configured := s.app.WordPressAuth.IsConfigured(r.Context())
		status["configured"] = configured
		status["connected"] = configured
	} else {
		WriteError(w, http.StatusNotFound, "unknown provider: "+provider)
		return
	}

	WriteJSON(w, http.StatusOK, status)
}
