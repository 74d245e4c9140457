package server

import (
	"net/http"
	"time"

	"github.com/ternarybob/conduit/internal/common"
)

var startTime = time.Now()

// versionHandler returns build version information
func (s *Server) versionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// healthHandler reports service liveness plus basic component status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	llmProvider := "disabled"
	if s.app.LLMService != nil {
		llmProvider = s.app.LLMService.ProviderName()
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"uptime":       time.Since(startTime).String(),
		"storage":      "badger",
		"llm_provider": llmProvider,
		"handlers":     len(s.app.Registry.List()),
	})
}
