package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Pipelines
	mux.HandleFunc("/api/pipelines", s.handlePipelinesRoute) // GET (list), POST (create)
	mux.HandleFunc("/api/pipelines/", s.handlePipelineRoutes) // GET/PUT/DELETE /{id}

	// API routes - Flows
	mux.HandleFunc("/api/flows", s.handleFlowsRoute) // GET (list), POST (create)
	mux.HandleFunc("/api/flows/", s.handleFlowRoutes) // GET/PUT/DELETE /{id}, POST /{id}/run

	// API routes - Jobs
	mux.HandleFunc("/api/jobs", s.listJobsHandler)
	mux.HandleFunc("/api/jobs/cleanup", s.cleanupJobsHandler)
	mux.HandleFunc("/api/jobs/", s.handleJobRoutes) // GET/DELETE /{id}

	// API routes - Handler registry
	mux.HandleFunc("/api/handlers", s.listHandlersHandler)

	// API routes - Authentication
	mux.HandleFunc("/api/auth/credentials", s.saveCredentialHandler) // POST
	mux.HandleFunc("/api/auth/", s.handleAuthRoutes)                 // /{provider}/connect, /{provider}/callback, /{provider}/status

	// API routes - System
	mux.HandleFunc("/api/version", s.versionHandler)
	mux.HandleFunc("/api/health", s.healthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.notFoundHandler)

	return mux
}

// handlePipelinesRoute routes /api/pipelines requests (list and create)
func (s *Server) handlePipelinesRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.listPipelinesHandler(w, r)
	case "POST":
		s.createPipelineHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePipelineRoutes routes /api/pipelines/{id} requests
func (s *Server) handlePipelineRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.getPipelineHandler(w, r)
	case "PUT":
		s.updatePipelineHandler(w, r)
	case "DELETE":
		s.deletePipelineHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleFlowsRoute routes /api/flows requests (list and create)
func (s *Server) handleFlowsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.listFlowsHandler(w, r)
	case "POST":
		s.createFlowHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleFlowRoutes routes /api/flows/{id} requests and /api/flows/{id}/run
func (s *Server) handleFlowRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/run") {
		s.runFlowHandler(w, r)
		return
	}

	switch r.Method {
	case "GET":
		s.getFlowHandler(w, r)
	case "PUT":
		s.updateFlowHandler(w, r)
	case "DELETE":
		s.deleteFlowHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobRoutes routes /api/jobs/{id} requests
func (s *Server) handleJobRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.getJobHandler(w, r)
	case "DELETE":
		s.deleteJobHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAuthRoutes routes /api/auth/{provider}/{action} requests
func (s *Server) handleAuthRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/auth/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	provider, action := parts[0], parts[1]

	switch action {
	case "connect":
		s.authConnectHandler(w, r, provider)
	case "callback":
		s.authCallbackHandler(w, r, provider)
	case "status":
		s.authStatusHandler(w, r, provider)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "unknown API route: "+r.URL.Path)
}

// pathID extracts the trailing resource ID from a prefixed path
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if idx := strings.Index(id, "/"); idx >= 0 {
		id = id[:idx]
	}
	return id
}
