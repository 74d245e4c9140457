package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

func (s *Server) listJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := &interfaces.JobListOptions{
		FlowID: r.URL.Query().Get("flow_id"),
		Status: models.JobStatus(r.URL.Query().Get("status")),
		Limit:  50,
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= 500 {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	jobs, err := s.app.StorageManager.JobStorage().List(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list jobs: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (s *Server) getJobHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/jobs/")
	job, err := s.app.StorageManager.JobStorage().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "job not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

func (s *Server) deleteJobHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/jobs/")
	if err := s.app.StorageManager.JobStorage().Delete(r.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "job not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteSuccess(w, "job deleted")
}

// cleanupJobsHandler removes terminal jobs older than the retention cutoff.
// Default retention is 30 days, overridable with ?days=N.
func (s *Server) cleanupJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}
	cutoff := time.Now().AddDate(0, 0, -days).Unix()

	deleted, err := s.app.StorageManager.JobStorage().DeleteCompletedBefore(r.Context(), cutoff)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "cleanup failed: "+err.Error())
		return
	}

	s.app.Logger.Info().Int("deleted", deleted).Int("retention_days", days).Msg("Job cleanup completed")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"deleted": deleted,
	})
}

// listHandlersHandler exposes the registered handler descriptors so UIs can
// build step configuration forms
func (s *Server) listHandlersHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	type handlerInfo struct {
		Slug           string                    `json:"slug"`
		Type           string                    `json:"type"`
		Label          string                    `json:"label"`
		AuthProvider   string                    `json:"auth_provider,omitempty"`
		SettingsSchema []interfaces.SettingField `json:"settings_schema,omitempty"`
	}

	descs := s.app.Registry.List()
	infos := make([]handlerInfo, 0, len(descs))
	for _, desc := range descs {
		infos = append(infos, handlerInfo{
			Slug:           desc.Slug,
			Type:           string(desc.Type),
			Label:          desc.Label,
			AuthProvider:   desc.AuthProvider,
			SettingsSchema: desc.SettingsSchema,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"handlers": infos,
		"count":    len(infos),
	})
}
