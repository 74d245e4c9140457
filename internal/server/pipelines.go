package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

func (s *Server) listPipelinesHandler(w http.ResponseWriter, r *http.Request) {
	pipelines, err := s.app.StorageManager.PipelineStorage().List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list pipelines: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pipelines": pipelines,
		"count":     len(pipelines),
	})
}

func (s *Server) createPipelineHandler(w http.ResponseWriter, r *http.Request) {
	var pipeline models.Pipeline
	if !DecodeJSON(w, r, &pipeline) {
		return
	}

	if pipeline.ID == "" {
		pipeline.ID = common.NewPipelineID()
	}
	now := time.Now()
	pipeline.CreatedAt = now
	pipeline.UpdatedAt = now

	if err := pipeline.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.app.StorageManager.PipelineStorage().Save(r.Context(), &pipeline); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to save pipeline: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, &pipeline)
}

func (s *Server) getPipelineHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/pipelines/")
	pipeline, err := s.app.StorageManager.PipelineStorage().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "pipeline not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, pipeline)
}

func (s *Server) updatePipelineHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/pipelines/")
	store := s.app.StorageManager.PipelineStorage()

	existing, err := store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "pipeline not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var update models.Pipeline
	if !DecodeJSON(w, r, &update) {
		return
	}
	update.ID = id
	update.CreatedAt = existing.CreatedAt
	update.UpdatedAt = time.Now()

	if err := update.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.Save(r.Context(), &update); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to save pipeline: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, &update)
}

func (s *Server) deletePipelineHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/pipelines/")

	// refuse deletion while flows still reference the template
	flows, err := s.app.StorageManager.FlowStorage().ListByPipeline(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(flows) > 0 {
		WriteError(w, http.StatusConflict, "pipeline has dependent flows; delete them first")
		return
	}

	if err := s.app.StorageManager.PipelineStorage().Delete(r.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "pipeline not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteSuccess(w, "pipeline deleted")
}
