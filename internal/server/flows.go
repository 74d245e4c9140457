package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

func (s *Server) listFlowsHandler(w http.ResponseWriter, r *http.Request) {
	var (
		flows []*models.Flow
		err   error
	)
	if pipelineID := r.URL.Query().Get("pipeline_id"); pipelineID != "" {
		flows, err = s.app.StorageManager.FlowStorage().ListByPipeline(r.Context(), pipelineID)
	} else {
		flows, err = s.app.StorageManager.FlowStorage().List(r.Context())
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list flows: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"flows": flows,
		"count": len(flows),
	})
}

func (s *Server) createFlowHandler(w http.ResponseWriter, r *http.Request) {
	var flow models.Flow
	if !DecodeJSON(w, r, &flow) {
		return
	}

	// the referenced pipeline must exist
	if _, err := s.app.StorageManager.PipelineStorage().Get(r.Context(), flow.PipelineID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusBadRequest, "unknown pipeline: "+flow.PipelineID)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if flow.ID == "" {
		flow.ID = common.NewFlowID()
	}
	for i := range flow.Steps {
		if flow.Steps[i].FlowStepID == "" {
			flow.Steps[i].FlowStepID = common.NewFlowStepID()
		}
	}
	now := time.Now()
	flow.CreatedAt = now
	flow.UpdatedAt = now

	if err := s.validateFlow(&flow); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.app.StorageManager.FlowStorage().Save(r.Context(), &flow); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to save flow: "+err.Error())
		return
	}
	if err := s.app.Scheduler.RegisterFlow(&flow); err != nil {
		s.app.Logger.Warn().Err(err).Str("flow_id", flow.ID).Msg("Flow saved but scheduling failed")
	}
	WriteJSON(w, http.StatusCreated, &flow)
}

func (s *Server) getFlowHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/flows/")
	flow, err := s.app.StorageManager.FlowStorage().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "flow not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, flow)
}

func (s *Server) updateFlowHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/flows/")
	store := s.app.StorageManager.FlowStorage()

	existing, err := store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "flow not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var update models.Flow
	if !DecodeJSON(w, r, &update) {
		return
	}
	update.ID = id
	update.CreatedAt = existing.CreatedAt
	update.UpdatedAt = time.Now()
	for i := range update.Steps {
		if update.Steps[i].FlowStepID == "" {
			update.Steps[i].FlowStepID = common.NewFlowStepID()
		}
	}

	if err := s.validateFlow(&update); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.Save(r.Context(), &update); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to save flow: "+err.Error())
		return
	}
	if err := s.app.Scheduler.RegisterFlow(&update); err != nil {
		s.app.Logger.Warn().Err(err).Str("flow_id", update.ID).Msg("Flow saved but scheduling failed")
	}
	WriteJSON(w, http.StatusOK, &update)
}

func (s *Server) deleteFlowHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/flows/")

	flow, err := s.app.StorageManager.FlowStorage().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "flow not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.app.StorageManager.FlowStorage().Delete(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.app.Scheduler.UnregisterFlow(id)

	// the flow's dedup records have no further use
	for _, step := range flow.Steps {
		if _, err := s.app.StorageManager.ProcessedItemStorage().DeleteByFlowStep(r.Context(), step.FlowStepID); err != nil {
			s.app.Logger.Warn().Err(err).Str("flow_step_id", step.FlowStepID).Msg("Failed to purge dedup records")
		}
	}
	WriteSuccess(w, "flow deleted")
}

// runFlowHandler triggers a manual run of a flow, blocking until the job
// reaches a terminal status
func (s *Server) runFlowHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/flows/")
	flow, err := s.app.StorageManager.FlowStorage().Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "flow not found: "+id)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	job, runErr := s.app.Orchestrator.Run(r.Context(), flow)
	if job == nil {
		WriteError(w, http.StatusInternalServerError, runErr.Error())
		return
	}
	// failed jobs still return the job record; the status field carries the outcome
	WriteJSON(w, http.StatusOK, job)
}

// validateFlow checks structure plus handler-binding agreement against the
// registry and the cron schedule
func (s *Server) validateFlow(flow *models.Flow) error {
	if err := flow.Validate(); err != nil {
		return err
	}
	if flow.Schedule != "" {
		if err := common.ValidateCronSchedule(flow.Schedule); err != nil {
			return err
		}
	}
	for _, step := range flow.Steps {
		for _, binding := range step.Handlers {
			desc, ok := s.app.Registry.Resolve(binding.Slug)
			if !ok {
				return errors.New("unknown handler: " + binding.Slug)
			}
			if desc.Type != step.Type {
				return errors.New("handler " + binding.Slug + " is a " + string(desc.Type) + " handler, bound to a " + string(step.Type) + " step")
			}
		}
	}
	return nil
}
