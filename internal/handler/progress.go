package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/auth"
	"github.com/sakif/roadmap-academy/internal/service"
)

// ProgressHandler exposes the four completion toggles.
//
// All four routes sit behind OptionalAuth, not RequireAuth: an anonymous
// toggle is a deliberate silent no-op (204, no effect) rather than a 401.
// The UI shows the checkboxes as locked for visitors; a stray request from a
// stale tab should not produce an error banner.
type ProgressHandler struct {
	progress *service.ProgressService
	logger   *slog.Logger
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(progress *service.ProgressService, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, logger: logger}
}

type toggleRequest struct {
	ModuleID     string `json:"moduleId"`
	TopicIndex   *int   `json:"topicIndex,omitempty"`
	ProjectIndex *int   `json:"projectIndex,omitempty"`
	OutcomeIndex *int   `json:"outcomeIndex,omitempty"`
	TechIndex    *int   `json:"techIndex,omitempty"`
}

// HandleToggleTopic flips one topic's completion state.
//
// HTTP: POST /api/progress/topic
// BODY: {"moduleId": "foundations", "topicIndex": 2}
func (h *ProgressHandler) HandleToggleTopic(w http.ResponseWriter, r *http.Request) {
	req, username, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.TopicIndex == nil {
		writeError(w, apperror.ValidationFailed("topicIndex", "topicIndex is required"))
		return
	}

	if err := h.progress.ToggleTopic(r.Context(), username, req.ModuleID, *req.TopicIndex); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleProject flips one project's completion state.
//
// HTTP: POST /api/progress/project
// BODY: {"moduleId": "foundations", "projectIndex": 0}
func (h *ProgressHandler) HandleToggleProject(w http.ResponseWriter, r *http.Request) {
	req, username, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.ProjectIndex == nil {
		writeError(w, apperror.ValidationFailed("projectIndex", "projectIndex is required"))
		return
	}

	if err := h.progress.ToggleProject(r.Context(), username, req.ModuleID, *req.ProjectIndex); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleOutcome flips one learning-outcome checklist entry.
//
// HTTP: POST /api/progress/outcome
// BODY: {"moduleId": "frontend-core", "projectIndex": 1, "outcomeIndex": 0}
func (h *ProgressHandler) HandleToggleOutcome(w http.ResponseWriter, r *http.Request) {
	req, username, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.ProjectIndex == nil || req.OutcomeIndex == nil {
		writeError(w, apperror.ValidationFailed("outcomeIndex", "projectIndex and outcomeIndex are required"))
		return
	}

	if err := h.progress.ToggleOutcome(r.Context(), username, req.ModuleID, *req.ProjectIndex, *req.OutcomeIndex); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleTech flips one tech-focus checklist entry.
//
// HTTP: POST /api/progress/tech
// BODY: {"moduleId": "frontend-core", "projectIndex": 1, "techIndex": 2}
func (h *ProgressHandler) HandleToggleTech(w http.ResponseWriter, r *http.Request) {
	req, username, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.ProjectIndex == nil || req.TechIndex == nil {
		writeError(w, apperror.ValidationFailed("techIndex", "projectIndex and techIndex are required"))
		return
	}

	if err := h.progress.ToggleTech(r.Context(), username, req.ModuleID, *req.ProjectIndex, *req.TechIndex); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode parses the shared toggle body and pulls the (possibly empty)
// username from the request context. Index fields are pointers so "absent"
// and "zero" are distinguishable — index 0 is a perfectly valid toggle.
func (h *ProgressHandler) decode(w http.ResponseWriter, r *http.Request) (toggleRequest, string, bool) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return req, "", false
	}
	if req.ModuleID == "" {
		writeError(w, apperror.ValidationFailed("moduleId", "moduleId is required"))
		return req, "", false
	}

	username, _ := auth.UsernameFromContext(r.Context())
	return req, username, true
}
