package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/auth"
	"github.com/sakif/roadmap-academy/internal/catalog"
	"github.com/sakif/roadmap-academy/internal/model"
	"github.com/sakif/roadmap-academy/internal/service"
)

// RoadmapHandler serves the curriculum catalog joined with the requesting
// user's progress. All routes here work anonymously — the catalog is public,
// and an anonymous user simply sees zero progress everywhere.
type RoadmapHandler struct {
	catalog  *catalog.Catalog
	progress *service.ProgressService
	auth     *service.AuthService
	logger   *slog.Logger
}

// NewRoadmapHandler creates a RoadmapHandler.
func NewRoadmapHandler(
	cat *catalog.Catalog,
	progress *service.ProgressService,
	authSvc *service.AuthService,
	logger *slog.Logger,
) *RoadmapHandler {
	return &RoadmapHandler{
		catalog:  cat,
		progress: progress,
		auth:     authSvc,
		logger:   logger,
	}
}

// moduleView is one catalog module with the user's derived progress state.
type moduleView struct {
	model.Module
	Progress *service.ModuleDetail `json:"progress"`
	Claimed  bool                  `json:"claimed"`
}

// HandleRoadmap returns every module with per-module progress and claim
// state for the (optional) authenticated user.
//
// HTTP: GET /api/roadmap (behind OptionalAuth)
func (h *RoadmapHandler) HandleRoadmap(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())

	var claimed map[string]bool
	if username != "" {
		user, err := h.auth.GetUser(r.Context(), username)
		if err != nil {
			writeError(w, err)
			return
		}
		claimed = make(map[string]bool, len(user.ClaimedChests))
		for _, id := range user.ClaimedChests {
			claimed[id] = true
		}
	}

	modules := h.catalog.Modules()
	views := make([]moduleView, 0, len(modules))
	for i := range modules {
		mod := &modules[i]
		detail, err := h.progress.ModuleDetail(r.Context(), username, mod)
		if err != nil {
			writeError(w, err)
			return
		}
		views = append(views, moduleView{
			Module:   *mod,
			Progress: detail,
			Claimed:  claimed[mod.ID],
		})
	}

	writeJSON(w, http.StatusOK, views)
}

// HandleModule returns a single module with progress detail.
//
// HTTP: GET /api/roadmap/{id} (behind OptionalAuth)
func (h *RoadmapHandler) HandleModule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	mod := h.catalog.ByID(id)
	if mod == nil {
		writeError(w, apperror.NotFound("module", id))
		return
	}

	username, _ := auth.UsernameFromContext(r.Context())
	detail, err := h.progress.ModuleDetail(r.Context(), username, mod)
	if err != nil {
		writeError(w, err)
		return
	}

	claimed := false
	if username != "" {
		user, err := h.auth.GetUser(r.Context(), username)
		if err != nil {
			writeError(w, err)
			return
		}
		claimed = user.HasClaimed(id)
	}

	writeJSON(w, http.StatusOK, moduleView{
		Module:   *mod,
		Progress: detail,
		Claimed:  claimed,
	})
}

// HandleSummary returns the overall completion percentage plus per-module
// counts — the numbers the header progress bar renders from.
//
// HTTP: GET /api/progress/summary (behind OptionalAuth)
func (h *RoadmapHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	username, _ := auth.UsernameFromContext(r.Context())

	overall, err := h.progress.OverallProgressPercent(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	type moduleSummary struct {
		ModuleID string `json:"moduleId"`
		service.ModuleCounts
		Percent       int  `json:"percent"`
		FullyComplete bool `json:"fullyComplete"`
	}

	modules := h.catalog.Modules()
	perModule := make([]moduleSummary, 0, len(modules))
	for i := range modules {
		mod := &modules[i]
		counts, err := h.progress.ModuleCompletionCounts(r.Context(), username, mod)
		if err != nil {
			writeError(w, err)
			return
		}
		perModule = append(perModule, moduleSummary{
			ModuleID:      mod.ID,
			ModuleCounts:  counts,
			Percent:       counts.Percent(),
			FullyComplete: counts.FullyComplete(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overallPercent": overall,
		"modules":        perModule,
	})
}
