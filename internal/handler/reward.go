package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/roadmap-academy/internal/auth"
	"github.com/sakif/roadmap-academy/internal/service"
)

// RewardHandler exposes mastery-chest claiming.
type RewardHandler struct {
	reward *service.RewardService
	logger *slog.Logger
}

// NewRewardHandler creates a RewardHandler.
func NewRewardHandler(reward *service.RewardService, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{reward: reward, logger: logger}
}

// HandleClaim claims the mastery chest for a module.
//
// HTTP: POST /api/modules/{id}/chest (behind OptionalAuth)
//
// Responses:
//   - 200 with the updated account on success
//   - 204 for anonymous requests (locked UI, silent no-op)
//   - 403 when the module is not fully complete (no mutation)
//   - 409 when the chest is already claimed (no mutation)
//   - 404 for an unknown module id
func (h *RewardHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	user, err := h.reward.ClaimChest(r.Context(), username, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
