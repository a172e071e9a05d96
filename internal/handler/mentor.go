package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/auth"
	"github.com/sakif/roadmap-academy/internal/model"
	"github.com/sakif/roadmap-academy/internal/service"
)

// chatApology is the fixed reply substituted when the mentor backend fails.
// The chat path never surfaces an error to the learner: the conversation
// stays intact and this message takes the place of the reply that couldn't
// be generated.
const chatApology = "I'm experiencing a temporary connection issue with my neural circuits. Please try again in a few moments!"

// MentorHandler exposes the AI mentor chat and the project-idea generator.
type MentorHandler struct {
	mentor *service.MentorService
	logger *slog.Logger
}

// NewMentorHandler creates a MentorHandler.
func NewMentorHandler(mentorSvc *service.MentorService, logger *slog.Logger) *MentorHandler {
	return &MentorHandler{mentor: mentorSvc, logger: logger}
}

type chatRequest struct {
	Messages       []model.ChatMessage `json:"messages"`
	ActiveModuleID string              `json:"activeModuleId,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// HandleChat produces the mentor's next reply.
//
// HTTP: POST /api/mentor/chat (behind OptionalAuth)
// BODY: {"messages":[{"role":"user","content":"..."}], "activeModuleId":"foundations"}
//
// Upstream failures are swallowed: the handler logs the error and returns
// 200 with the fixed apology string, so the chat UI always has something to
// render. Only request validation errors surface as real HTTP errors.
func (h *MentorHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	username, _ := auth.UsernameFromContext(r.Context())

	reply, err := h.mentor.Chat(r.Context(), username, req.Messages, req.ActiveModuleID)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			writeError(w, err)
			return
		}

		h.logger.Error("mentor chat failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusOK, chatResponse{Reply: chatApology})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// HandleIdea generates a project idea for a module.
//
// HTTP: POST /api/modules/{id}/idea (behind OptionalAuth)
//
// Unlike chat, there is no fallback here: an upstream failure propagates as
// 502 and the client abandons the action, leaving its state unchanged.
func (h *MentorHandler) HandleIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := h.mentor.GenerateIdea(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}
