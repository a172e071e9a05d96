// Package mentor talks to the generative-language service behind the AI
// mentor chat and the project-idea generator.
//
// The API credential lives on this server and only here — it is never
// shipped to the browser. Clients call our HTTP endpoints; we call Gemini.
package mentor

import (
	"context"
	"fmt"

	"github.com/sakif/roadmap-academy/internal/model"
)

// ModuleContext is the optional "what the learner is looking at right now"
// hint passed to the chat prompt.
type ModuleContext struct {
	Title       string
	Description string
}

// ProgressSummary is the read-only view of the learner's standing that the
// mentor tailors its advice to. The mentor never writes progress state.
type ProgressSummary struct {
	CompletedModuleTitles []string
	OverallPercent        int
}

// IdeaRequest describes the module a project idea is wanted for.
type IdeaRequest struct {
	ModuleTitle string
	Difficulty  model.Difficulty
	Topics      []string
}

// Provider is the abstraction over the generative-language backend.
// The Gemini implementation is the real one; tests use MockProvider.
type Provider interface {
	// Chat produces the next mentor utterance for the given conversation.
	// activeModule may be nil when the learner is browsing the whole
	// roadmap; progress may be nil for anonymous visitors.
	Chat(ctx context.Context, history []model.ChatMessage, activeModule *ModuleContext, progress *ProgressSummary) (string, error)

	// ProjectIdea produces a structured project suggestion for a module.
	ProjectIdea(ctx context.Context, req IdeaRequest) (*model.ProjectIdea, error)
}

// ErrUnavailable indicates the remote service failed or returned an
// unusable response.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mentor service unavailable: %v", e.Err)
	}
	return "mentor service unavailable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }
