package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/catalog"
	"github.com/sakif/roadmap-academy/internal/mentor"
	"github.com/sakif/roadmap-academy/internal/model"
	"github.com/sakif/roadmap-academy/internal/repository"
)

// MentorService assembles the read-only context the AI mentor sees and
// delegates to the mentor provider. It has no write access to any store —
// the mentor can observe progress, never change it.
type MentorService struct {
	provider mentor.Provider
	users    repository.UserRepository
	progress *ProgressService
	reward   *RewardService
	catalog  *catalog.Catalog
	logger   *slog.Logger
}

// NewMentorService creates a MentorService.
func NewMentorService(
	provider mentor.Provider,
	users repository.UserRepository,
	progress *ProgressService,
	reward *RewardService,
	cat *catalog.Catalog,
	logger *slog.Logger,
) *MentorService {
	return &MentorService{
		provider: provider,
		users:    users,
		progress: progress,
		reward:   reward,
		catalog:  cat,
		logger:   logger,
	}
}

// Chat produces the mentor's next reply for the conversation.
//
// username may be empty (anonymous visitors can chat; they just get no
// progress context). activeModuleID may be empty or unknown, in which case
// the mentor is told the student is exploring the general roadmap.
//
// Errors from the provider are returned as-is; the HTTP handler substitutes
// the fixed apology string so a flaky upstream never breaks the
// conversation view.
func (s *MentorService) Chat(ctx context.Context, username string, history []model.ChatMessage, activeModuleID string) (string, error) {
	if len(history) == 0 {
		return "", apperror.ValidationFailed("messages", "at least one message is required")
	}

	var activeModule *mentor.ModuleContext
	if mod := s.catalog.ByID(activeModuleID); mod != nil {
		activeModule = &mentor.ModuleContext{
			Title:       mod.Title,
			Description: mod.Description,
		}
	}

	var progress *mentor.ProgressSummary
	if username != "" {
		summary, err := s.progressSummary(ctx, username)
		if err != nil {
			// Progress context is advisory. Log and chat without it
			// rather than failing the whole request.
			s.logger.Warn("mentor chat: loading progress context failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		} else {
			progress = summary
		}
	}

	return s.provider.Chat(ctx, history, activeModule, progress)
}

// GenerateIdea asks the provider for a project suggestion for the module.
// Provider failures propagate as apperror.ErrUpstream with no fallback; the
// caller abandons the action and leaves its state unchanged.
func (s *MentorService) GenerateIdea(ctx context.Context, moduleID string) (*model.ProjectIdea, error) {
	mod := s.catalog.ByID(moduleID)
	if mod == nil {
		return nil, apperror.NotFound("module", moduleID)
	}

	idea, err := s.provider.ProjectIdea(ctx, mentor.IdeaRequest{
		ModuleTitle: mod.Title,
		Difficulty:  mod.Difficulty,
		Topics:      mod.Topics,
	})
	if err != nil {
		s.logger.Error("project idea generation failed",
			slog.String("module", moduleID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream(err)
	}

	return idea, nil
}

func (s *MentorService) progressSummary(ctx context.Context, username string) (*mentor.ProgressSummary, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	percent, err := s.progress.OverallProgressPercent(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("computing overall progress: %w", err)
	}

	return &mentor.ProgressSummary{
		CompletedModuleTitles: s.reward.ClaimedModuleTitles(user),
		OverallPercent:        percent,
	}, nil
}
