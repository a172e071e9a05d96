package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/catalog"
	"github.com/sakif/roadmap-academy/internal/model"
	"github.com/sakif/roadmap-academy/internal/repository"
)

// RewardService is the mastery-chest ledger: one claimable chest per
// (user, module), unlocked by completing every topic and project of the
// module.
//
// Claims are a one-way ratchet. Eligibility is checked at the moment of the
// claim; uncompleting items afterwards does not revoke the chest. That
// mirrors the product behaviour deliberately — a badge once earned stays
// earned.
type RewardService struct {
	users    repository.UserRepository
	progress *ProgressService
	catalog  *catalog.Catalog
	logger   *slog.Logger
}

// NewRewardService creates a RewardService.
func NewRewardService(
	users repository.UserRepository,
	progress *ProgressService,
	cat *catalog.Catalog,
	logger *slog.Logger,
) *RewardService {
	return &RewardService{
		users:    users,
		progress: progress,
		catalog:  cat,
		logger:   logger,
	}
}

// ClaimChest claims the mastery chest for moduleID on behalf of username.
//
// Outcomes:
//   - apperror.NotFound        — unknown module id
//   - apperror.AlreadyClaimed  — chest already held; no mutation
//   - apperror.NotEligible     — module not fully complete; no mutation
//   - nil                      — chest appended and durably persisted
//
// On success the updated account is written in a single UPDATE, so no reader
// can observe a claim that is half-applied.
func (s *RewardService) ClaimChest(ctx context.Context, username, moduleID string) (*model.User, error) {
	mod := s.catalog.ByID(moduleID)
	if mod == nil {
		return nil, apperror.NotFound("module", moduleID)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/reward: fetching user %q: %w", username, err)
	}

	if user.HasClaimed(moduleID) {
		return nil, apperror.AlreadyClaimed(moduleID)
	}

	complete, err := s.progress.IsModuleFullyComplete(ctx, username, mod)
	if err != nil {
		return nil, fmt.Errorf("service/reward: checking eligibility: %w", err)
	}
	if !complete {
		return nil, apperror.NotEligible(moduleID)
	}

	user.ClaimedChests = append(user.ClaimedChests, moduleID)
	if err := s.users.UpdateClaimedChests(ctx, user); err != nil {
		return nil, fmt.Errorf("service/reward: persisting claim: %w", err)
	}

	s.logger.Info("mastery chest claimed",
		slog.String("username", username),
		slog.String("module", moduleID),
	)

	return user, nil
}

// ClaimedModuleTitles resolves the user's claimed chest ids to module titles,
// in claim order. Ids no longer present in the catalog are skipped. Used for
// the mentor's progress context.
func (s *RewardService) ClaimedModuleTitles(user *model.User) []string {
	titles := make([]string, 0, len(user.ClaimedChests))
	for _, id := range user.ClaimedChests {
		if mod := s.catalog.ByID(id); mod != nil {
			titles = append(titles, mod.Title)
		}
	}
	return titles
}
