package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/sakif/roadmap-academy/internal/catalog"
	"github.com/sakif/roadmap-academy/internal/model"
	"github.com/sakif/roadmap-academy/internal/repository"
)

// ProgressService handles completion toggles and all derived progress state.
//
// The derivations (counts, percentages, the fully-complete predicate) are
// pure functions over a repository snapshot and the catalog — the database
// stores only raw membership, never computed numbers, so the two can't drift
// apart.
type ProgressService struct {
	progress repository.ProgressRepository
	catalog  *catalog.Catalog
	logger   *slog.Logger
}

// NewProgressService creates a ProgressService.
func NewProgressService(progress repository.ProgressRepository, cat *catalog.Catalog, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		progress: progress,
		catalog:  cat,
		logger:   logger,
	}
}

// ModuleCounts is the per-module completion summary.
type ModuleCounts struct {
	CompletedTopics   int `json:"completedTopics"`
	CompletedProjects int `json:"completedProjects"`
	TotalTopics       int `json:"totalTopics"`
	TotalProjects     int `json:"totalProjects"`
}

// Percent is the module's completion percentage, rounded to the nearest
// integer. Zero when the module has no trackable items.
func (c ModuleCounts) Percent() int {
	total := c.TotalTopics + c.TotalProjects
	if total == 0 {
		return 0
	}
	done := c.CompletedTopics + c.CompletedProjects
	return int(math.Round(100 * float64(done) / float64(total)))
}

// FullyComplete reports whether every topic and every project is done.
// Outcome and tech checklist entries are intentionally not part of this
// predicate — a project counts as complete purely via its own toggle.
func (c ModuleCounts) FullyComplete() bool {
	return c.CompletedTopics == c.TotalTopics &&
		c.CompletedProjects == c.TotalProjects
}

// ToggleTopic flips completion of one topic for the user.
//
// An empty username is a silent no-op: the UI presents toggles to anonymous
// visitors as locked, and the contract is "no effect, no error". Toggles
// never validate indices against the catalog — an out-of-range toggle just
// creates an orphaned record that never displays as complete.
func (s *ProgressService) ToggleTopic(ctx context.Context, username, moduleID string, topicIndex int) error {
	return s.toggle(ctx, repository.ProgressKey{
		Username:     username,
		ModuleID:     moduleID,
		Kind:         repository.KindTopic,
		ProjectIndex: -1,
		ItemIndex:    topicIndex,
	})
}

// ToggleProject flips completion of one project for the user.
func (s *ProgressService) ToggleProject(ctx context.Context, username, moduleID string, projectIndex int) error {
	return s.toggle(ctx, repository.ProgressKey{
		Username:     username,
		ModuleID:     moduleID,
		Kind:         repository.KindProject,
		ProjectIndex: -1,
		ItemIndex:    projectIndex,
	})
}

// ToggleOutcome flips one learning-outcome checklist entry of a project.
func (s *ProgressService) ToggleOutcome(ctx context.Context, username, moduleID string, projectIndex, outcomeIndex int) error {
	return s.toggle(ctx, repository.ProgressKey{
		Username:     username,
		ModuleID:     moduleID,
		Kind:         repository.KindOutcome,
		ProjectIndex: projectIndex,
		ItemIndex:    outcomeIndex,
	})
}

// ToggleTech flips one tech-focus checklist entry of a project.
func (s *ProgressService) ToggleTech(ctx context.Context, username, moduleID string, projectIndex, techIndex int) error {
	return s.toggle(ctx, repository.ProgressKey{
		Username:     username,
		ModuleID:     moduleID,
		Kind:         repository.KindTech,
		ProjectIndex: projectIndex,
		ItemIndex:    techIndex,
	})
}

func (s *ProgressService) toggle(ctx context.Context, key repository.ProgressKey) error {
	if key.Username == "" {
		return nil // anonymous: locked UI, silent no-op
	}

	nowComplete, err := s.progress.Toggle(ctx, key)
	if err != nil {
		return fmt.Errorf("service/progress: toggling %s %s/%d: %w", key.Kind, key.ModuleID, key.ItemIndex, err)
	}

	s.logger.Debug("progress toggled",
		slog.String("username", key.Username),
		slog.String("module", key.ModuleID),
		slog.String("kind", string(key.Kind)),
		slog.Int("projectIndex", key.ProjectIndex),
		slog.Int("itemIndex", key.ItemIndex),
		slog.Bool("complete", nowComplete),
	)

	return nil
}

// ModuleCompletionCounts computes the completed/total topic and project
// counts for one module. Only indices that exist in the catalog count —
// orphaned records from an edited catalog are ignored here.
func (s *ProgressService) ModuleCompletionCounts(ctx context.Context, username string, mod *model.Module) (ModuleCounts, error) {
	counts := ModuleCounts{
		TotalTopics:   len(mod.Topics),
		TotalProjects: len(mod.Projects),
	}

	if username == "" {
		return counts, nil
	}

	snap, err := s.progress.ModuleSnapshot(ctx, username, mod.ID)
	if err != nil {
		return counts, fmt.Errorf("service/progress: loading snapshot for %s/%s: %w", username, mod.ID, err)
	}

	counts.CompletedTopics, counts.CompletedProjects = countCompleted(snap, mod)
	return counts, nil
}

// IsModuleFullyComplete reports whether every topic and project index of the
// module is present in the user's completed sets.
func (s *ProgressService) IsModuleFullyComplete(ctx context.Context, username string, mod *model.Module) (bool, error) {
	counts, err := s.ModuleCompletionCounts(ctx, username, mod)
	if err != nil {
		return false, err
	}
	return counts.FullyComplete(), nil
}

// ModuleDetail is the full per-module progress view rendered by the API:
// which individual indices are done, plus the derived numbers.
type ModuleDetail struct {
	Counts            ModuleCounts `json:"counts"`
	Percent           int          `json:"percent"`
	FullyComplete     bool         `json:"fullyComplete"`
	CompletedTopics   []int        `json:"completedTopicIndices"`
	CompletedProjects []int        `json:"completedProjectIndices"`
	CompletedOutcomes [][2]int     `json:"completedOutcomes"` // [projectIndex, outcomeIndex]
	CompletedTech     [][2]int     `json:"completedTech"`     // [projectIndex, techIndex]
}

// ModuleDetail loads the complete progress view for one module.
func (s *ProgressService) ModuleDetail(ctx context.Context, username string, mod *model.Module) (*ModuleDetail, error) {
	detail := &ModuleDetail{
		Counts: ModuleCounts{
			TotalTopics:   len(mod.Topics),
			TotalProjects: len(mod.Projects),
		},
		CompletedTopics:   []int{},
		CompletedProjects: []int{},
		CompletedOutcomes: [][2]int{},
		CompletedTech:     [][2]int{},
	}

	if username != "" {
		snap, err := s.progress.ModuleSnapshot(ctx, username, mod.ID)
		if err != nil {
			return nil, fmt.Errorf("service/progress: loading snapshot for %s/%s: %w", username, mod.ID, err)
		}

		for i := range mod.Topics {
			if snap.Topics[i] {
				detail.CompletedTopics = append(detail.CompletedTopics, i)
			}
		}
		for i := range mod.Projects {
			if snap.Projects[i] {
				detail.CompletedProjects = append(detail.CompletedProjects, i)
			}
		}
		for key := range snap.Outcomes {
			detail.CompletedOutcomes = append(detail.CompletedOutcomes, key)
		}
		for key := range snap.Tech {
			detail.CompletedTech = append(detail.CompletedTech, key)
		}

		detail.Counts.CompletedTopics = len(detail.CompletedTopics)
		detail.Counts.CompletedProjects = len(detail.CompletedProjects)
	}

	detail.Percent = detail.Counts.Percent()
	detail.FullyComplete = detail.Counts.FullyComplete()
	return detail, nil
}

// OverallProgressPercent is the roadmap-wide completion percentage: completed
// topics+projects across every module over the catalog-wide total, rounded.
// Zero for an anonymous user or a catalog with no trackable items.
func (s *ProgressService) OverallProgressPercent(ctx context.Context, username string) (int, error) {
	total := s.catalog.TotalTrackableItems()
	if total == 0 || username == "" {
		return 0, nil
	}

	snapshot, err := s.progress.UserSnapshot(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("service/progress: loading user snapshot for %s: %w", username, err)
	}

	done := 0
	for _, mod := range s.catalog.Modules() {
		snap, ok := snapshot[mod.ID]
		if !ok {
			continue
		}
		topics, projects := countCompleted(snap, &mod)
		done += topics + projects
	}

	return int(math.Round(100 * float64(done) / float64(total))), nil
}

// countCompleted counts stored completions that refer to real catalog
// positions. Out-of-range records are skipped, never counted.
func countCompleted(snap *repository.ModuleProgress, mod *model.Module) (topics, projects int) {
	for i := range mod.Topics {
		if snap.Topics[i] {
			topics++
		}
	}
	for i := range mod.Projects {
		if snap.Projects[i] {
			projects++
		}
	}
	return topics, projects
}
