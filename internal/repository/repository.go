package repository

import (
	"context"

	"github.com/sakif/roadmap-academy/internal/model"
)

// ProgressKind names the four disjoint sets of completion records.
// A topic/project key uses only ItemIndex; outcome/tech keys additionally
// carry the owning project's index.
type ProgressKind string

const (
	KindTopic   ProgressKind = "topic"
	KindProject ProgressKind = "project"
	KindOutcome ProgressKind = "outcome"
	KindTech    ProgressKind = "tech"
)

// ProgressKey identifies one completion record as a structured tuple.
// Structured columns (not concatenated strings) mean a username containing a
// separator character can never collide with another user's keys.
type ProgressKey struct {
	Username     string
	ModuleID     string
	Kind         ProgressKind
	ProjectIndex int // -1 for topic and project kinds
	ItemIndex    int
}

// ModuleProgress is the snapshot of one user's completed indices within a
// single module, as stored. Outcome/tech entries are keyed by project index.
type ModuleProgress struct {
	Topics   map[int]bool
	Projects map[int]bool
	Outcomes map[[2]int]bool // [projectIndex, outcomeIndex]
	Tech     map[[2]int]bool // [projectIndex, techIndex]
}

// UserRepository persists learner accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdateClaimedChests replaces the claimed-chest list for the user and
	// bumps UpdatedAt. The write is durable before the call returns.
	UpdateClaimedChests(ctx context.Context, user *model.User) error
	// UpdateTheme persists the display-theme preference.
	UpdateTheme(ctx context.Context, username, theme string) error
}

// ProgressRepository persists completion records.
type ProgressRepository interface {
	// Toggle flips membership of the key: absent becomes present, present
	// becomes absent. Returns the new state (true = now complete).
	Toggle(ctx context.Context, key ProgressKey) (bool, error)
	// IsComplete reports membership of a single key.
	IsComplete(ctx context.Context, key ProgressKey) (bool, error)
	// ModuleSnapshot loads every completion record for (username, module).
	ModuleSnapshot(ctx context.Context, username, moduleID string) (*ModuleProgress, error)
	// UserSnapshot loads every completion record for the user, keyed by
	// module id. Modules with no records are absent from the map.
	UserSnapshot(ctx context.Context, username string) (map[string]*ModuleProgress, error)
}
