package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/roadmap-academy/internal/repository"
)

// compile-time check that *DB implements repository.ProgressRepository
var _ repository.ProgressRepository = (*DB)(nil)

// Toggle flips one completion record: insert if absent, delete if present.
//
// The read and the write run inside one transaction so a toggle is atomic —
// two rapid toggles of the same key always land the set back in its original
// state, never in a duplicate-row or lost-write state.
//
// Nothing here validates that the module id or indices exist in the catalog.
// A toggle against a nonexistent position creates an orphaned row that simply
// never displays as complete; that is the documented contract, not an error.
func (db *DB) Toggle(ctx context.Context, key repository.ProgressKey) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning toggle tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM progress
		 WHERE username = ? AND module_id = ? AND kind = ? AND project_index = ? AND item_index = ?`,
		key.Username, key.ModuleID, string(key.Kind), key.ProjectIndex, key.ItemIndex,
	).Scan(&exists)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO progress (username, module_id, kind, project_index, item_index)
			 VALUES (?, ?, ?, ?, ?)`,
			key.Username, key.ModuleID, string(key.Kind), key.ProjectIndex, key.ItemIndex,
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: inserting progress record: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("sqlite: committing toggle: %w", err)
		}
		return true, nil

	case err != nil:
		return false, fmt.Errorf("sqlite: checking progress record: %w", err)

	default:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM progress
			 WHERE username = ? AND module_id = ? AND kind = ? AND project_index = ? AND item_index = ?`,
			key.Username, key.ModuleID, string(key.Kind), key.ProjectIndex, key.ItemIndex,
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: deleting progress record: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("sqlite: committing toggle: %w", err)
		}
		return false, nil
	}
}

// IsComplete reports membership of a single completion key.
func (db *DB) IsComplete(ctx context.Context, key repository.ProgressKey) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM progress
		 WHERE username = ? AND module_id = ? AND kind = ? AND project_index = ? AND item_index = ?`,
		key.Username, key.ModuleID, string(key.Kind), key.ProjectIndex, key.ItemIndex,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: checking progress record: %w", err)
	}
	return true, nil
}

// ModuleSnapshot loads every completion record for one (user, module) pair.
func (db *DB) ModuleSnapshot(ctx context.Context, username, moduleID string) (*repository.ModuleProgress, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT kind, project_index, item_index FROM progress
		 WHERE username = ? AND module_id = ?`,
		username, moduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading module progress: %w", err)
	}
	defer rows.Close()

	mp := newModuleProgress()
	for rows.Next() {
		var (
			kind                string
			projectIdx, itemIdx int
		)
		if err := rows.Scan(&kind, &projectIdx, &itemIdx); err != nil {
			return nil, fmt.Errorf("sqlite: scanning progress record: %w", err)
		}
		addRecord(mp, kind, projectIdx, itemIdx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating progress records: %w", err)
	}

	return mp, nil
}

// UserSnapshot loads every completion record for the user, grouped by module.
func (db *DB) UserSnapshot(ctx context.Context, username string) (map[string]*repository.ModuleProgress, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT module_id, kind, project_index, item_index FROM progress
		 WHERE username = ?`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading user progress: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]*repository.ModuleProgress)
	for rows.Next() {
		var (
			moduleID, kind      string
			projectIdx, itemIdx int
		)
		if err := rows.Scan(&moduleID, &kind, &projectIdx, &itemIdx); err != nil {
			return nil, fmt.Errorf("sqlite: scanning progress record: %w", err)
		}
		mp, ok := snapshot[moduleID]
		if !ok {
			mp = newModuleProgress()
			snapshot[moduleID] = mp
		}
		addRecord(mp, kind, projectIdx, itemIdx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating progress records: %w", err)
	}

	return snapshot, nil
}

func newModuleProgress() *repository.ModuleProgress {
	return &repository.ModuleProgress{
		Topics:   make(map[int]bool),
		Projects: make(map[int]bool),
		Outcomes: make(map[[2]int]bool),
		Tech:     make(map[[2]int]bool),
	}
}

func addRecord(mp *repository.ModuleProgress, kind string, projectIdx, itemIdx int) {
	switch repository.ProgressKind(kind) {
	case repository.KindTopic:
		mp.Topics[itemIdx] = true
	case repository.KindProject:
		mp.Projects[itemIdx] = true
	case repository.KindOutcome:
		mp.Outcomes[[2]int{projectIdx, itemIdx}] = true
	case repository.KindTech:
		mp.Tech[[2]int{projectIdx, itemIdx}] = true
	}
}
