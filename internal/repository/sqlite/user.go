package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/model"
	"github.com/sakif/roadmap-academy/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new account.
//
// The UNIQUE constraint on username is the source of truth for duplicate
// detection — checking first and inserting after would race between two
// concurrent registrations. We insert and translate the constraint
// violation into apperror.UsernameTaken instead.
//
// claimed_chests is stored as a JSON array in a TEXT column. The list is
// small (at most one entry per module) and only ever read whole, so a join
// table would buy nothing here.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ClaimedChests == nil {
		user.ClaimedChests = []string{}
	}
	if user.Theme == "" {
		user.Theme = "light"
	}

	chests, err := json.Marshal(user.ClaimedChests)
	if err != nil {
		return fmt.Errorf("sqlite: encoding claimed chests: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, email, joined_date, claimed_chests, theme, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.JoinedDate,
		string(chests),
		user.Theme,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.UsernameTaken(user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves an account by its exact, case-sensitive username.
// Returns apperror.ErrNotFound if no such account exists.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var (
		u      model.User
		chests string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, joined_date, claimed_chests, theme, created_at, updated_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.JoinedDate,
		&chests,
		&u.Theme,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", username, err)
	}

	if err := json.Unmarshal([]byte(chests), &u.ClaimedChests); err != nil {
		return nil, fmt.Errorf("sqlite: decoding claimed chests for %q: %w", username, err)
	}

	return &u, nil
}

// UpdateClaimedChests writes the user's claimed-chest list back to the row.
// One UPDATE, so readers never see a half-written claim.
func (db *DB) UpdateClaimedChests(ctx context.Context, user *model.User) error {
	chests, err := json.Marshal(user.ClaimedChests)
	if err != nil {
		return fmt.Errorf("sqlite: encoding claimed chests: %w", err)
	}

	user.UpdatedAt = time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET claimed_chests = ?, updated_at = ? WHERE username = ?`,
		string(chests),
		user.UpdatedAt,
		user.Username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating claimed chests for %q: %w", user.Username, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", user.Username)
	}

	return nil
}

// UpdateTheme persists the display-theme preference ("light" or "dark").
func (db *DB) UpdateTheme(ctx context.Context, username, theme string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET theme = ?, updated_at = ? WHERE username = ?`,
		theme,
		time.Now(),
		username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating theme for %q: %w", username, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound("user", username)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			code == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
