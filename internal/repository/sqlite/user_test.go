package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/model"
)

// newTestDB returns a DB backed by in-memory SQLite — fast, isolated, and
// destroyed when the connection closes. t.Cleanup ties the close to the
// test's lifetime, including subtests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates an account and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$fakehashfortestingonly.fakehashfortestingonly12345678",
		Email:        username + "@engineer.ai",
		JoinedDate:   "August 2026",
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "alice",
		PasswordHash: "some-bcrypt-hash",
		Email:        "alice@engineer.ai",
		JoinedDate:   "August 2026",
	}

	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Create fills the generated fields in-place
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
	if user.ClaimedChests == nil {
		t.Error("Create() left ClaimedChests nil, want empty slice")
	}
	if user.Theme != "light" {
		t.Errorf("Theme = %q, want default %q", user.Theme, "light")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	duplicate := &model.User{Username: "alice", PasswordHash: "other-hash"}
	err := db.Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have failed for a duplicate username")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

// Usernames are case-sensitive: "Alice" and "alice" are distinct accounts.
func TestUserCreate_CaseSensitiveUsernames(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	other := &model.User{Username: "Alice", PasswordHash: "hash"}
	if err := db.Create(context.Background(), other); err != nil {
		t.Fatalf("Create() rejected a username differing only in case: %v", err)
	}
}

// =========================================================================
// GET BY USERNAME TESTS
// =========================================================================

func TestGetByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice")

	found, err := db.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}

	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.Email != "alice@engineer.ai" {
		t.Errorf("Email = %q, want %q", found.Email, "alice@engineer.ai")
	}
	if found.PasswordHash != created.PasswordHash {
		t.Error("PasswordHash did not round-trip")
	}
	if len(found.ClaimedChests) != 0 {
		t.Errorf("ClaimedChests = %v, want empty", found.ClaimedChests)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByUsername(context.Background(), "nobody")
	if err == nil {
		t.Fatal("GetByUsername() should have failed for an unknown username")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE CLAIMED CHESTS TESTS
// =========================================================================

func TestUpdateClaimedChests(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	user.ClaimedChests = append(user.ClaimedChests, "foundations")
	if err := db.UpdateClaimedChests(context.Background(), user); err != nil {
		t.Fatalf("UpdateClaimedChests() error = %v", err)
	}

	found, err := db.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername() after update: %v", err)
	}
	if len(found.ClaimedChests) != 1 || found.ClaimedChests[0] != "foundations" {
		t.Errorf("ClaimedChests = %v, want [foundations]", found.ClaimedChests)
	}
}

func TestUpdateClaimedChests_PreservesOrder(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice")

	user.ClaimedChests = []string{"foundations", "frontend-core", "ai-fundamentals"}
	if err := db.UpdateClaimedChests(context.Background(), user); err != nil {
		t.Fatalf("UpdateClaimedChests() error = %v", err)
	}

	found, err := db.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername() after update: %v", err)
	}
	want := []string{"foundations", "frontend-core", "ai-fundamentals"}
	if len(found.ClaimedChests) != len(want) {
		t.Fatalf("ClaimedChests = %v, want %v", found.ClaimedChests, want)
	}
	for i := range want {
		if found.ClaimedChests[i] != want[i] {
			t.Errorf("ClaimedChests[%d] = %q, want %q", i, found.ClaimedChests[i], want[i])
		}
	}
}

func TestUpdateClaimedChests_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{Username: "ghost", ClaimedChests: []string{"foundations"}}
	err := db.UpdateClaimedChests(context.Background(), ghost)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateClaimedChests() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE THEME TESTS
// =========================================================================

func TestUpdateTheme(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	if err := db.UpdateTheme(context.Background(), "alice", "dark"); err != nil {
		t.Fatalf("UpdateTheme() error = %v", err)
	}

	found, err := db.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername() after update: %v", err)
	}
	if found.Theme != "dark" {
		t.Errorf("Theme = %q, want %q", found.Theme, "dark")
	}
}

func TestUpdateTheme_UnknownUser(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateTheme(context.Background(), "nobody", "dark")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateTheme() error = %v, want ErrNotFound", err)
	}
}
