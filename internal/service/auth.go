// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services enforce the rules;
// repositories read and write the database. Services take primitives and
// return domain errors from internal/apperror — they know nothing about
// status codes or cookies, which keeps them callable from tests (or a future
// CLI) with plain function calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/roadmap-academy/internal/apperror"
	"github.com/sakif/roadmap-academy/internal/auth"
	"github.com/sakif/roadmap-academy/internal/model"
	"github.com/sakif/roadmap-academy/internal/repository"
)

// AuthService handles registration, login, and account reads.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account and its freshly issued session token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account.
//
// Username matching is case-sensitive and exact: "Alice" and "alice" are two
// different accounts. The derived email lowercases the username, matching
// the address format the original app showed on the profile page.
//
// Fails with apperror.UsernameTaken when the username already exists —
// deliberately the only way registration rejects a valid request. There is
// no password policy: any non-empty credential pair the learner types is
// accepted and hashed. The single guard is a non-empty username, because an
// empty username is the anonymous identity everywhere else in the system.
//
// The account is durably persisted before this method returns.
func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:      username,
		PasswordHash:  hash,
		Email:         strings.ToLower(username) + "@engineer.ai",
		JoinedDate:    time.Now().Format("January 2006"),
		ClaimedChests: []string{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		// UsernameTaken comes through from the repository's UNIQUE handling.
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", user.Username))

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %q: %w", user.Username, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates an existing account.
//
// A missing account and a wrong password both return the same
// apperror.InvalidCredentials — callers can't enumerate which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %q: %w", user.Username, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUser returns the account for the given username. Used by /api/me after
// the middleware validates the session token.
func (s *AuthService) GetUser(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("service/auth: username must not be empty")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %q: %w", username, err)
	}

	return user, nil
}

// SetTheme stores the display-theme preference for the account.
func (s *AuthService) SetTheme(ctx context.Context, username, theme string) error {
	if theme != "light" && theme != "dark" {
		return apperror.ValidationFailed("theme", `theme must be "light" or "dark"`)
	}

	if err := s.users.UpdateTheme(ctx, username, theme); err != nil {
		return fmt.Errorf("service/auth: updating theme for %q: %w", username, err)
	}

	return nil
}
