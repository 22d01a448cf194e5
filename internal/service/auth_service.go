// Package service contains the application logic sitting between the
// screens and the partition stores: authentication with a persisted
// session, and trip planning flows (listing, scheduling, waypoints).
// Services depend on store interfaces declared here, not on the
// concrete store types.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tmorel/voyago/internal/domain"
	"github.com/tmorel/voyago/internal/kv"
)

// sessionKey is the partition holding the currently signed-in user as
// a single JSON blob. Absent key = signed out.
const sessionKey = "session_data"

// userAccounts is the subset of store.UserStore that AuthService requires.
type userAccounts interface {
	Add(ctx context.Context, nu domain.NewUser) (domain.User, error)
	ValidateCredentials(ctx context.Context, username, password string) (domain.User, error)
}

type AuthService struct {
	users   userAccounts
	session kv.Store
	logger  *slog.Logger
}

func NewAuthService(users userAccounts, session kv.Store, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, session: session, logger: logger}
}

// Register creates the account and signs it in.
func (s *AuthService) Register(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	user, err := s.users.Add(ctx, nu)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.saveSession(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login validates the credentials and persists the session.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.ValidateCredentials(ctx, username, password)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.saveSession(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// Logout discards the persisted session. Logging out while already
// signed out is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info("user logged out")
	return nil
}

// CurrentUser restores the signed-in user from the persisted session.
// Returns domain.ErrNotFound when nobody is signed in.
func (s *AuthService) CurrentUser(ctx context.Context) (domain.User, error) {
	data, ok, err := s.session.Get(ctx, sessionKey)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return domain.User{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return user, nil
}

func (s *AuthService) saveSession(ctx context.Context, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.session.Set(ctx, sessionKey, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
