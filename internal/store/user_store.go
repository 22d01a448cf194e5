package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tmorel/voyago/internal/domain"
	"github.com/tmorel/voyago/internal/kv"
)

const usersKey = "users_data"

// UserStore owns the account partition and credential validation.
type UserStore struct {
	kv  kv.Store
	now func() time.Time

	mu          sync.Mutex
	initialized bool
	lastID      int64
}

func NewUserStore(kv kv.Store) *UserStore {
	return &UserStore{kv: kv, now: time.Now}
}

// Init seeds the id counter from the partition. Idempotent; mutators
// run it implicitly.
func (s *UserStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.init(ctx)
}

func (s *UserStore) init(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	users, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to init user store: %w", err)
	}

	for _, u := range users {
		if u.ID > s.lastID {
			s.lastID = u.ID
		}
	}

	s.initialized = true
	return nil
}

func (s *UserStore) load(ctx context.Context) ([]domain.User, error) {
	data, ok, err := s.kv.Get(ctx, usersKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var users []domain.User
	if err := json.Unmarshal([]byte(data), &users); err != nil {
		return nil, fmt.Errorf("failed to decode users partition: %w", err)
	}
	return users, nil
}

func (s *UserStore) save(ctx context.Context, users []domain.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users partition: %w", err)
	}
	return s.kv.Set(ctx, usersKey, string(data))
}

// List returns all accounts in storage order.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByUsername looks up an account by username, case-insensitively.
// Returns domain.ErrNotFound when no account matches.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	users, err := s.load(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// Add creates an account with the next counter id and CreatedAt set to
// now. Returns domain.ErrDuplicateUsername when another account already
// holds the username case-insensitively; the partition is left
// untouched in that case.
func (s *UserStore) Add(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return domain.User{}, err
	}

	users, err := s.load(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to add user: %w", err)
	}

	for _, u := range users {
		if strings.EqualFold(u.Username, nu.Username) {
			return domain.User{}, domain.ErrDuplicateUsername
		}
	}

	s.lastID++
	user := domain.User{
		ID:             s.lastID,
		Username:       nu.Username,
		Password:       nu.Password,
		Email:          nu.Email,
		FirstName:      nu.FirstName,
		LastName:       nu.LastName,
		ProfilePicture: nu.ProfilePicture,
		CreatedAt:      s.now(),
	}

	users = append(users, user)
	if err := s.save(ctx, users); err != nil {
		return domain.User{}, fmt.Errorf("failed to add user: %w", err)
	}

	return user, nil
}

// UpdateLastLogin stamps the account's LastLogin with the current time.
// Returns domain.ErrNotFound when no account has the given id.
func (s *UserStore) UpdateLastLogin(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return err
	}

	users, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	for i := range users {
		if users[i].ID == userID {
			t := s.now()
			users[i].LastLogin = &t
			if err := s.save(ctx, users); err != nil {
				return fmt.Errorf("failed to update last login: %w", err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

// ValidateCredentials checks the password by exact string equality and,
// on success, stamps LastLogin and returns the account. An unknown
// username and a wrong password both return
// domain.ErrInvalidCredentials; LastLogin is untouched on failure.
func (s *UserStore) ValidateCredentials(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if user.Password != password {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if err := s.UpdateLastLogin(ctx, user.ID); err != nil {
		return domain.User{}, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}

// SeedDefaultIfEmpty inserts the demo account when the partition holds
// no users.
func (s *UserStore) SeedDefaultIfEmpty(ctx context.Context) error {
	users, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	_, err = s.Add(ctx, domain.NewUser{
		Username:       "tom",
		Password:       "1234",
		Email:          "tom@example.com",
		FirstName:      "Tom",
		LastName:       "User",
		ProfilePicture: "https://picsum.photos/id/1005/200/200",
	})
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}

// Clear wipes the partition and resets the id counter.
func (s *UserStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, usersKey); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	s.lastID = 0
	return nil
}
