// Package session tracks registered users and the single process-wide
// current user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"calculator-api/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidUser        = errors.New("invalid user")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("wrong username or password")
)

// User is the public view of an account.
type User struct {
	Username string `json:"username"`
}

// Credentials is a username/password pair, used for seeding.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Store is a two-state machine (logged out, logged in as one user) over a
// user repository. The zero value is not usable; call NewStore.
type Store struct {
	repo     storage.UserRepository
	hashCost int

	mu      sync.RWMutex
	current *User
}

type Option func(*Store)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Store) { s.hashCost = cost }
}

func NewStore(repo storage.UserRepository, opts ...Option) *Store {
	s := &Store{
		repo:     repo,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account. The session state is left unchanged.
func (s *Store) Register(ctx context.Context, username, password string) (User, error) {
	if username == "" || password == "" {
		return User{}, fmt.Errorf("%w: username and password are required", ErrInvalidUser)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return User{}, fmt.Errorf("%w: password must be at most 72 bytes", ErrInvalidUser)
	}
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	err = s.repo.Create(ctx, storage.User{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, storage.ErrUserExists) {
		return User{}, fmt.Errorf("%w: %s", ErrUserExists, username)
	}
	if err != nil {
		return User{}, fmt.Errorf("register %s: %w", username, err)
	}

	return User{Username: username}, nil
}

// Login checks the credentials and makes the user current, replacing any
// previous session. On failure the current user is left unchanged.
func (s *Store) Login(ctx context.Context, username, password string) (User, error) {
	stored, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("login %s: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	u := User{Username: stored.Username}

	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()

	return u, nil
}

// Logout clears the session and returns the user that was logged in. When
// nobody is logged in it does nothing and reports false.
func (s *Store) Logout(_ context.Context) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return User{}, false
	}

	u := *s.current
	s.current = nil
	return u, true
}

// Current returns the logged-in user, if any.
func (s *Store) Current(_ context.Context) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

// Seed registers each account, skipping usernames that already exist.
func (s *Store) Seed(ctx context.Context, accounts []Credentials) error {
	for _, c := range accounts {
		_, err := s.Register(ctx, c.Username, c.Password)
		if err != nil && !errors.Is(err, ErrUserExists) {
			return fmt.Errorf("seed user %q: %w", c.Username, err)
		}
	}
	return nil
}
