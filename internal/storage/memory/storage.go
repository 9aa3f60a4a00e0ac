package memory

import (
	"context"
	"sync"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	tokens   map[storage.Scope]string
	profiles map[storage.Scope]model.Profile
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		tokens:   make(map[storage.Scope]string),
		profiles: make(map[storage.Scope]model.Profile),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Token operations

func (s *Storage) SaveToken(ctx context.Context, scope storage.Scope, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[scope] = token
	return nil
}

func (s *Storage) GetToken(ctx context.Context, scope storage.Scope) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[scope]
	if !ok {
		return "", storage.ErrNotFound
	}
	return token, nil
}

func (s *Storage) DeleteToken(ctx context.Context, scope storage.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, scope)
	return nil
}

// Active profile operations

func (s *Storage) SaveActiveProfile(ctx context.Context, scope storage.Scope, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[scope] = *profile
	return nil
}

func (s *Storage) GetActiveProfile(ctx context.Context, scope storage.Scope) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[scope]
	if !ok {
		return nil, storage.ErrNotFound
	}
	// Callers get their own copy
	return &profile, nil
}

func (s *Storage) DeleteActiveProfile(ctx context.Context, scope storage.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, scope)
	return nil
}

func (s *Storage) Clear(ctx context.Context, scope storage.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, scope)
	delete(s.profiles, scope)
	return nil
}
