package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/storage"
)

// Storage persists client state as a single JSON document on disk.
// It is meant for the CLI, where one process owns the file at a time.
type Storage struct {
	mu   sync.Mutex
	path string
}

type entry struct {
	Token         string         `json:"token,omitempty"`
	ActiveProfile *model.Profile `json:"activeProfile,omitempty"`
}

type document struct {
	Scopes map[storage.Scope]*entry `json:"scopes"`
}

// New creates a file storage backed by path. The file is created on first save.
func New(path string) *Storage {
	return &Storage{path: path}
}

// Path returns the state file location
func (s *Storage) Path() string {
	return s.path
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) load() (*document, error) {
	doc := &document{Scopes: make(map[storage.Scope]*entry)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if doc.Scopes == nil {
		doc.Scopes = make(map[storage.Scope]*entry)
	}
	return doc, nil
}

func (s *Storage) save(doc *document) error {
	for scope, e := range doc.Scopes {
		if e.Token == "" && e.ActiveProfile == nil {
			delete(doc.Scopes, scope)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	// Write then rename so a crash never leaves a truncated file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Storage) update(scope storage.Scope, fn func(e *entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	e, ok := doc.Scopes[scope]
	if !ok {
		e = &entry{}
		doc.Scopes[scope] = e
	}
	fn(e)
	return s.save(doc)
}

func (s *Storage) read(scope storage.Scope) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	e, ok := doc.Scopes[scope]
	if !ok {
		return &entry{}, nil
	}
	return e, nil
}

// Token operations

func (s *Storage) SaveToken(ctx context.Context, scope storage.Scope, token string) error {
	return s.update(scope, func(e *entry) { e.Token = token })
}

func (s *Storage) GetToken(ctx context.Context, scope storage.Scope) (string, error) {
	e, err := s.read(scope)
	if err != nil {
		return "", err
	}
	if e.Token == "" {
		return "", storage.ErrNotFound
	}
	return e.Token, nil
}

func (s *Storage) DeleteToken(ctx context.Context, scope storage.Scope) error {
	return s.update(scope, func(e *entry) { e.Token = "" })
}

// Active profile operations

func (s *Storage) SaveActiveProfile(ctx context.Context, scope storage.Scope, profile *model.Profile) error {
	snapshot := *profile
	return s.update(scope, func(e *entry) { e.ActiveProfile = &snapshot })
}

func (s *Storage) GetActiveProfile(ctx context.Context, scope storage.Scope) (*model.Profile, error) {
	e, err := s.read(scope)
	if err != nil {
		return nil, err
	}
	if e.ActiveProfile == nil {
		return nil, storage.ErrNotFound
	}
	return e.ActiveProfile, nil
}

func (s *Storage) DeleteActiveProfile(ctx context.Context, scope storage.Scope) error {
	return s.update(scope, func(e *entry) { e.ActiveProfile = nil })
}

func (s *Storage) Clear(ctx context.Context, scope storage.Scope) error {
	return s.update(scope, func(e *entry) {
		e.Token = ""
		e.ActiveProfile = nil
	})
}
