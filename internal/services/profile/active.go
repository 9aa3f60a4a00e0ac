package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/storage"
)

// ActiveStore holds the one active profile of a client scope. It is the only
// writer of the persisted active-profile snapshot.
type ActiveStore struct {
	storage storage.Storage
	scope   storage.Scope
	logger  *slog.Logger

	mu        sync.RWMutex
	active    *model.Profile
	listeners []func(prev, next *model.Profile)
}

// NewActiveStore creates an active-profile store for scope
func NewActiveStore(store storage.Storage, scope storage.Scope, logger *slog.Logger) *ActiveStore {
	return &ActiveStore{
		storage: store,
		scope:   scope,
		logger:  logger,
	}
}

// Init restores the persisted snapshot, if any
func (a *ActiveStore) Init(ctx context.Context) error {
	p, err := a.storage.GetActiveProfile(ctx, a.scope)
	if errors.Is(err, storage.ErrNotFound) {
		a.set(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read active profile: %w", err)
	}
	a.set(p)
	return nil
}

// OnChange registers fn to run after the active profile changes
func (a *ActiveStore) OnChange(fn func(prev, next *model.Profile)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Select makes p the active profile and persists it
func (a *ActiveStore) Select(ctx context.Context, p model.Profile) error {
	if p.ID == "" {
		return fmt.Errorf("%w: profile has no id", model.ErrNotFound)
	}
	if err := a.storage.SaveActiveProfile(ctx, a.scope, &p); err != nil {
		return fmt.Errorf("failed to persist active profile: %w", err)
	}
	a.set(&p)
	a.logger.Info("profile selected",
		slog.String("profile_id", p.ID.String()),
		slog.String("restriction", string(p.Restriction)))
	return nil
}

// Clear removes the active profile
func (a *ActiveStore) Clear(ctx context.Context) error {
	if err := a.storage.DeleteActiveProfile(ctx, a.scope); err != nil {
		return fmt.Errorf("failed to clear active profile: %w", err)
	}
	a.set(nil)
	return nil
}

// Forget drops the in-memory profile without touching storage. It is used
// when the session teardown has already cleared the scope.
func (a *ActiveStore) Forget() {
	a.set(nil)
}

// Active returns a copy of the active profile, nil when none is selected
func (a *ActiveStore) Active() *model.Profile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.active == nil {
		return nil
	}
	p := *a.active
	return &p
}

func (a *ActiveStore) set(p *model.Profile) {
	a.mu.Lock()
	prev := a.active
	a.active = p
	listeners := append([]func(prev, next *model.Profile){}, a.listeners...)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, p)
	}
}
