package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mcoot/gamerhub/internal/storage"
)

var openWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "gamerhub_workspaces_open",
	Help: "Client workspaces held in memory",
})

// entry is a workspace being opened or already open. ready is closed once
// Open has finished; ws and err are set before that and never change after.
type entry struct {
	ws       *Workspace
	err      error
	ready    chan struct{}
	lastUsed time.Time
}

func (e *entry) opened() bool {
	select {
	case <-e.ready:
		return e.err == nil
	default:
		return false
	}
}

// Registry keeps one workspace per browser session id. Workspaces are opened
// lazily, so a restarted server restores sessions from storage.
type Registry struct {
	deps Deps

	mu         sync.Mutex
	workspaces map[string]*entry
}

// NewRegistry creates an empty registry
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:       deps,
		workspaces: make(map[string]*entry),
	}
}

// NewID returns a fresh browser session id
func (r *Registry) NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one issued by NewID
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Known reports whether id belongs to a session this server handed out: one
// that is open, or one with a persisted token to restore
func (r *Registry) Known(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	_, ok := r.workspaces[id]
	r.mu.Unlock()
	if ok {
		return true, nil
	}

	_, err := r.deps.Storage.GetToken(ctx, storage.Scope(id))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	}
	return false, fmt.Errorf("failed to look up session: %w", err)
}

// Get returns the workspace for id, opening it on first use. Only callers
// asking for the same id wait on each other while it opens.
func (r *Registry) Get(ctx context.Context, id string) (*Workspace, error) {
	r.mu.Lock()
	if e, ok := r.workspaces[id]; ok {
		e.lastUsed = r.deps.Clock.Now()
		r.mu.Unlock()
		select {
		case <-e.ready:
			return e.ws, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &entry{ready: make(chan struct{}), lastUsed: r.deps.Clock.Now()}
	r.workspaces[id] = e
	r.mu.Unlock()

	ws := New(id, r.deps)
	err := ws.Open(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		e.err = err
	} else {
		e.ws = ws
	}
	close(e.ready)

	if r.workspaces[id] != e {
		// Dropped while opening
		return ws, err
	}
	switch {
	case err != nil:
		delete(r.workspaces, id)
		return nil, err
	case ws.Session.Unverified():
		// Retried on the next request rather than held logged out
		delete(r.workspaces, id)
	default:
		openWorkspaces.Inc()
	}
	return ws, nil
}

// Rotate moves the session held by old to a fresh id and returns it. The old
// id is left with nothing: its workspace is dropped and its persisted state
// cleared.
func (r *Registry) Rotate(ctx context.Context, old *Workspace) (string, *Workspace, error) {
	id := r.NewID()
	ws := New(id, r.deps)
	if user := old.Session.User(); user != nil {
		if err := ws.Session.Adopt(ctx, old.Session.Token(), *user); err != nil {
			return "", nil, err
		}
		if p := old.Active.Active(); p != nil {
			if err := ws.Active.Select(ctx, *p); err != nil {
				return "", nil, err
			}
		}
	} else if err := ws.Open(ctx); err != nil {
		return "", nil, err
	}

	if err := old.Session.Teardown(ctx); err != nil {
		r.deps.Logger.Warn("failed to clear rotated session", slog.String("error", err.Error()))
	}

	e := &entry{ws: ws, ready: make(chan struct{}), lastUsed: r.deps.Clock.Now()}
	close(e.ready)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(old.ID)
	r.workspaces[id] = e
	openWorkspaces.Inc()
	return id, ws, nil
}

// Drop closes and forgets the workspace for id. Persisted state is kept.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(id)
}

func (r *Registry) dropLocked(id string) {
	e, ok := r.workspaces[id]
	if !ok {
		return
	}
	delete(r.workspaces, id)
	if e.opened() {
		e.ws.Close()
		openWorkspaces.Dec()
	}
}

// Evict drops workspaces unused for longer than idle and returns how many
func (r *Registry) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.deps.Clock.Now().Add(-idle)
	evicted := 0
	for id, e := range r.workspaces {
		if e.opened() && e.lastUsed.Before(cutoff) {
			r.dropLocked(id)
			evicted++
		}
	}
	if evicted > 0 {
		r.deps.Logger.Info("evicted idle workspaces", slog.Int("count", evicted))
	}
	return evicted
}

// RunEvictor evicts idle workspaces every interval until ctx is done
func (r *Registry) RunEvictor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict(idle)
		}
	}
}

// Len returns the number of open workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.workspaces {
		if e.opened() {
			n++
		}
	}
	return n
}

// Close closes every workspace
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.workspaces {
		r.dropLocked(id)
	}
}
