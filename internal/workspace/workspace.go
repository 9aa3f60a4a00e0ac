// Package workspace bundles the per-client stores. A web browser session and
// a CLI invocation each get one workspace; stores are wired to each other
// here and never reached through globals.
package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/dependencies/clock"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/admin"
	"github.com/mcoot/gamerhub/internal/services/catalog"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/services/profile"
	"github.com/mcoot/gamerhub/internal/services/session"
	"github.com/mcoot/gamerhub/internal/services/watchlist"
	"github.com/mcoot/gamerhub/internal/storage"
	"github.com/mcoot/gamerhub/internal/validation"
)

// Deps are the shared collaborators every workspace is built from
type Deps struct {
	Storage   storage.Storage
	API       *backend.Client
	Clock     clock.Clock
	Validator *validation.Validator
	Logger    *slog.Logger
}

// Workspace is the state of one client
type Workspace struct {
	ID string

	Session   *session.Store
	Active    *profile.ActiveStore
	Profiles  *profile.Service
	Catalog   *catalog.View
	Compact   *catalog.View
	Watchlist *watchlist.Store
	AgeGate   *catalog.AgeGate
	Admin     *admin.Service

	logger *slog.Logger
}

// New wires a workspace for the client identified by id. Call Open before use.
func New(id string, deps Deps) *Workspace {
	scope := storage.Scope(id)
	logger := deps.Logger.With(slog.String("workspace", id))

	sess := session.New(deps.Storage, scope, deps.API, deps.Clock, logger)
	active := profile.NewActiveStore(deps.Storage, scope, logger)
	// The public listing needs no token
	engine := catalog.NewEngine(deps.API)

	w := &Workspace{
		ID:        id,
		Session:   sess,
		Active:    active,
		Profiles:  profile.NewService(sess, active, deps.Validator, logger),
		Catalog:   catalog.NewView(engine, catalog.PageSizeMain, deps.Clock, logger),
		Compact:   catalog.NewView(engine, catalog.PageSizeCompact, deps.Clock, logger),
		Watchlist: watchlist.NewStore(sess, logger),
		AgeGate:   catalog.NewAgeGate(sess, logger),
		Admin:     admin.NewService(sess, deps.Validator, logger),
		logger:    logger,
	}

	active.OnChange(func(prev, next *model.Profile) {
		w.Catalog.SetProfile(next)
		w.Compact.SetProfile(next)
		if next == nil || prev == nil || prev.ID != next.ID {
			w.Watchlist.Reset()
		}
	})
	sess.OnTeardown(func() {
		active.Forget()
		w.Catalog.Reset()
		w.Compact.Reset()
		w.Watchlist.Reset()
	})
	return w
}

// Open restores the session and, when it is still valid, the active profile
func (w *Workspace) Open(ctx context.Context) error {
	if err := w.Session.Init(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !w.Session.Authenticated() {
		return nil
	}
	if err := w.Active.Init(ctx); err != nil {
		return fmt.Errorf("failed to restore active profile: %w", err)
	}
	return nil
}

// Close stops pending work. Persisted state is kept.
func (w *Workspace) Close() {
	w.Catalog.Reset()
	w.Compact.Reset()
}

// Subject describes the workspace to the route guard
func (w *Workspace) Subject() guard.Subject {
	return guard.Subject{
		Loading: w.Session.State() == session.StateLoading,
		User:    w.Session.User(),
		Profile: w.Active.Active(),
	}
}

// SyncWatchlist makes sure the watchlist store holds the active profile's
// list, fetching it when it does not
func (w *Workspace) SyncWatchlist(ctx context.Context) error {
	active := w.Active.Active()
	if active == nil {
		w.Watchlist.Reset()
		return model.ErrNoActiveProfile
	}
	if held := w.Watchlist.Profile(); held != nil && held.ID == active.ID && w.Watchlist.Loaded() {
		return nil
	}
	return w.Watchlist.Load(ctx, active)
}

// View returns the catalog view for the page size: compact or main
func (w *Workspace) View(compact bool) *catalog.View {
	if compact {
		return w.Compact
	}
	return w.Catalog
}

// Game returns the game known by id under any alias. Games already on
// screen or in the watchlist are served without a remote call.
func (w *Workspace) Game(ctx context.Context, id string) (*model.Game, error) {
	var held []model.Game
	for _, v := range []*catalog.View{w.Catalog, w.Compact} {
		if p, ok := v.Current(); ok {
			held = append(held, p.Games...)
		}
	}
	held = append(held, w.Watchlist.Games()...)
	for _, g := range held {
		if g.HasAlias(id) {
			return &g, nil
		}
	}
	return w.Session.Client().GetGame(ctx, id)
}

// UseProfile makes id the active profile unless it already is
func (w *Workspace) UseProfile(ctx context.Context, id string) (*model.Profile, error) {
	if active := w.Active.Active(); active != nil && active.ID.String() == id {
		return active, nil
	}
	return w.Profiles.Select(ctx, id)
}
