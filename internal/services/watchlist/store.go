package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/catalog"
)

var mutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gamerhub_watchlist_mutations_total",
		Help: "Watchlist add/remove calls, by operation and result",
	},
	[]string{"op", "result"},
)

// Outcome is the result of a watchlist mutation as the user should see it
type Outcome struct {
	// Present is whether the game is on the watchlist after the mutation
	Present bool
	Notice  model.Notice
}

// Store holds the watchlist of the active profile. Every mutation is confirmed
// by the API and followed by a refresh, so the held list is always server
// truth as of the last call.
type Store struct {
	api    backend.ClientProvider
	logger *slog.Logger

	mu      sync.RWMutex
	profile *model.Profile
	games   []model.Game
	loaded  bool
}

// NewStore creates an empty watchlist store
func NewStore(api backend.ClientProvider, logger *slog.Logger) *Store {
	return &Store{api: api, logger: logger}
}

// Load switches the store to profile and fetches its watchlist. A nil profile
// empties the store.
func (s *Store) Load(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	if profile == nil {
		s.profile = nil
		s.games = nil
		s.loaded = false
		s.mu.Unlock()
		return nil
	}
	p := *profile
	if s.profile == nil || s.profile.ID != p.ID {
		s.games = nil
		s.loaded = false
	}
	s.profile = &p
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Reset forgets the profile and its watchlist
func (s *Store) Reset() {
	_ = s.Load(context.Background(), nil)
}

// Refresh re-fetches the watchlist of the loaded profile
func (s *Store) Refresh(ctx context.Context) error {
	profile := s.Profile()
	if profile == nil {
		return model.ErrNoActiveProfile
	}

	games, err := s.api.Client().GetWatchlist(ctx, profile.ID.String())
	if err != nil {
		s.logger.Warn("failed to fetch watchlist",
			slog.String("profile_id", profile.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to fetch watchlist: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The profile may have changed while the call was in flight
	if s.profile == nil || s.profile.ID != profile.ID {
		return nil
	}
	s.games = games
	s.loaded = true
	return nil
}

// Profile returns the profile whose watchlist is held, nil if none
func (s *Store) Profile() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Loaded reports whether the watchlist has been fetched at least once
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Games returns a copy of the saved games
func (s *Store) Games() []model.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Game(nil), s.games...)
}

// Contains reports whether any saved game is known by id
func (s *Store) Contains(id string) bool {
	if id == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.games {
		if g.HasAlias(id) {
			return true
		}
	}
	return false
}

// Has reports whether game is saved under any of its ids
func (s *Store) Has(game model.Game) bool {
	for _, alias := range game.Aliases() {
		if s.Contains(alias) {
			return true
		}
	}
	return false
}

// Add saves game to the watchlist. Kids profiles cannot save games that are
// not appropriate for them.
func (s *Store) Add(ctx context.Context, game model.Game) (Outcome, error) {
	profile := s.Profile()
	if profile == nil {
		return Outcome{Notice: model.Failure("Select a profile first")}, model.ErrNoActiveProfile
	}
	id, ok := model.ResolveGameIdentity(game)
	if !ok {
		return Outcome{Notice: model.Failure("This game cannot be saved")}, model.ErrInvalidGameID
	}
	if !catalog.Visible(profile.Restriction, game) {
		return Outcome{Present: s.Has(game), Notice: model.Failure("This game is not available for this profile")}, model.ErrRestricted
	}

	return s.mutate(ctx, "add", string(id), game, func(c *backend.Client) error {
		return c.AddToWatchlist(ctx, profile.ID.String(), string(id))
	})
}

// Remove drops the game known by id from the watchlist
func (s *Store) Remove(ctx context.Context, id string) (Outcome, error) {
	profile := s.Profile()
	if profile == nil {
		return Outcome{Notice: model.Failure("Select a profile first")}, model.ErrNoActiveProfile
	}
	if id == "" {
		return Outcome{Notice: model.Failure("This game cannot be removed")}, model.ErrInvalidGameID
	}

	return s.mutate(ctx, "remove", id, model.Game{}, func(c *backend.Client) error {
		return c.RemoveFromWatchlist(ctx, profile.ID.String(), id)
	})
}

// Toggle removes game when it is saved and adds it otherwise
func (s *Store) Toggle(ctx context.Context, game model.Game) (Outcome, error) {
	if s.Has(game) {
		id, ok := model.ResolveGameIdentity(game)
		if !ok {
			return Outcome{Notice: model.Failure("This game cannot be removed")}, model.ErrInvalidGameID
		}
		return s.Remove(ctx, string(id))
	}
	return s.Add(ctx, game)
}

// mutate runs call, then re-fetches the watchlist whatever the result. On
// failure the outcome reflects what the server holds after the re-sync.
func (s *Store) mutate(ctx context.Context, op, id string, game model.Game, call func(c *backend.Client) error) (Outcome, error) {
	err := call(s.api.Client())
	if err != nil {
		mutationsTotal.WithLabelValues(op, "error").Inc()
		s.logger.Warn("watchlist mutation failed",
			slog.String("op", op),
			slog.String("game_id", id),
			slog.String("error", err.Error()))

		if rerr := s.Refresh(ctx); rerr != nil {
			s.logger.Warn("failed to re-sync watchlist after error", slog.String("error", rerr.Error()))
		}
		return Outcome{Present: s.Contains(id), Notice: failureNotice(op, err)}, err
	}
	mutationsTotal.WithLabelValues(op, "ok").Inc()

	if rerr := s.Refresh(ctx); rerr != nil {
		s.applyLocally(op, id, game)
	}

	if op == "add" {
		return Outcome{Present: true, Notice: model.Success("Added to the watchlist")}, nil
	}
	return Outcome{Present: false, Notice: model.Success("Removed from the watchlist")}, nil
}

// applyLocally mirrors a confirmed mutation when the follow-up refresh failed
func (s *Store) applyLocally(op, id string, game model.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch op {
	case "add":
		s.games = append(s.games, game)
	case "remove":
		kept := s.games[:0:0]
		for _, g := range s.games {
			if !g.HasAlias(id) {
				kept = append(kept, g)
			}
		}
		s.games = kept
	}
}

func failureNotice(op string, err error) model.Notice {
	switch {
	case errors.Is(err, model.ErrAlreadyInWatchlist):
		return model.Info("This game is already in the watchlist")
	case errors.Is(err, model.ErrNotFound) && op == "remove":
		return model.Info("This game is no longer in the watchlist")
	case op == "add":
		return model.Failure("Could not add the game to the watchlist: " + backend.Message(err))
	default:
		return model.Failure("Could not remove the game from the watchlist: " + backend.Message(err))
	}
}
