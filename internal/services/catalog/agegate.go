package catalog

import (
	"context"
	"log/slog"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
)

// AgeGate asks the API whether a profile may open a game's details. On the
// details screen its answer wins over the local predicate; lists still use the
// local predicate because the API cannot filter listings.
type AgeGate struct {
	api    backend.ClientProvider
	logger *slog.Logger
}

// NewAgeGate creates an age gate
func NewAgeGate(api backend.ClientProvider, logger *slog.Logger) *AgeGate {
	return &AgeGate{api: api, logger: logger}
}

// Check returns the API's verdict for game under profile. Errors are returned
// as-is and must never be read as permission.
func (a *AgeGate) Check(ctx context.Context, game model.Game, profile *model.Profile) (bool, error) {
	if profile == nil {
		return false, model.ErrNoActiveProfile
	}
	id, ok := model.ResolveGameIdentity(game)
	if !ok {
		return false, model.ErrInvalidGameID
	}

	allowed, err := a.api.Client().ValidateAge(ctx, string(id), profile.ID.String())
	if err != nil {
		a.logger.Warn("age validation failed",
			slog.String("game_id", string(id)),
			slog.String("profile_id", profile.ID.String()),
			slog.String("error", err.Error()))
		return false, err
	}

	if local := Visible(profile.Restriction, game); local != allowed {
		a.logger.Info("age gate disagrees with local classification",
			slog.String("game_id", string(id)),
			slog.Bool("server_allowed", allowed),
			slog.Bool("local_allowed", local))
	}
	return allowed, nil
}
