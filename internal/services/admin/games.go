package admin

import (
	"context"
	"log/slog"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/catalog"
	"github.com/mcoot/gamerhub/internal/validation"
)

// Games returns one page of the admin game listing. A page past the end
// falls back to the first page.
func (s *Service) Games(ctx context.Context, filter model.GameFilter, page int) (catalog.Page, error) {
	if page < 1 {
		page = 1
	}
	client := s.api.Client()
	listing, err := client.ListGames(ctx, backend.ListQuery{Page: page, PageSize: PageSize, Filter: filter})
	if err != nil {
		s.warn("failed to list games", err, slog.Int("page", page))
		return catalog.Page{}, err
	}

	totalPages := catalog.TotalPages(listing.Total, PageSize)
	if page > 1 && page > totalPages {
		return s.Games(ctx, filter, 1)
	}

	return catalog.Page{
		Games:      listing.Games,
		Number:     page,
		Size:       PageSize,
		TotalItems: listing.Total,
		TotalPages: totalPages,
	}, nil
}

// Game returns one game
func (s *Service) Game(ctx context.Context, id string) (*model.Game, error) {
	return s.api.Client().GetGame(ctx, id)
}

// CreateGame validates and creates a game
func (s *Service) CreateGame(ctx context.Context, form validation.GameForm) (*model.Game, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, err
	}
	g, err := s.api.Client().CreateGame(ctx, form.Input())
	if err != nil {
		s.warn("failed to create game", err)
		return nil, err
	}
	return g, nil
}

// UpdateGame validates and updates a game
func (s *Service) UpdateGame(ctx context.Context, id string, form validation.GameForm) (*model.Game, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, err
	}
	g, err := s.api.Client().UpdateGame(ctx, id, form.Input())
	if err != nil {
		s.warn("failed to update game", err, slog.String("game_id", id))
		return nil, err
	}
	return g, nil
}

// DeleteGame removes a game
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	if err := s.api.Client().DeleteGame(ctx, id); err != nil {
		s.warn("failed to delete game", err, slog.String("game_id", id))
		return err
	}
	return nil
}

// Import asks the API to import popular games from the external catalog
func (s *Service) Import(ctx context.Context, form validation.ImportForm) (*backend.ImportResult, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, err
	}
	result, err := s.api.Client().ImportPopular(ctx, form.Count)
	if err != nil {
		s.warn("failed to import games", err, slog.Int("count", form.Count))
		return nil, err
	}
	s.logger.Info("popular games imported", slog.Int("requested", form.Count), slog.Int("imported", result.Imported))
	return result, nil
}

// WatchlistReport downloads the CSV report of every profile's watchlist
func (s *Service) WatchlistReport(ctx context.Context) ([]byte, error) {
	report, err := s.api.Client().ExportWatchlistReport(ctx)
	if err != nil {
		s.warn("failed to export watchlist report", err)
		return nil, err
	}
	return report, nil
}
