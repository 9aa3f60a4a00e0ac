package backend

import (
	"context"

	"github.com/mcoot/gamerhub/internal/model"
)

// ListProfiles returns the profiles of the token's user
func (c *Client) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := c.Get(ctx, "/profiles", &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ListUserProfiles returns the profiles owned by another user (admin only)
func (c *Client) ListUserProfiles(ctx context.Context, userID string) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := c.Get(ctx, pathf("/profiles/user/%s", userID), &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfile returns a single profile
func (c *Client) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	if err := c.Get(ctx, pathf("/profiles/%s", id), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile creates a profile
func (c *Client) CreateProfile(ctx context.Context, input model.ProfileInput) (*model.Profile, error) {
	var profile model.Profile
	if err := c.Post(ctx, "/profiles", input, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates a profile
func (c *Client) UpdateProfile(ctx context.Context, id string, input model.ProfileInput) (*model.Profile, error) {
	var profile model.Profile
	if err := c.Put(ctx, pathf("/profiles/%s", id), input, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteProfile deletes a profile
func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	return c.Delete(ctx, pathf("/profiles/%s", id))
}

type watchlistAddRequest struct {
	GameID string `json:"gameId"`
}

// GetWatchlist returns the games saved by a profile
func (c *Client) GetWatchlist(ctx context.Context, profileID string) ([]model.Game, error) {
	var games []model.Game
	if err := c.Get(ctx, pathf("/profiles/%s/watchlist", profileID), &games); err != nil {
		return nil, err
	}
	return games, nil
}

// AddToWatchlist saves a game to a profile's watchlist
func (c *Client) AddToWatchlist(ctx context.Context, profileID, gameID string) error {
	return c.Post(ctx, pathf("/profiles/%s/watchlist", profileID), watchlistAddRequest{GameID: gameID}, nil)
}

// RemoveFromWatchlist removes a game from a profile's watchlist
func (c *Client) RemoveFromWatchlist(ctx context.Context, profileID, gameID string) error {
	return c.Delete(ctx, pathf("/profiles/%s/watchlist/%s", profileID, gameID))
}

// ExportWatchlistReport downloads the admin watchlist report as CSV
func (c *Client) ExportWatchlistReport(ctx context.Context) ([]byte, error) {
	return c.Raw(ctx, "/profiles/export/watchlist-report", "text/csv")
}
