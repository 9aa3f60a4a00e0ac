package backend

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mcoot/gamerhub/internal/model"
)

// ListQuery selects one page of a game listing
type ListQuery struct {
	Page     int
	PageSize int
	Filter   model.GameFilter
}

func (q ListQuery) encode() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Filter.Search != "" {
		v.Set("search", q.Filter.Search)
	}
	if q.Filter.Genre != "" {
		v.Set("genre", q.Filter.Genre)
	}
	if q.Filter.Platform != "" {
		v.Set("platform", q.Filter.Platform)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ListPublicGames returns one page of the public catalog
func (c *Client) ListPublicGames(ctx context.Context, q ListQuery) (*model.GameListing, error) {
	var listing model.GameListing
	if err := c.Get(ctx, "/games/public"+q.encode(), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListGames returns one page of the admin game listing
func (c *Client) ListGames(ctx context.Context, q ListQuery) (*model.GameListing, error) {
	var listing model.GameListing
	if err := c.Get(ctx, "/games"+q.encode(), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetGame returns a single game
func (c *Client) GetGame(ctx context.Context, id string) (*model.Game, error) {
	var game model.Game
	if err := c.Get(ctx, pathf("/games/%s", id), &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// CreateGame adds a game to the catalog
func (c *Client) CreateGame(ctx context.Context, input model.GameInput) (*model.Game, error) {
	var game model.Game
	if err := c.Post(ctx, "/games", input, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// UpdateGame updates a catalog game
func (c *Client) UpdateGame(ctx context.Context, id string, input model.GameInput) (*model.Game, error) {
	var game model.Game
	if err := c.Put(ctx, pathf("/games/%s", id), input, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// DeleteGame removes a game from the catalog
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	return c.Delete(ctx, pathf("/games/%s", id))
}

type importRequest struct {
	Count int `json:"cantidad"`
}

// ImportResult reports a popular-games import
type ImportResult struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

// ImportPopular asks the API to import count popular games from the external catalog
func (c *Client) ImportPopular(ctx context.Context, count int) (*ImportResult, error) {
	var result ImportResult
	if err := c.Post(ctx, "/games/import-popular", importRequest{Count: count}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type validateAgeResponse struct {
	IsAllowed bool `json:"isAllowed"`
}

// ValidateAge asks the API whether a profile may view a game
func (c *Client) ValidateAge(ctx context.Context, gameID, profileID string) (bool, error) {
	var resp validateAgeResponse
	if err := c.Get(ctx, pathf("/games/validate-age/%s/%s", gameID, profileID), &resp); err != nil {
		return false, err
	}
	return resp.IsAllowed, nil
}
