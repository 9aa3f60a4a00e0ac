// Package components holds fragments rendered on their own for HTMX swaps
// and inside full pages
package components

import (
	"github.com/a-h/templ"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/catalog"
	"github.com/mcoot/gamerhub/internal/web/templates"
)

// GameRow is one game card with its watchlist state
type GameRow struct {
	Game    model.Game
	ID      string
	Watched bool
	// Return is where the watchlist toggle goes back to. The card has no
	// toggle when it is empty.
	Return string
}

// CatalogResultsData is the result grid with its pagination
type CatalogResultsData struct {
	Page      catalog.Page
	Rows      []GameRow
	Filter    model.GameFilter
	Kids      bool
	Truncated bool
	// BaseURL is the page the pagination links point at
	BaseURL string
	// Error is shown above the last good page when a load failed
	Error string
}

// CatalogResults renders the catalog grid, or its empty state
func CatalogResults(data CatalogResultsData) templ.Component {
	return templates.Component("catalog-results", data)
}

// WatchButtonData is a watchlist toggle for one game
type WatchButtonData struct {
	ID      string
	Watched bool
	Return  string
}

// WatchButton renders the watchlist toggle form
func WatchButton(data WatchButtonData) templ.Component {
	return templates.Component("watch-button", data)
}
