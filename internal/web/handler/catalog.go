package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/catalog"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/web/templates/components"
	"github.com/mcoot/gamerhub/internal/web/templates/pages"
	"github.com/mcoot/gamerhub/internal/workspace"
)

// CatalogHandler handles the catalog pages and the live search fragment
type CatalogHandler struct {
	logger *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{logger: logger}
}

// View renders the main catalog for the active profile
func (h *CatalogHandler) View(w http.ResponseWriter, r *http.Request) {
	h.view(w, r, false)
}

// ProfileView renders the compact catalog of the profile in the path,
// switching to it first when it is not the active one
func (h *CatalogHandler) ProfileView(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	if _, err := ws.UseProfile(r.Context(), mux.Vars(r)["profileId"]); err != nil {
		fail(w, r, err, "Could not open that profile", guard.ProfilesPath)
		return
	}
	h.view(w, r, true)
}

func (h *CatalogHandler) view(w http.ResponseWriter, r *http.Request, compact bool) {
	ws := middleware.GetWorkspace(r.Context())
	v := ws.View(compact)

	// A bare URL shows the remembered filters and page
	if len(r.URL.Query()) > 0 {
		v.SetFilter(filterParams(r))
		v.SetPage(pageParam(r))
	}

	base := r.URL.Path
	results := h.results(r.Context(), ws, v, base)

	games := results.Page.Games
	if s, ok := v.Superset(); ok {
		games = s.Games
	}
	filter := v.Filter()

	data := pages.CatalogData{
		PageData:  pageData(r, "Catalog"),
		Results:   results,
		Genres:    catalog.GenreOptions(games, filter.Genre),
		Platforms: catalog.PlatformOptions(games, filter.Platform),
		Action:    base,
		Compact:   compact,
	}
	render(w, r, pages.Catalog(data))
}

// Search is the debounced live search. Each keystroke is a request; only the
// last one of a burst renders results, the superseded ones get 204 so htmx
// leaves the page alone.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	compact := r.URL.Query().Get("compact") != ""
	v := ws.View(compact)

	params := filterParams(r)
	current := v.Filter()
	v.SetFilter(model.GameFilter{Search: current.Search, Genre: params.Genre, Platform: params.Platform})

	select {
	case committed := <-v.TypeSearch(params.Search):
		if !committed {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	case <-r.Context().Done():
		return
	}

	base := "/catalog"
	if compact {
		if active := ws.Active.Active(); active != nil {
			base = "/catalog/" + active.ID.String()
		}
	}
	render(w, r, components.CatalogResults(h.results(r.Context(), ws, v, base)))
}

func (h *CatalogHandler) results(ctx context.Context, ws *workspace.Workspace, v *catalog.View, base string) components.CatalogResultsData {
	p, err := v.Load(ctx)
	if errors.Is(err, catalog.ErrStale) {
		// Filters moved on while loading; show the newest state instead
		p, err = v.Load(ctx)
	}

	data := components.CatalogResultsData{
		Page:    p,
		Filter:  v.Filter(),
		Kids:    v.Kids(),
		BaseURL: base,
	}
	if err != nil {
		h.logger.Warn("failed to load catalog", slog.String("error", err.Error()))
		data.Error = errorText("Could not load games", err)
	}
	if s, ok := v.Superset(); ok {
		data.Truncated = s.Truncated
	}

	if err := ws.SyncWatchlist(ctx); err != nil {
		h.logger.Warn("failed to load watchlist", slog.String("error", err.Error()))
	}
	data.Rows = rows(ws, p.Games, base)
	return data
}

// rows pairs games with their watchlist state. ret is where toggles return
// to; empty means no toggle.
func rows(ws *workspace.Workspace, games []model.Game, ret string) []components.GameRow {
	out := make([]components.GameRow, 0, len(games))
	for _, g := range games {
		id, ok := model.ResolveGameIdentity(g)
		if !ok {
			continue
		}
		out = append(out, components.GameRow{
			Game:    g,
			ID:      string(id),
			Watched: ws.Watchlist.Has(g),
			Return:  ret,
		})
	}
	return out
}
