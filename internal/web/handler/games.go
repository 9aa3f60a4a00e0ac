package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/web/templates/components"
	"github.com/mcoot/gamerhub/internal/web/templates/pages"
)

// GameHandler handles the game details page
type GameHandler struct {
	logger *slog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(logger *slog.Logger) *GameHandler {
	return &GameHandler{logger: logger}
}

// View renders a game. The server's age check decides whether the details
// are shown to the active profile; a failed check shows nothing.
func (h *GameHandler) View(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ws := middleware.GetWorkspace(r.Context())

	game, err := ws.Game(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		NotFound(w, r)
		return
	}
	if err != nil {
		fail(w, r, err, "Could not load the game", "/catalog")
		return
	}

	data := pages.GameData{Game: *game}
	canonical, _ := model.ResolveGameIdentity(*game)
	data.Watch = components.WatchButtonData{ID: string(canonical), Return: "/games/" + id}

	allowed, err := ws.AgeGate.Check(r.Context(), *game, ws.Active.Active())
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		fail(w, r, err, "", "/catalog")
		return
	case err != nil:
		data.AgeCheckError = errorText("Could not verify the age rating", err)
	default:
		data.Allowed = allowed
	}

	if data.Allowed {
		if err := ws.SyncWatchlist(r.Context()); err != nil {
			h.logger.Warn("failed to load watchlist", slog.String("error", err.Error()))
		}
		data.Watch.Watched = ws.Watchlist.Has(*game)
	}

	data.PageData = pageData(r, game.Name)
	render(w, r, pages.Game(data))
}
