package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/web/templates/components"
	"github.com/mcoot/gamerhub/internal/web/templates/pages"
)

// WatchlistHandler handles the watchlist page and watchlist mutations
type WatchlistHandler struct {
	logger *slog.Logger
}

// NewWatchlistHandler creates a new WatchlistHandler
func NewWatchlistHandler(logger *slog.Logger) *WatchlistHandler {
	return &WatchlistHandler{logger: logger}
}

// View renders the active profile's watchlist
func (h *WatchlistHandler) View(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	data := pages.WatchlistData{}

	if err := ws.SyncWatchlist(r.Context()); err != nil {
		if errors.Is(err, model.ErrUnauthorized) || errors.Is(err, model.ErrNoActiveProfile) {
			fail(w, r, err, "", guard.ProfilesPath)
			return
		}
		data.Error = errorText("Could not load the watchlist", err)
	}

	data.Rows = rows(ws, ws.Watchlist.Games(), "")
	data.PageData = pageData(r, "Watchlist")
	render(w, r, pages.Watchlist(data))
}

// ProfileView renders the watchlist of the profile in the path
func (h *WatchlistHandler) ProfileView(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	if _, err := ws.UseProfile(r.Context(), mux.Vars(r)["profileId"]); err != nil {
		fail(w, r, err, "Could not open that profile", guard.ProfilesPath)
		return
	}
	h.View(w, r)
}

// Toggle adds the game when it is not watched and removes it when it is
func (h *WatchlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	back := safeNext(r.FormValue("return"))
	if back == "" {
		back = "/catalog"
	}
	ws := middleware.GetWorkspace(r.Context())

	if err := ws.SyncWatchlist(r.Context()); err != nil {
		fail(w, r, err, "Could not load the watchlist", back)
		return
	}
	game, err := ws.Game(r.Context(), id)
	if err != nil {
		fail(w, r, err, "Could not find that game", back)
		return
	}

	outcome, err := ws.Watchlist.Toggle(r.Context(), *game)
	if err != nil {
		h.logger.Info("watchlist toggle failed", slog.String("game_id", id), slog.String("error", err.Error()))
		if errors.Is(err, model.ErrUnauthorized) || errors.Is(err, model.ErrNoActiveProfile) {
			fail(w, r, err, "", back)
			return
		}
	}

	if middleware.IsHTMX(r) {
		setTrigger(w, outcome.Notice)
		render(w, r, components.WatchButton(components.WatchButtonData{ID: id, Watched: outcome.Present, Return: back}))
		return
	}
	middleware.SetNotice(w, outcome.Notice)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Remove takes the game off the watchlist
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ws := middleware.GetWorkspace(r.Context())

	if err := ws.SyncWatchlist(r.Context()); err != nil {
		fail(w, r, err, "Could not load the watchlist", "/watchlist")
		return
	}

	outcome, err := ws.Watchlist.Remove(r.Context(), id)
	if err != nil {
		h.logger.Info("watchlist remove failed", slog.String("game_id", id), slog.String("error", err.Error()))
		if errors.Is(err, model.ErrUnauthorized) {
			fail(w, r, err, "", "/watchlist")
			return
		}
	}
	middleware.SetNotice(w, outcome.Notice)
	http.Redirect(w, r, "/watchlist", http.StatusSeeOther)
}

// setTrigger raises a "notice" event for htmx swaps, which cannot carry a
// flash cookie to a page render
func setTrigger(w http.ResponseWriter, n model.Notice) {
	if n.Empty() {
		return
	}
	payload, err := json.Marshal(map[string]any{"notice": map[string]string{
		"level":   string(n.Level),
		"message": n.Message,
	}})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}
