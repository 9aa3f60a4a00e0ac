package handler

import (
	"net/http"

	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/web/templates/pages"
)

// HomeHandler handles the landing page
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home renders the landing page. Logged in users go straight to their
// profiles, carrying along any notice meant for this page.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	if ws.Session.Authenticated() {
		if f := middleware.GetFlash(r.Context()); f != nil {
			middleware.SetFlash(w, f.Type, f.Message)
		}
		http.Redirect(w, r, guard.ProfilesPath, http.StatusSeeOther)
		return
	}

	render(w, r, pages.Home(pages.HomeData{PageData: pageData(r, "Home")}))
}
