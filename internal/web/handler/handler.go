package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/web/templates/layout"
	"github.com/mcoot/gamerhub/internal/web/templates/pages"
)

// pageData builds the shell data for the current workspace
func pageData(r *http.Request, title string) layout.PageData {
	data := layout.PageData{
		Title: title,
		Flash: middleware.GetFlash(r.Context()),
	}
	if ws := middleware.GetWorkspace(r.Context()); ws != nil {
		data.User = ws.Session.User()
		data.Profile = ws.Active.Active()
		data.Nav = layout.Nav{
			Users: ws.Session.HasPermission(model.PermissionManageUsers),
			Games: ws.Session.HasRole(model.RoleAdmin),
		}
	}
	return data
}

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// fail turns a remote failure into a flash notice and a redirect. A rejected
// token has already torn the session down, so the browser is sent to log in.
func fail(w http.ResponseWriter, r *http.Request, err error, prefix, fallback string) {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		middleware.SetNotice(w, model.Failure("Your session has expired. Please log in again"))
		middleware.Redirect(w, r, guard.LoginPath)
	case errors.Is(err, model.ErrForbidden):
		middleware.SetNotice(w, model.Failure("You do not have permission to do that"))
		middleware.Redirect(w, r, fallback)
	case errors.Is(err, model.ErrNoActiveProfile):
		middleware.SetNotice(w, model.Info("Select a profile to continue"))
		middleware.Redirect(w, r, guard.ProfilesPath)
	default:
		middleware.SetNotice(w, model.Failure(prefix+": "+backend.Message(err)))
		middleware.Redirect(w, r, fallback)
	}
}

// errorText is the inline form of a remote failure
func errorText(prefix string, err error) string {
	return prefix + ": " + backend.Message(err)
}

// safeNext only allows local paths as a post-login destination
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return ""
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func filterParams(r *http.Request) model.GameFilter {
	q := r.URL.Query()
	return model.GameFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Genre:    strings.TrimSpace(q.Get("genre")),
		Platform: strings.TrimSpace(q.Get("platform")),
	}
}

// NotFound renders the 404 page
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = pages.NotFound(pages.NotFoundData{PageData: pageData(r, "Not found")}).Render(r.Context(), w)
}
