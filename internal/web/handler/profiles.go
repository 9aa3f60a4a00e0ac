package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/validation"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/web/templates/pages"
)

// ProfileHandler handles profile selection and management
type ProfileHandler struct {
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{logger: logger}
}

// List renders the user's profiles. ?edit={id} opens one in the form.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	form := pages.ProfileFormData{Restriction: string(model.RestrictionAdults)}
	h.renderList(w, r, form, r.URL.Query().Get("edit"))
}

// Create handles the new profile form
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	ws := middleware.GetWorkspace(r.Context())
	p, err := ws.Profiles.Create(r.Context(), form)
	if err != nil {
		h.handleFormError(w, r, "", form, err, "Could not create profile")
		return
	}

	middleware.SetNotice(w, model.Success("Profile "+p.Name+" created"))
	http.Redirect(w, r, guard.ProfilesPath, http.StatusSeeOther)
}

// Update handles the edit profile form
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	ws := middleware.GetWorkspace(r.Context())
	p, err := ws.Profiles.Update(r.Context(), id, form)
	if err != nil {
		h.handleFormError(w, r, id, form, err, "Could not update profile")
		return
	}

	middleware.SetNotice(w, model.Success("Profile "+p.Name+" updated"))
	http.Redirect(w, r, guard.ProfilesPath, http.StatusSeeOther)
}

// Delete removes a profile
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ws := middleware.GetWorkspace(r.Context())

	if err := ws.Profiles.Delete(r.Context(), id); err != nil {
		fail(w, r, err, "Could not delete profile", guard.ProfilesPath)
		return
	}

	middleware.SetNotice(w, model.Success("Profile deleted"))
	http.Redirect(w, r, guard.ProfilesPath, http.StatusSeeOther)
}

// Select makes a profile the active one and opens the catalog
func (h *ProfileHandler) Select(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ws := middleware.GetWorkspace(r.Context())

	p, err := ws.Profiles.Select(r.Context(), id)
	if err != nil {
		fail(w, r, err, "Could not select profile", guard.ProfilesPath)
		return
	}

	h.logger.Info("profile selected", slog.String("profile_id", id), slog.String("restriction", string(p.Restriction)))
	middleware.SetNotice(w, model.Success("Browsing as "+p.Name))
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

func (h *ProfileHandler) parseForm(w http.ResponseWriter, r *http.Request) (validation.ProfileForm, bool) {
	if err := r.ParseForm(); err != nil {
		middleware.SetNotice(w, model.Failure("Invalid form data"))
		http.Redirect(w, r, guard.ProfilesPath, http.StatusSeeOther)
		return validation.ProfileForm{}, false
	}
	return validation.ProfileForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Restriction: strings.ToUpper(strings.TrimSpace(r.FormValue("allowed_rating"))),
	}, true
}

// handleFormError re-renders the form for validation failures and flashes
// anything else
func (h *ProfileHandler) handleFormError(w http.ResponseWriter, r *http.Request, id string, form validation.ProfileForm, err error, prefix string) {
	fe, ok := validation.AsFieldErrors(err)
	if !ok {
		fail(w, r, err, prefix, guard.ProfilesPath)
		return
	}
	h.renderList(w, r, pages.ProfileFormData{
		ID:          id,
		Name:        form.Name,
		Restriction: form.Restriction,
		FieldErrors: fe,
	}, "")
}

func (h *ProfileHandler) renderList(w http.ResponseWriter, r *http.Request, form pages.ProfileFormData, editID string) {
	ws := middleware.GetWorkspace(r.Context())
	data := pages.ProfilesData{Form: form}

	profiles, err := ws.Profiles.List(r.Context())
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		fail(w, r, err, "", guard.LoginPath)
		return
	case err != nil:
		data.Error = errorText("Could not load profiles", err)
	}
	data.Profiles = profiles

	for _, p := range profiles {
		if editID != "" && p.ID.String() == editID {
			data.Form = pages.ProfileFormData{ID: editID, Name: p.Name, Restriction: string(p.Restriction)}
		}
	}
	if active := ws.Active.Active(); active != nil {
		data.ActiveID = active.ID.String()
	}

	data.PageData = pageData(r, "Profiles")
	render(w, r, pages.Profiles(data))
}
