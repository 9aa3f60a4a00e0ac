package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/catalog"
	"github.com/mcoot/gamerhub/internal/validation"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/web/templates/pages"
)

const (
	adminUsersPath = "/admin/users"
	adminGamesPath = "/admin/games"

	defaultImportCount = 20
)

var (
	roles   = []model.Role{model.RoleUser, model.RoleAdmin, model.RoleOwner}
	ratings = []string{"E", "E10+", "T", "M"}
)

// AdminHandler handles the user and game management screens
type AdminHandler struct {
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(logger *slog.Logger) *AdminHandler {
	return &AdminHandler{logger: logger}
}

// Users renders every account with its profiles. ?edit={id} opens a user in
// the form and ?profile_for={id} opens the new profile form for a user.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.renderUsers(w, r, pages.AdminUsersData{
		Form:          pages.UserFormData{Role: string(model.RoleUser)},
		ProfileUserID: q.Get("profile_for"),
		ProfileForm:   pages.ProfileFormData{Restriction: string(model.RestrictionAdults)},
	}, q.Get("edit"))
}

// CreateUser handles the new user form
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	form := userForm(r)
	ws := middleware.GetWorkspace(r.Context())

	u, err := ws.Admin.CreateUser(r.Context(), form)
	if err != nil {
		h.userFormError(w, r, "", form, err, "Could not create user")
		return
	}
	middleware.SetNotice(w, model.Success("User "+u.Name+" created"))
	http.Redirect(w, r, adminUsersPath, http.StatusSeeOther)
}

// UpdateUser handles the edit user form
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form := userForm(r)
	ws := middleware.GetWorkspace(r.Context())

	u, err := ws.Admin.UpdateUser(r.Context(), id, form)
	if err != nil {
		h.userFormError(w, r, id, form, err, "Could not update user")
		return
	}
	middleware.SetNotice(w, model.Success("User "+u.Name+" updated"))
	http.Redirect(w, r, adminUsersPath, http.StatusSeeOther)
}

// DeleteUser removes an account
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	if err := ws.Admin.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err, "Could not delete user", adminUsersPath)
		return
	}
	middleware.SetNotice(w, model.Success("User deleted"))
	http.Redirect(w, r, adminUsersPath, http.StatusSeeOther)
}

// ChangeRole sets a user's role
func (h *AdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	u, err := ws.Admin.ChangeRole(r.Context(), mux.Vars(r)["id"], r.FormValue("role"))
	if err != nil {
		if fe, ok := validation.AsFieldErrors(err); ok {
			middleware.SetNotice(w, model.Failure(fe["role"]))
			http.Redirect(w, r, adminUsersPath, http.StatusSeeOther)
			return
		}
		fail(w, r, err, "Could not change role", adminUsersPath)
		return
	}
	middleware.SetNotice(w, model.Success(u.Name+" is now "+string(u.Role)))
	http.Redirect(w, r, adminUsersPath, http.StatusSeeOther)
}

// CreateProfile creates a profile for the user in the path
func (h *AdminHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	form := validation.ProfileForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Restriction: strings.ToUpper(strings.TrimSpace(r.FormValue("allowed_rating"))),
	}
	ws := middleware.GetWorkspace(r.Context())

	p, err := ws.Admin.CreateProfile(r.Context(), userID, form)
	if err != nil {
		fe, ok := validation.AsFieldErrors(err)
		if !ok {
			fail(w, r, err, "Could not create profile", adminUsersPath)
			return
		}
		h.renderUsers(w, r, pages.AdminUsersData{
			Form:          pages.UserFormData{Role: string(model.RoleUser)},
			ProfileUserID: userID,
			ProfileForm:   pages.ProfileFormData{Name: form.Name, Restriction: form.Restriction, FieldErrors: fe},
		}, "")
		return
	}
	middleware.SetNotice(w, model.Success("Profile "+p.Name+" created"))
	http.Redirect(w, r, adminUsersPath, http.StatusSeeOther)
}

// DeleteProfile removes any user's profile
func (h *AdminHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	if err := ws.Admin.DeleteProfile(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err, "Could not delete profile", adminUsersPath)
		return
	}
	middleware.SetNotice(w, model.Success("Profile deleted"))
	http.Redirect(w, r, adminUsersPath, http.StatusSeeOther)
}

func userForm(r *http.Request) validation.UserForm {
	return validation.UserForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Role:     strings.ToLower(strings.TrimSpace(r.FormValue("role"))),
	}
}

func (h *AdminHandler) userFormError(w http.ResponseWriter, r *http.Request, id string, form validation.UserForm, err error, prefix string) {
	fe, ok := validation.AsFieldErrors(err)
	if !ok {
		fail(w, r, err, prefix, adminUsersPath)
		return
	}
	h.renderUsers(w, r, pages.AdminUsersData{
		Form: pages.UserFormData{ID: id, Name: form.Name, Email: form.Email, Role: form.Role, FieldErrors: fe},
	}, "")
}

func (h *AdminHandler) renderUsers(w http.ResponseWriter, r *http.Request, data pages.AdminUsersData, editID string) {
	ws := middleware.GetWorkspace(r.Context())

	users, err := ws.Admin.Users(r.Context())
	if err != nil {
		if errors.Is(err, model.ErrUnauthorized) || errors.Is(err, model.ErrForbidden) {
			fail(w, r, err, "", "/")
			return
		}
		data.Error = errorText("Could not load users", err)
	}
	data.Users = users
	data.Roles = roles

	for _, u := range users {
		if editID != "" && u.ID.String() == editID {
			data.Form = pages.UserFormData{ID: editID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
		}
	}

	data.PageData = pageData(r, "Users")
	render(w, r, pages.AdminUsers(data))
}

// Games renders the paged admin game listing. ?edit={id} opens a game in the
// form.
func (h *AdminHandler) Games(w http.ResponseWriter, r *http.Request) {
	data := pages.AdminGamesData{Form: pages.GameFormData{ESRBRating: "E"}}

	if editID := r.URL.Query().Get("edit"); editID != "" {
		ws := middleware.GetWorkspace(r.Context())
		g, err := ws.Admin.Game(r.Context(), editID)
		if err != nil {
			fail(w, r, err, "Could not load the game", adminGamesPath)
			return
		}
		data.Form = gameFormData(editID, *g)
	}
	h.renderGames(w, r, data)
}

// CreateGame handles the new game form
func (h *AdminHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	form, parseErrs := gameForm(r)
	ws := middleware.GetWorkspace(r.Context())

	if len(parseErrs) > 0 {
		h.gameFormError(w, r, "", form, parseErrs, "")
		return
	}
	g, err := ws.Admin.CreateGame(r.Context(), form)
	if err != nil {
		h.gameFormError(w, r, "", form, err, "Could not create game")
		return
	}
	middleware.SetNotice(w, model.Success("Game "+g.Name+" created"))
	http.Redirect(w, r, adminGamesPath, http.StatusSeeOther)
}

// UpdateGame handles the edit game form
func (h *AdminHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form, parseErrs := gameForm(r)
	ws := middleware.GetWorkspace(r.Context())

	if len(parseErrs) > 0 {
		h.gameFormError(w, r, id, form, parseErrs, "")
		return
	}
	g, err := ws.Admin.UpdateGame(r.Context(), id, form)
	if err != nil {
		h.gameFormError(w, r, id, form, err, "Could not update game")
		return
	}
	middleware.SetNotice(w, model.Success("Game "+g.Name+" updated"))
	http.Redirect(w, r, adminGamesPath, http.StatusSeeOther)
}

// DeleteGame removes a game
func (h *AdminHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	if err := ws.Admin.DeleteGame(r.Context(), mux.Vars(r)["id"]); err != nil {
		fail(w, r, err, "Could not delete game", adminGamesPath)
		return
	}
	// The catalogs may be showing it
	ws.Catalog.Invalidate()
	ws.Compact.Invalidate()
	middleware.SetNotice(w, model.Success("Game deleted"))
	http.Redirect(w, r, adminGamesPath, http.StatusSeeOther)
}

// Import imports popular games from the external catalog
func (h *AdminHandler) Import(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(strings.TrimSpace(r.FormValue("count")))
	if err != nil {
		middleware.SetNotice(w, model.Failure("Enter how many games to import"))
		http.Redirect(w, r, adminGamesPath, http.StatusSeeOther)
		return
	}

	ws := middleware.GetWorkspace(r.Context())
	result, err := ws.Admin.Import(r.Context(), validation.ImportForm{Count: count})
	if err != nil {
		if fe, ok := validation.AsFieldErrors(err); ok {
			middleware.SetNotice(w, model.Failure(fe["count"]))
			http.Redirect(w, r, adminGamesPath, http.StatusSeeOther)
			return
		}
		fail(w, r, err, "Could not import games", adminGamesPath)
		return
	}
	ws.Catalog.Invalidate()
	ws.Compact.Invalidate()
	middleware.SetNotice(w, model.Success(strconv.Itoa(result.Imported)+" games imported"))
	http.Redirect(w, r, adminGamesPath, http.StatusSeeOther)
}

// WatchlistReport streams the CSV report of every watchlist
func (h *AdminHandler) WatchlistReport(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	report, err := ws.Admin.WatchlistReport(r.Context())
	if err != nil {
		fail(w, r, err, "Could not export the report", adminGamesPath)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="watchlist-report.csv"`)
	_, _ = w.Write(report)
}

// gameForm reads the game form. Numbers that do not parse are reported
// per field alongside the form.
func gameForm(r *http.Request) (validation.GameForm, validation.FieldErrors) {
	form := validation.GameForm{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Description:     strings.TrimSpace(r.FormValue("description")),
		Platforms:       validation.SplitList(r.FormValue("platforms")),
		Genres:          validation.SplitList(r.FormValue("genres")),
		ESRBRating:      strings.ToUpper(strings.TrimSpace(r.FormValue("esrb_rating"))),
		Released:        strings.TrimSpace(r.FormValue("release_date")),
		BackgroundImage: strings.TrimSpace(r.FormValue("background_image")),
		Website:         strings.TrimSpace(r.FormValue("website")),
	}

	errs := validation.FieldErrors{}
	if v := strings.TrimSpace(r.FormValue("rating")); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs["rating"] = "rating must be a number"
		}
		form.Rating = rating
	}
	if v := strings.TrimSpace(r.FormValue("metacritic")); v != "" {
		score, err := strconv.Atoi(v)
		if err != nil {
			errs["metacritic"] = "metacritic must be a whole number"
		} else {
			form.Metacritic = &score
		}
	}
	return form, errs
}

func gameFormData(id string, g model.Game) pages.GameFormData {
	data := pages.GameFormData{
		ID:              id,
		Name:            g.Name,
		Description:     g.Description,
		Platforms:       strings.Join(g.Platforms, ", "),
		Genres:          strings.Join(g.Genres, ", "),
		Released:        g.Released,
		BackgroundImage: g.BackgroundImage,
		Website:         g.Website,
	}
	data.ESRBRating, _ = g.ContentRating()
	if g.Rating != nil {
		data.Rating = strconv.FormatFloat(*g.Rating, 'f', -1, 64)
	}
	if g.Metacritic != nil {
		data.Metacritic = strconv.Itoa(*g.Metacritic)
	}
	return data
}

func (h *AdminHandler) gameFormError(w http.ResponseWriter, r *http.Request, id string, form validation.GameForm, err error, prefix string) {
	fe, ok := validation.AsFieldErrors(err)
	if !ok {
		fail(w, r, err, prefix, adminGamesPath)
		return
	}

	data := pages.GameFormData{
		ID:              id,
		Name:            form.Name,
		Description:     form.Description,
		Platforms:       r.FormValue("platforms"),
		Genres:          r.FormValue("genres"),
		ESRBRating:      form.ESRBRating,
		Released:        form.Released,
		Rating:          r.FormValue("rating"),
		Metacritic:      r.FormValue("metacritic"),
		BackgroundImage: form.BackgroundImage,
		Website:         form.Website,
		FieldErrors:     fe,
	}
	h.renderGames(w, r, pages.AdminGamesData{Form: data})
}

func (h *AdminHandler) renderGames(w http.ResponseWriter, r *http.Request, data pages.AdminGamesData) {
	ws := middleware.GetWorkspace(r.Context())
	filter := filterParams(r)

	p, err := ws.Admin.Games(r.Context(), filter, pageParam(r))
	if err != nil {
		if errors.Is(err, model.ErrUnauthorized) || errors.Is(err, model.ErrForbidden) {
			fail(w, r, err, "", "/")
			return
		}
		data.Error = errorText("Could not load games", err)
	}

	data.Page = p
	data.Filter = filter
	data.Genres = catalog.GenreOptions(p.Games, filter.Genre)
	data.Platforms = catalog.PlatformOptions(p.Games, filter.Platform)
	data.Ratings = ratings
	if data.ImportCount == 0 {
		data.ImportCount = defaultImportCount
	}
	data.PageData = pageData(r, "Games")
	render(w, r, pages.AdminGames(data))
}
