package pages

import (
	"github.com/a-h/templ"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/catalog"
	"github.com/mcoot/gamerhub/internal/web/templates"
	"github.com/mcoot/gamerhub/internal/web/templates/components"
	"github.com/mcoot/gamerhub/internal/web/templates/layout"
)

func page(data layout.PageData, name string, body any) templ.Component {
	return layout.Page(data, templates.Component(name, body))
}

// HomeData is the landing page
type HomeData struct {
	layout.PageData
}

// Home renders the landing page
func Home(data HomeData) templ.Component {
	return page(data.PageData, "home", data)
}

// LoginData is the login page
type LoginData struct {
	layout.PageData
	Email       string
	Next        string
	Error       string
	FieldErrors map[string]string
}

// Login renders the login page
func Login(data LoginData) templ.Component {
	return page(data.PageData, "login", data)
}

// RegisterData is the registration page
type RegisterData struct {
	layout.PageData
	Name        string
	Email       string
	Error       string
	FieldErrors map[string]string
}

// Register renders the registration page
func Register(data RegisterData) templ.Component {
	return page(data.PageData, "register", data)
}

// ProfileFormData is the create or edit profile form
type ProfileFormData struct {
	// ID is empty when creating
	ID          string
	Name        string
	Restriction string
	FieldErrors map[string]string
}

// ProfilesData is the profile selection and management page
type ProfilesData struct {
	layout.PageData
	Profiles []model.Profile
	ActiveID string
	Form     ProfileFormData
	Error    string
}

// Profiles renders the profile selection page
func Profiles(data ProfilesData) templ.Component {
	return page(data.PageData, "profiles", data)
}

// CatalogData is the catalog page
type CatalogData struct {
	layout.PageData
	Results   components.CatalogResultsData
	Genres    []string
	Platforms []string
	// Action is the URL the filter form submits to
	Action  string
	Compact bool
}

// Catalog renders the catalog page
func Catalog(data CatalogData) templ.Component {
	return page(data.PageData, "catalog", data)
}

// GameData is the game details page
type GameData struct {
	layout.PageData
	Game    model.Game
	Watch   components.WatchButtonData
	Allowed bool
	// AgeCheckError is set when the server could not answer the age check
	AgeCheckError string
}

// Game renders the game details page
func Game(data GameData) templ.Component {
	return page(data.PageData, "game", data)
}

// WatchlistData is the watchlist page
type WatchlistData struct {
	layout.PageData
	Rows  []components.GameRow
	Error string
}

// Watchlist renders the active profile's watchlist
func Watchlist(data WatchlistData) templ.Component {
	return page(data.PageData, "watchlist", data)
}

// SettingsData is the account settings page
type SettingsData struct {
	layout.PageData
	Name        string
	FieldErrors map[string]string
}

// Settings renders the account settings page
func Settings(data SettingsData) templ.Component {
	return page(data.PageData, "settings", data)
}

// UserFormData is the admin create or edit user form
type UserFormData struct {
	ID          string
	Name        string
	Email       string
	Role        string
	FieldErrors map[string]string
}

// AdminUsersData is the admin user management page
type AdminUsersData struct {
	layout.PageData
	Users       []model.User
	Roles       []model.Role
	Form        UserFormData
	ProfileForm ProfileFormData
	// ProfileUserID is the user the profile form creates for
	ProfileUserID string
	Error         string
}

// AdminUsers renders the admin user management page
func AdminUsers(data AdminUsersData) templ.Component {
	return page(data.PageData, "admin-users", data)
}

// GameFormData is the admin create or edit game form
type GameFormData struct {
	ID              string
	Name            string
	Description     string
	Platforms       string
	Genres          string
	ESRBRating      string
	Released        string
	Rating          string
	Metacritic      string
	BackgroundImage string
	Website         string
	FieldErrors     map[string]string
}

// AdminGamesData is the admin game management page
type AdminGamesData struct {
	layout.PageData
	Page        catalog.Page
	Filter      model.GameFilter
	Genres      []string
	Platforms   []string
	Ratings     []string
	Form        GameFormData
	ImportCount int
	Error       string
}

// AdminGames renders the admin game management page
func AdminGames(data AdminGamesData) templ.Component {
	return page(data.PageData, "admin-games", data)
}

// NotFoundData is the 404 page
type NotFoundData struct {
	layout.PageData
}

// NotFound renders the 404 page
func NotFound(data NotFoundData) templ.Component {
	return page(data.PageData, "not-found", data)
}
