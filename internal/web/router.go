package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/validation"
	"github.com/mcoot/gamerhub/internal/web/handler"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/workspace"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger    *slog.Logger
	Registry  *workspace.Registry
	Validator *validation.Validator
	Cookie    middleware.CookieConfig
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	metricsMiddleware := middleware.Metrics()
	flashMiddleware := middleware.Flash()
	workspaceMiddleware := middleware.Workspace(cfg.Registry, cfg.Cookie, cfg.Logger)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)

	// Create handlers
	homeHandler := handler.NewHomeHandler()
	authHandler := handler.NewAuthHandler(cfg.Validator, cfg.Logger)
	profileHandler := handler.NewProfileHandler(cfg.Logger)
	catalogHandler := handler.NewCatalogHandler(cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.Logger)
	watchlistHandler := handler.NewWatchlistHandler(cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.Logger)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Public routes (the workspace still feeds the nav)
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(workspaceMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)

	// Account routes (session required, no profile yet)
	account := r.NewRoute().Subrouter()
	account.Use(flashMiddleware)
	account.Use(workspaceMiddleware)
	account.Use(middleware.Guard(guard.LoggedIn()))
	account.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	account.HandleFunc("/settings", authHandler.SettingsPage).Methods(http.MethodGet)
	account.HandleFunc("/settings", authHandler.UpdateSettings).Methods(http.MethodPost)
	account.HandleFunc("/profiles", profileHandler.List).Methods(http.MethodGet)
	account.HandleFunc("/profiles", profileHandler.Create).Methods(http.MethodPost)
	account.HandleFunc("/profiles/{id}", profileHandler.Update).Methods(http.MethodPost)
	account.HandleFunc("/profiles/{id}/delete", profileHandler.Delete).Methods(http.MethodPost)
	account.HandleFunc("/profiles/{id}/select", profileHandler.Select).Methods(http.MethodPost)

	// Per-profile routes switch profile themselves, so they only need a session
	// Registered ahead of /catalog/{profileId}
	account.Handle("/catalog/search", middleware.Guard(guard.AnyProfile())(http.HandlerFunc(catalogHandler.Search))).Methods(http.MethodGet)
	account.HandleFunc("/catalog/{profileId}", catalogHandler.ProfileView).Methods(http.MethodGet)
	account.HandleFunc("/watchlist/{profileId}", watchlistHandler.ProfileView).Methods(http.MethodGet)

	// Browsing routes (active profile required)
	browsing := r.NewRoute().Subrouter()
	browsing.Use(flashMiddleware)
	browsing.Use(workspaceMiddleware)
	browsing.Use(middleware.Guard(guard.AnyProfile()))
	browsing.HandleFunc("/catalog", catalogHandler.View).Methods(http.MethodGet)
	browsing.HandleFunc("/games/{id}", gameHandler.View).Methods(http.MethodGet)
	browsing.HandleFunc("/watchlist", watchlistHandler.View).Methods(http.MethodGet)
	browsing.HandleFunc("/watchlist/{id}/toggle", watchlistHandler.Toggle).Methods(http.MethodPost)
	browsing.HandleFunc("/watchlist/{id}/remove", watchlistHandler.Remove).Methods(http.MethodPost)

	// Admin routes
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(flashMiddleware)
	admin.Use(workspaceMiddleware)
	admin.Use(middleware.Guard(guard.Role(model.RoleAdmin)))
	admin.HandleFunc("/users", adminHandler.Users).Methods(http.MethodGet)
	admin.HandleFunc("/users", adminHandler.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}", adminHandler.UpdateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/delete", adminHandler.DeleteUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/role", adminHandler.ChangeRole).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/profiles", adminHandler.CreateProfile).Methods(http.MethodPost)
	admin.HandleFunc("/profiles/{id}/delete", adminHandler.DeleteProfile).Methods(http.MethodPost)
	admin.HandleFunc("/games", adminHandler.Games).Methods(http.MethodGet)
	admin.HandleFunc("/games", adminHandler.CreateGame).Methods(http.MethodPost)
	admin.HandleFunc("/games/import", adminHandler.Import).Methods(http.MethodPost)
	admin.HandleFunc("/games/{id}", adminHandler.UpdateGame).Methods(http.MethodPost)
	admin.HandleFunc("/games/{id}/delete", adminHandler.DeleteGame).Methods(http.MethodPost)
	admin.HandleFunc("/reports/watchlist.csv", adminHandler.WatchlistReport).Methods(http.MethodGet)

	// Router middleware does not run for unmatched paths
	r.NotFoundHandler = recoveryMiddleware(flashMiddleware(workspaceMiddleware(http.HandlerFunc(handler.NotFound))))

	return r
}
