package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/validation"
	"github.com/mcoot/gamerhub/internal/web/middleware"
	"github.com/mcoot/gamerhub/internal/web/templates/pages"
)

// AuthHandler handles login, registration, logout and account settings
type AuthHandler struct {
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(v *validation.Validator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		validator: v,
		logger:    logger,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetWorkspace(r.Context()).Session.Authenticated() {
		// Already logged in
		http.Redirect(w, r, guard.ProfilesPath, http.StatusSeeOther)
		return
	}

	render(w, r, pages.Login(pages.LoginData{
		PageData: pageData(r, "Log in"),
		Next:     safeNext(r.URL.Query().Get("next")),
	}))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, pages.LoginData{Error: "Invalid form data"})
		return
	}

	form := validation.LoginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	data := pages.LoginData{Email: form.Email, Next: safeNext(r.FormValue("next"))}

	if err := h.validator.Struct(form); err != nil {
		data.FieldErrors, _ = validation.AsFieldErrors(err)
		h.renderLogin(w, r, data)
		return
	}

	ws := middleware.GetWorkspace(r.Context())
	user, err := ws.Session.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		h.logger.Info("login failed", slog.String("email", form.Email), slog.String("error", err.Error()))
		if errors.Is(err, model.ErrUnauthorized) {
			data.Error = "Invalid email or password"
		} else {
			data.Error = errorText("Could not log in", err)
		}
		h.renderLogin(w, r, data)
		return
	}

	if !h.renewSession(w, r) {
		data.Error = "Could not log in. Please try again."
		h.renderLogin(w, r, data)
		return
	}

	middleware.SetNotice(w, model.Success("Welcome back, "+user.Name+"!"))
	target := data.Next
	if target == "" {
		target = guard.ProfilesPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RegisterPage renders the registration page
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetWorkspace(r.Context()).Session.Authenticated() {
		http.Redirect(w, r, guard.ProfilesPath, http.StatusSeeOther)
		return
	}

	render(w, r, pages.Register(pages.RegisterData{PageData: pageData(r, "Register")}))
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, pages.RegisterData{Error: "Invalid form data"})
		return
	}

	form := validation.RegisterForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm_password"),
	}
	data := pages.RegisterData{Name: form.Name, Email: form.Email}

	if err := h.validator.Struct(form); err != nil {
		data.FieldErrors, _ = validation.AsFieldErrors(err)
		h.renderRegister(w, r, data)
		return
	}

	ws := middleware.GetWorkspace(r.Context())
	user, err := ws.Session.Register(r.Context(), form.Input())
	if err != nil {
		h.logger.Info("registration failed", slog.String("email", form.Email), slog.String("error", err.Error()))
		msg := backend.Message(err)
		if strings.Contains(strings.ToLower(msg), "email") {
			data.FieldErrors = map[string]string{"email": msg}
		} else {
			data.Error = "Registration failed: " + msg
		}
		h.renderRegister(w, r, data)
		return
	}

	if !h.renewSession(w, r) {
		data.Error = "Your account was created but could not be logged in. Please log in."
		h.renderRegister(w, r, data)
		return
	}

	middleware.SetNotice(w, model.Success("Account created! Welcome, "+user.Name+"!"))
	http.Redirect(w, r, guard.ProfilesPath, http.StatusSeeOther)
}

// renewSession gives a freshly logged in browser a new session id. On failure
// the login is undone rather than kept under the old id.
func (h *AuthHandler) renewSession(w http.ResponseWriter, r *http.Request) bool {
	if _, err := middleware.RenewSession(w, r); err != nil {
		h.logger.Error("failed to renew browser session", slog.String("error", err.Error()))
		if err := middleware.GetWorkspace(r.Context()).Session.Logout(r.Context()); err != nil {
			h.logger.Error("failed to clear session", slog.String("error", err.Error()))
		}
		return false
	}
	return true
}

// Logout ends the session and everything scoped to it
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ws := middleware.GetWorkspace(r.Context())
	if err := ws.Session.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear session", slog.String("error", err.Error()))
	}

	middleware.SetNotice(w, model.Info("You have been logged out"))
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

// SettingsPage renders the account settings page
func (h *AuthHandler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	data := pages.SettingsData{PageData: pageData(r, "Settings")}
	data.Name = data.User.Name
	render(w, r, pages.Settings(data))
}

// UpdateSettings changes the user's name and/or password
func (h *AuthHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetNotice(w, model.Failure("Invalid form data"))
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	form := validation.SettingsForm{
		Name:            strings.TrimSpace(r.FormValue("name")),
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
		Confirm:         r.FormValue("confirm_password"),
	}
	data := pages.SettingsData{Name: form.Name}

	if err := h.validator.Struct(form); err != nil {
		data.FieldErrors, _ = validation.AsFieldErrors(err)
		h.renderSettings(w, r, data)
		return
	}

	ws := middleware.GetWorkspace(r.Context())
	_, err := ws.Session.UpdateAccount(r.Context(), form.Update())
	switch {
	case err == nil:
		middleware.SetNotice(w, model.Success("Settings updated"))
	case errors.Is(err, model.ErrNoChanges):
		middleware.SetNotice(w, model.Info("No changes were made"))
	case errors.Is(err, model.ErrCurrentPassword):
		data.FieldErrors = map[string]string{"current_password": err.Error()}
		h.renderSettings(w, r, data)
		return
	default:
		fail(w, r, err, "Could not update settings", "/settings")
		return
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, data pages.LoginData) {
	data.PageData = pageData(r, "Log in")
	render(w, r, pages.Login(data))
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, data pages.RegisterData) {
	data.PageData = pageData(r, "Register")
	render(w, r, pages.Register(data))
}

func (h *AuthHandler) renderSettings(w http.ResponseWriter, r *http.Request, data pages.SettingsData) {
	data.PageData = pageData(r, "Settings")
	render(w, r, pages.Settings(data))
}
