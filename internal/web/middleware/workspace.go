package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/gamerhub/internal/workspace"
)

type contextKey string

const (
	workspaceContextKey contextKey = "workspace"
	bindingContextKey   contextKey = "session-binding"

	// SessionCookieName holds the browser session id the workspace is keyed by
	SessionCookieName = "gh_session"
)

// CookieConfig controls the browser session cookie
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// binding lets a handler reissue the session cookie
type binding struct {
	registry *workspace.Registry
	cfg      CookieConfig
}

// GetWorkspace retrieves the browser's workspace from the request context
// Returns nil outside the Workspace middleware
func GetWorkspace(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(workspaceContextKey).(*workspace.Workspace)
	return ws
}

// Workspace returns middleware that attaches the workspace of the browser
// session. A browser without a session, or presenting an id this server never
// issued, is given a new one.
func Workspace(registry *workspace.Registry, cfg CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessionID(r, registry)
			if err != nil {
				logger.Error("failed to look up session", slog.String("error", err.Error()))
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}
			// Refreshed on every request so the expiry slides
			http.SetCookie(w, cfg.cookie(id))

			ws, err := registry.Get(r.Context(), id)
			if err != nil {
				logger.Error("failed to open workspace", slog.String("error", err.Error()))
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := context.WithValue(r.Context(), workspaceContextKey, ws)
			ctx = context.WithValue(ctx, bindingContextKey, &binding{registry: registry, cfg: cfg})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionID(r *http.Request, registry *workspace.Registry) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || !workspace.ValidID(cookie.Value) {
		return registry.NewID(), nil
	}
	known, err := registry.Known(r.Context(), cookie.Value)
	if err != nil {
		return "", err
	}
	if !known {
		return registry.NewID(), nil
	}
	return cookie.Value, nil
}

// RenewSession moves the browser's session to a new id and sends the new
// cookie. Call it whenever the session gains privileges so that an id known
// before login is worth nothing after it.
func RenewSession(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, error) {
	b, ok := r.Context().Value(bindingContextKey).(*binding)
	current := GetWorkspace(r.Context())
	if !ok || current == nil {
		return nil, errors.New("no browser session on request")
	}

	id, ws, err := b.registry.Rotate(r.Context(), current)
	if err != nil {
		return nil, err
	}

	// Replace the cookie set on the way in rather than sending both
	prefix := SessionCookieName + "="
	header := w.Header()
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}
	http.SetCookie(w, b.cfg.cookie(id))
	return ws, nil
}
