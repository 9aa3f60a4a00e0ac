package middleware

import (
	"net/http"
	"net/url"

	"github.com/mcoot/gamerhub/internal/services/guard"
)

// Guard returns middleware that only lets requests meeting req through.
// Denied requests are redirected with a flash notice and never reach the
// protected handler. Requires the Workspace middleware.
func Guard(req guard.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws := GetWorkspace(r.Context())
			if ws == nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			decision := guard.Evaluate(ws.Subject(), req)
			if decision.Allowed() {
				next.ServeHTTP(w, r)
				return
			}
			if decision.State == guard.StateLoading {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}

			target := decision.Redirect
			if decision.State == guard.StateUnauthenticated && r.Method == http.MethodGet {
				// Return to the original destination after login
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			SetNotice(w, decision.Notice)
			Redirect(w, r, target)
		})
	}
}

// Redirect sends the browser to target. HTMX requests get an HX-Redirect
// so the whole page navigates instead of swapping a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// IsHTMX reports whether the request was issued by htmx
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
