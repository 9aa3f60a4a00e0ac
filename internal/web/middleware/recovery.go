package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gamerhub/internal/middleware"
)

// Recovery creates panic recovery middleware for the web interface
// Returns an HTML error page on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Error | GamerHub</title></head>
<body>
<h1>Something went wrong</h1>
<p>The page could not be shown. Your session and watchlists are unaffected.</p>
<p><a href="/">Back to the start</a></p>
</body>
</html>`))
}
