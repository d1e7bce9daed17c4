package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"voxa/internal/utils"
)

// AuthGate applies the browser-facing redirect rules based on the
// session cookie and three route classes:
//
//   - public: the landing page, API routes, static assets, and the
//     health/metrics probes; never redirected
//   - auth-only: /auth pages; a signed-in user is sent to the app (or
//     the redirectTo destination they arrived with)
//   - protected: everything else; an anonymous user is sent to /auth
//     with the original path remembered as redirectTo
//
// The OAuth callback path is exempt from all interference.
func AuthGate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if path == "/auth/callback" {
				next.ServeHTTP(w, r)
				return
			}

			isAuthPage := strings.HasPrefix(path, "/auth")
			isPublicPage := path == "/" || strings.HasPrefix(path, "/api") ||
				strings.HasPrefix(path, "/static") ||
				strings.HasPrefix(path, "/health") || path == "/readyz" || path == "/metrics"
			isProtectedPage := !isPublicPage && !isAuthPage

			_, err := utils.VerifyCookieToken(r, secret)
			authenticated := err == nil

			if authenticated && isAuthPage {
				destination := r.URL.Query().Get("redirectTo")
				if destination == "" || destination == "/auth" {
					destination = "/interview"
				}
				http.Redirect(w, r, destination, http.StatusTemporaryRedirect)
				return
			}

			if !authenticated && isProtectedPage {
				target := "/auth?redirectTo=" + url.QueryEscape(path)
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
