package middleware

import (
	"net/http"
	"net/url"

	"passwordless-auth/pkg/utils"

	"go.uber.org/zap"
)

// CSRF rejects every non-GET request whose Origin host differs from Host.
// Behind a proxy the Host header must be forwarded unchanged.
func CSRF(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			if !sameOrigin(r) {
				logger.Warn("Cross-origin request blocked",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("origin", r.Header.Get("Origin")),
					zap.String("host", r.Host))
				utils.ResponseForbidden(w, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RefreshSessionCookie rewrites the session cookie with a full max-age on GET
// requests so an active browser keeps it alive.
func RefreshSessionCookie(cookies utils.CookieSettings) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				if token, ok := utils.SessionCookieValue(r); ok {
					utils.SetSessionCookie(w, cookies, token)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || r.Host == "" {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	return u.Host == r.Host
}
