package utils

import (
	"net/http"
	"strings"
	"time"
)

const (
	SessionCookieName  = "session"
	secureCookiePrefix = "__Secure-"
	bearerPrefix       = "Bearer "
)

// CookieSettings holds the transport decisions for the session cookie.
type CookieSettings struct {
	Production bool
	MaxAge     time.Duration
}

// Name returns the cookie name, prefixed with __Secure- in production.
func (s CookieSettings) Name() string {
	if s.Production {
		return secureCookiePrefix + SessionCookieName
	}
	return SessionCookieName
}

func (s CookieSettings) sameSite() http.SameSite {
	if s.Production {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}

// SetSessionCookie writes the raw session token to the client.
func SetSessionCookie(w http.ResponseWriter, s CookieSettings, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.Production,
		SameSite: s.sameSite(),
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(w http.ResponseWriter, s CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Production,
		SameSite: s.sameSite(),
	})
}

// SessionCookieValue returns the session token carried by either cookie name.
func SessionCookieValue(r *http.Request) (string, bool) {
	for _, name := range []string{secureCookiePrefix + SessionCookieName, SessionCookieName} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// BearerToken extracts the value of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	return token, token != ""
}
