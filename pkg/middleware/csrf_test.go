package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"passwordless-auth/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCSRF(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CSRF(zap.NewNop())(next)

	tests := []struct {
		name   string
		method string
		origin string
		want   int
	}{
		{"get passes without origin", http.MethodGet, "", http.StatusOK},
		{"same origin post", http.MethodPost, "https://auth.example.com", http.StatusOK},
		{"missing origin", http.MethodPost, "", http.StatusForbidden},
		{"foreign origin", http.MethodPost, "https://evil.example.net", http.StatusForbidden},
		{"different port", http.MethodPost, "https://auth.example.com:8443", http.StatusForbidden},
		{"garbage origin", http.MethodDelete, "::not a url", http.StatusForbidden},
		{"null origin", http.MethodPost, "null", http.StatusForbidden},
		{"head without origin", http.MethodHead, "", http.StatusForbidden},
		{"options without origin", http.MethodOptions, "", http.StatusForbidden},
		{"same origin options", http.MethodOptions, "https://auth.example.com", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "https://auth.example.com/api/login", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRefreshSessionCookie(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RefreshSessionCookie(utils.CookieSettings{Production: true, MaxAge: time.Hour})(next)

	t.Run("get rewrites the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "__Secure-session", Value: "tok"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "__Secure-session", cookies[0].Name)
		assert.Equal(t, 3600, cookies[0].MaxAge)
	})

	t.Run("post is left alone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Result().Cookies())
	})
}
