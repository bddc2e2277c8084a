package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/helmsleads/stocktake/internal/config"
)

// APIKeyAuth validates the X-API-Key header against the configured keys.
// When RequireAPIKey is false, all requests pass through; session-level
// authentication belongs to the surrounding application.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				slog.Warn("auth: missing API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, `{"error":"missing API key","code":"AUTH001"}`, http.StatusUnauthorized)
				return
			}
			if !keyMatches(key, cfg.APIKeys) {
				slog.Warn("auth: invalid API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, `{"error":"invalid API key","code":"AUTH002"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// keyMatches compares against every configured key in constant time so
// the comparison duration does not reveal which key matched.
func keyMatches(key string, validKeys []string) bool {
	matched := 0
	for _, valid := range validKeys {
		matched |= subtle.ConstantTimeCompare([]byte(key), []byte(valid))
	}
	return matched == 1
}
