package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/54b3r/recall-go/internal/logging"
)

// authMiddleware gates a handler behind Bearer token auth. An empty apiKey
// disables auth entirely (the startup warning lives in New, not here, so the
// hot path stays silent).
//
// Protected routes must supply:
//
//	Authorization: Bearer <apiKey>
//
// Failures answer 401 with a WWW-Authenticate challenge. The presented token
// value is never logged, only whether one was present.
func authMiddleware(apiKey string, next http.Handler) http.Handler {
	if apiKey == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		switch {
		case token == "":
			logging.FromContext(r.Context()).Warn("auth: missing Authorization header",
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="recall"`)
			http.Error(w, "authorization required", http.StatusUnauthorized)

		case subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1:
			logging.FromContext(r.Context()).Warn("auth: invalid token",
				slog.String("path", r.URL.Path),
				slog.Bool("token_present", true),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="recall" error="invalid_token"`)
			http.Error(w, "invalid token", http.StatusUnauthorized)

		default:
			next.ServeHTTP(w, r)
		}
	})
}

// bearerToken pulls the token out of "Authorization: Bearer <token>".
// The scheme comparison is case-insensitive per RFC 7235. Returns "" for a
// missing or malformed header.
func bearerToken(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(hdr, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
