package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys so no other package can
// read or shadow the claims we store.
type contextKey string

const claimsKey contextKey = "claims"

const bearerPrefix = "Bearer "

// RequireAuth guards mutating routes.
//
// The check is a straight pipeline: read the Authorization header, require
// the literal "Bearer " prefix, strip it, hand the rest to
// TokenService.Verify. On success the verified Claims ride the request
// context into the handler. On any failure (header absent, wrong prefix,
// malformed or invalid token) the request short-circuits with 401 before
// the wrapped handler, and therefore any repository call, runs. The
// sub-reason is logged but the response body is the same for all of them;
// callers learn nothing about why.
//
// Any valid token grants access to every protected route; claims carry no
// roles. The admin is the only subject that can obtain one.
func RequireAuth(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				logger.Warn("auth: missing Authorization header",
					slog.String("path", r.URL.Path))
				unauthorized(w)
				return
			}
			if !strings.HasPrefix(header, bearerPrefix) {
				logger.Warn("auth: Authorization header is not a bearer token",
					slog.String("path", r.URL.Path))
				unauthorized(w)
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				logger.Warn("auth: token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the verified claims set by RequireAuth.
// Returns (nil, false) on routes that didn't pass through the middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
