package middleware

import (
	"net/http"
	"strings"

	"maisoku/internal/auth"
	"maisoku/internal/httputil"
)

// RequireAuth wraps a handler that needs an authenticated user. Requests
// without a valid bearer token are rejected with 401 before the handler runs.
func RequireAuth(verifier auth.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid authentication token")
				return
			}

			next(w, httputil.WithUserID(r, claims.GetUserID()))
		}
	}
}

// OptionalAuth implements staged authentication: a valid bearer token
// attaches the user ID to the context, an absent or invalid one leaves the
// request anonymous. The handler decides what the anonymous tier gets.
func OptionalAuth(verifier auth.TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				// Invalid token on an optional-auth route degrades to the
				// anonymous tier rather than failing the request.
				next(w, r)
				return
			}

			next(w, httputil.WithUserID(r, claims.GetUserID()))
		}
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
