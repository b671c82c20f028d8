package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/formlet/formlet/httpx"
)

type ctxKey int

const userIDKey ctxKey = iota

// Authenticated requires a valid bearer token and puts the user id
// claim on the request context.
func Authenticated(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), withUserID).Handler(next)
	}
}

// OptionalAuth authenticates the request if it carries an
// authorization header, and passes it through untouched otherwise.
// Used on the public submission path, where respondents may or may not
// be logged in.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	authenticated := Authenticated(secret)
	return func(next http.Handler) http.Handler {
		withAuth := authenticated(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			withAuth.ServeHTTP(w, r)
		})
	}
}

func withUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
		if !ok || claims[httpx.UserIDClaim] == "" {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims[httpx.UserIDClaim])
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user's id, or "" for anonymous
// requests.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
