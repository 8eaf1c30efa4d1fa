package main

import (
	"context"
	"net/http"
	"strings"
)

// authUser is the identity the middleware resolves from a bearer token.
type authUser struct {
	ID   string
	Name string
}

type ctxKey int

const ctxKeyUser ctxKey = 0

// requireAuth verifies the Authorization header and attaches the resolved
// identity to the request context. Missing, malformed, expired and
// badly-signed tokens all fail the same way.
func (a *app) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			errorJSON(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		claims, err := a.tokens.parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		user := authUser{ID: claims.UserID, Name: claims.Name}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser, user)))
	})
}

// userFromContext returns the identity requireAuth attached, if any.
func userFromContext(r *http.Request) (authUser, bool) {
	u, ok := r.Context().Value(ctxKeyUser).(authUser)
	return u, ok
}
