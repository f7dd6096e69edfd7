package api

import (
	"context"
	"net/http"
)

type ctxKey int

const userIDKey ctxKey = iota

// devUserID stands in for a real identity when the server runs in
// development mode, so the API can be exercised without an auth proxy.
const devUserID = "local-dev-user"

// identity resolves the caller from the X-User-Id header set by the
// fronting auth layer and makes sure a matching user row exists. In
// development mode a fixed local user is assumed instead.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-Id")
		email := r.Header.Get("X-User-Email")
		provider := r.Header.Get("X-Auth-Provider")

		if id == "" {
			if !s.devMode {
				writeError(w, http.StatusUnauthorized, "Authentication required", nil)
				return
			}
			id = devUserID
			if email == "" {
				email = "dev@localhost"
			}
		}

		if _, err := s.store.UpsertUser(r.Context(), id, email, provider); err != nil {
			s.handleError(w, "Failed to resolve user", err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
