package web

import (
	"net/http"
	"strings"
)

// authMiddleware validates bearer tokens on API routes.
// If no token is configured, all requests pass through.
// Otherwise, requests must include "Authorization: Bearer <token>" header.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	if s.apiToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if strings.TrimPrefix(auth, "Bearer ") != s.apiToken {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
