package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-auth-proxy/auth"
)

// RequireValidToken gates every protected request: it lets the guard renew
// the session's access token if needed, then injects the bearer header and
// marks the request context authenticated before forwarding. Order matters:
// validate, maybe renew, then inject.
func (s *Server) RequireValidToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil {
			s.writeError(w, auth.UnauthenticatedErr)
			return
		}

		if err := s.guard.EnsureValidToken(r.Context(), session); err != nil {
			s.writeError(w, err)
			return
		}
		if session.AccessToken == "" {
			s.writeError(w, auth.UnauthenticatedErr)
			return
		}

		r.Header.Set("Authorization", "Bearer "+session.AccessToken)
		ctx := context.WithValue(r.Context(), ContextKeyAuthenticated, true)
		next(w, r.WithContext(ctx))
	}
}
