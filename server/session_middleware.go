package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-proxy/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the request's session
	ContextKeySession ContextKey = "session"
	// ContextKeyAuthenticated marks a request that carries a valid bearer token
	ContextKeyAuthenticated ContextKey = "authenticated"
)

// SessionFromContext returns the session attached by SessionMiddleware, or
// nil when the middleware did not run.
func SessionFromContext(ctx context.Context) *sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return session
}

// IsAuthenticated reports whether the bearer-token guard approved the request.
func IsAuthenticated(ctx context.Context) bool {
	authenticated, _ := ctx.Value(ContextKeyAuthenticated).(bool)
	return authenticated
}

// SessionMiddleware attaches the cookie-bound session to the request context,
// creating a fresh one when no usable cookie exists. After the handler runs
// it persists the session only if something actually mutated it; plain reads
// never cause a store write.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.loadOrCreateSession(w, r)

		ctx := context.WithValue(r.Context(), ContextKeySession, session)
		next(w, r.WithContext(ctx))

		if session.Dirty() {
			if err := s.sessions.Save(session); err != nil {
				log.Error().Err(err).Str("session_id", session.ID).Msg("failed to save session")
			}
		}
	}
}

func (s *Server) loadOrCreateSession(w http.ResponseWriter, r *http.Request) *sessions.Session {
	if cookie, err := r.Cookie(s.config.GetSessionCookieName()); err == nil {
		if session, err := s.sessions.Get(cookie.Value); err == nil {
			return session
		}
	}

	session := s.sessions.New()
	s.setSessionCookie(w, r, session.ID, s.config.GetSessionExpirySeconds())
	return session
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
