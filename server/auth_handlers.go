package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-proxy/aad"
	"github.com/jrsteele09/go-auth-proxy/auth"
)

const contentTypeJSON = "application/json; charset=utf-8"

// LoginHandler starts the OAuth2 login flow: it parks the post-login redirect
// target on the session and sends the user agent to the provider's authorize
// endpoint. The session is persisted before the redirect, since the provider
// round-trip may come back to a different instance.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())

		authorizeURL, err := s.flow.BeginLogin(session, r.URL.Query().Get(auth.ParamPostLoginRedirectURI), makeReplyURI(r))
		if err != nil {
			s.writeError(w, err)
			return
		}

		if err := s.sessions.Save(session); err != nil {
			s.writeError(w, err)
			return
		}
		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}

// ReplyHandler receives the authorization code and exchanges it for tokens.
// The state parameter is compared to the session ID to detect CSRF attacks.
func (s *Server) ReplyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		query := r.URL.Query()

		redirectURI, err := s.flow.CompleteLogin(
			r.Context(),
			session,
			query.Get(auth.ParamCode),
			query.Get(auth.ParamState),
			query.Get(auth.ParamError),
			makeReplyURI(r),
		)
		if err != nil {
			s.writeError(w, err)
			return
		}

		if err := s.sessions.Save(session); err != nil {
			s.writeError(w, err)
			return
		}
		http.Redirect(w, r, redirectURI, http.StatusFound)
	}
}

// ClaimsHandler returns the user claims from the access token, or 204 when
// the session is not authenticated yet. It never triggers a renewal, so
// callers can probe authentication state cheaply.
func (s *Server) ClaimsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session.UserClaims == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(session.UserClaims)
	}
}

// LogoutHandler signs the user out: it destroys the whole session, expires
// the cookie and redirects to the provider's logout endpoint. Validation
// failures leave the session untouched.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())

		logoutURL, err := s.flow.LogoutURL(r.URL.Query().Get(auth.ParamPostLogoutRedirectURI))
		if err != nil {
			s.writeError(w, err)
			return
		}

		if err := s.sessions.Destroy(session.ID); err != nil {
			s.writeError(w, err)
			return
		}
		// The session is gone; make sure the save pass doesn't resurrect it.
		session.ClearDirty()

		s.setSessionCookie(w, r, "", -1)
		http.Redirect(w, r, logoutURL, http.StatusFound)
	}
}

// writeError is the single place translating an error kind to an HTTP
// status. Errors from deep calls bubble up here unchanged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Msg("auth request failed")

	http.Error(w, err.Error(), status)
}

func errorStatus(err error) int {
	var validationErr *auth.ValidationError
	var providerErr *auth.ProviderError
	var exchangeErr *aad.ExchangeError

	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, auth.InvalidStateErr),
		errors.Is(err, auth.MissingSessionValueErr):
		return http.StatusBadRequest
	case errors.Is(err, auth.UnauthenticatedErr):
		return http.StatusUnauthorized
	case errors.As(err, &providerErr), errors.As(err, &exchangeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
