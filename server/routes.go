package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	// User-facing auth endpoints
	s.RegisterRouteFunc("GET "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.AuthMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthReply, ChainMiddleware(s.ReplyHandler(), s.AuthMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthClaims, ChainMiddleware(s.ClaimsHandler(), s.AuthMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.AuthMiddleware()...))

	// Protected API, forwarded upstream with a bearer token attached
	localAPIPath := strings.TrimSuffix(s.config.GetLocalAPIPath(), "/")
	s.RegisterRouteFunc(localAPIPath+"/", ChainMiddleware(s.ProxyHandler(), s.ProtectedMiddleware()...))
}

// AuthMiddleware is the chain in front of the /.auth endpoints.
func (s *Server) AuthMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.RateLimitMiddleware,
		s.SessionMiddleware,
	}
}

// ProtectedMiddleware is the chain in front of the proxied API: the auth
// chain minus rate limiting, plus the token guard.
func (s *Server) ProtectedMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.SessionMiddleware,
		s.RequireValidToken,
	}
}
