package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/go-auth-proxy/aad"
	"github.com/jrsteele09/go-auth-proxy/auth"
	"github.com/jrsteele09/go-auth-proxy/internal/config"
	"github.com/jrsteele09/go-auth-proxy/sessions"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions sessions.Repo
	guard    *auth.Guard
	flow     *auth.Flow
	proxy    http.Handler
	limiter  *ipRateLimiter
}

func New(cfg config.Config, sessionRepo sessions.Repo) (*Server, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	tokenClient := aad.NewClient(aad.Config{
		TenantID:     cfg.GetAzureTenantID(),
		ClientID:     cfg.GetAzureClientID(),
		ClientSecret: cfg.GetAzureClientSecret(),
		ResourceURI:  cfg.GetAzureResourceURI(),
	}, aad.WithAuthorityURL(cfg.GetAzureAuthorityURL()))

	flow, err := auth.NewFlow(
		cfg.GetAzureTenantID(),
		cfg.GetAzureClientID(),
		cfg.GetAzureResourceURI(),
		tokenClient,
		auth.WithFlowAuthorityURL(cfg.GetAzureAuthorityURL()),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth flow: %w", err)
	}

	proxy, err := newAPIProxy(cfg.GetLocalAPIPath(), cfg.GetRemoteAPIURI())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create API proxy: %w", err)
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: sessionRepo,
		guard:    auth.NewGuard(tokenClient),
		flow:     flow,
		proxy:    proxy,
		limiter:  newIPRateLimiter(rate.Every(time.Second), 20, 10*time.Minute),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func validateConfig(cfg config.Config) error {
	required := []struct {
		name  string
		value string
	}{
		{"AZURE_TENANT_ID", cfg.GetAzureTenantID()},
		{"AZURE_CLIENT_ID", cfg.GetAzureClientID()},
		{"AZURE_CLIENT_SECRET", cfg.GetAzureClientSecret()},
		{"AZURE_RESOURCE_URI", cfg.GetAzureResourceURI()},
		{"REMOTE_API_URI", cfg.GetRemoteAPIURI()},
	}
	for _, setting := range required {
		if setting.value == "" {
			return fmt.Errorf("[Server New] %s is required", setting.name)
		}
	}
	return nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered route")
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// makeReplyURI builds this server's own OAuth2 callback URL from the request
// host. Plain http is assumed only for localhost.
func makeReplyURI(r *http.Request) string {
	scheme := "https"
	if isLocalhost(r.Host) {
		scheme = "http"
	}
	return scheme + "://" + r.Host + RouteAuthReply
}

func isLocalhost(host string) bool {
	return host == "localhost" || strings.HasPrefix(host, "localhost:")
}
