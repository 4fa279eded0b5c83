package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const upstreamTimeout = 120 * time.Second

// newAPIProxy forwards already-authorized requests to the remote API,
// stripping the local API path prefix. The bearer header has been injected by
// the guard before a request reaches the proxy.
func newAPIProxy(localAPIPath, remoteAPIURI string) (http.Handler, error) {
	target, err := url.Parse(remoteAPIURI)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("[newAPIProxy] REMOTE_API_URI must be an absolute URI: %q", remoteAPIURI)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = &http.Transport{ResponseHeaderTimeout: upstreamTimeout}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("upstream request failed")
		http.Error(w, "upstream request failed", http.StatusBadGateway)
	}

	return http.StripPrefix(strings.TrimSuffix(localAPIPath, "/"), proxy), nil
}

// ProxyHandler adapts the reverse proxy to the middleware chain.
func (s *Server) ProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.proxy.ServeHTTP(w, r)
	}
}
