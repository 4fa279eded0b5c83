package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-auth-proxy/aad"
	"github.com/jrsteele09/go-auth-proxy/sessions"
)

// Query parameter names of the user-facing auth endpoints.
const (
	ParamPostLoginRedirectURI  = "post_login_redirect_uri"
	ParamPostLogoutRedirectURI = "post_logout_redirect_uri"
	ParamCode                  = "code"
	ParamState                 = "state"
	ParamError                 = "error"
)

// Flow orchestrates the user-facing login, callback and logout steps of the
// authorization-code grant. It is the only caller of the authorization-code
// exchange.
type Flow struct {
	tenantID     string
	clientID     string
	resourceURI  string
	authorityURL string
	exchanger    TokenExchanger
}

// FlowOption modifies a Flow instance.
type FlowOption func(*Flow)

// WithFlowAuthorityURL overrides the identity provider base URL.
func WithFlowAuthorityURL(authorityURL string) FlowOption {
	return func(f *Flow) {
		f.authorityURL = strings.TrimRight(authorityURL, "/")
	}
}

// NewFlow creates the authorization flow service.
func NewFlow(tenantID, clientID, resourceURI string, exchanger TokenExchanger, options ...FlowOption) (*Flow, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("[NewFlow] tenantID is required")
	}
	if clientID == "" {
		return nil, fmt.Errorf("[NewFlow] clientID is required")
	}
	if exchanger == nil {
		return nil, fmt.Errorf("[NewFlow] exchanger is required")
	}

	flow := &Flow{
		tenantID:     tenantID,
		clientID:     clientID,
		resourceURI:  resourceURI,
		authorityURL: aad.DefaultAuthorityURL,
		exchanger:    exchanger,
	}
	for _, opt := range options {
		opt(flow)
	}
	return flow, nil
}

// BeginLogin validates the post-login redirect target, parks it on the
// session and returns the provider authorize URL to redirect the user agent
// to. The session's own identifier doubles as the CSRF state. The caller must
// persist the session before issuing the redirect, since the provider
// round-trip may land on another instance.
func (f *Flow) BeginLogin(session *sessions.Session, postLoginRedirectURI, replyURI string) (string, error) {
	if err := validateAbsoluteURI(ParamPostLoginRedirectURI, postLoginRedirectURI); err != nil {
		return "", err
	}

	session.SetPendingRedirect(postLoginRedirectURI)

	cfg := &oauth2.Config{
		ClientID:    f.clientID,
		RedirectURL: replyURI,
		Endpoint: oauth2.Endpoint{
			AuthURL: f.endpointURL("authorize"),
		},
	}
	return cfg.AuthCodeURL(session.ID,
		oauth2.SetAuthURLParam("domain_hint", f.tenantID),
		oauth2.SetAuthURLParam("prompt", "login"),
		oauth2.SetAuthURLParam("resource", f.resourceURI),
	), nil
}

// CompleteLogin handles the provider callback: it validates the state against
// the session identifier (CSRF), consumes the pending redirect target,
// exchanges the authorization code and applies the resulting tokens to the
// session. It returns the post-login redirect target on success.
//
// The state check runs before anything else touches the exchange, and the
// pending redirect is cleared before exchanging so a replayed callback cannot
// reuse it.
func (f *Flow) CompleteLogin(ctx context.Context, session *sessions.Session, code, state, providerError, replyURI string) (string, error) {
	if providerError != "" {
		return "", &ProviderError{Code: providerError}
	}
	if code == "" {
		return "", missingParamErr(ParamCode)
	}
	if state == "" {
		return "", missingParamErr(ParamState)
	}
	if state != session.ID {
		return "", InvalidStateErr
	}

	redirectURI := session.TakePendingRedirect()
	if redirectURI == "" {
		return "", fmt.Errorf("%w: the '%s' session value is not set", MissingSessionValueErr, ParamPostLoginRedirectURI)
	}

	result, err := f.exchanger.ExchangeAuthorizationCode(ctx, code, replyURI)
	if err != nil {
		return "", err
	}

	session.ApplyTokens(result)
	return redirectURI, nil
}

// LogoutURL validates the post-logout redirect target and returns the
// provider logout URL carrying it. It does not touch the session; the caller
// destroys it only after validation has passed.
func (f *Flow) LogoutURL(postLogoutRedirectURI string) (string, error) {
	if err := validateAbsoluteURI(ParamPostLogoutRedirectURI, postLogoutRedirectURI); err != nil {
		return "", err
	}

	query := url.Values{ParamPostLogoutRedirectURI: {postLogoutRedirectURI}}
	return f.endpointURL("logout") + "?" + query.Encode(), nil
}

func (f *Flow) endpointURL(endpoint string) string {
	return fmt.Sprintf("%s/%s/oauth2/%s", f.authorityURL, f.tenantID, endpoint)
}

// validateAbsoluteURI accepts any URI containing a scheme separator.
func validateAbsoluteURI(param, uri string) error {
	if uri == "" {
		return missingParamErr(param)
	}
	if !strings.Contains(uri, "://") {
		return notAbsoluteURIErr(param)
	}
	return nil
}
