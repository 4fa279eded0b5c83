// Package aad performs the OAuth2 grant exchanges against the Azure AD v1
// token endpoint and normalizes the provider's response.
package aad

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-proxy/claims"
)

// DefaultAuthorityURL is the base URL of the public Azure AD authority.
// Sovereign clouds (and tests) override it via WithAuthorityURL.
const DefaultAuthorityURL = "https://login.microsoftonline.com"

const (
	// expirySkew makes a token count as expired five minutes before the
	// provider invalidates it, so a request never goes upstream with a token
	// about to be rejected mid-flight.
	expirySkew = 5 * time.Minute

	requestTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20
)

// Config carries the application registration for the token exchanges.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	ResourceURI  string
}

// Result is the normalized outcome of a token exchange. It replaces a
// session's token fields wholesale; the fields are never applied partially.
type Result struct {
	AccessToken  string
	RefreshToken string
	UserClaims   *claims.UserClaims
	ExpiresAt    int64 // epoch milliseconds, already reduced by the expiry skew
}

// ExchangeError reports a failed token exchange, carrying the provider's
// status and body for diagnostics. A zero StatusCode means the request never
// reached the provider.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("token exchange failed: %s", e.Body)
	}
	return fmt.Sprintf("token exchange failed: provider returned %d: %s", e.StatusCode, e.Body)
}

// Client exchanges authorization codes and refresh tokens for access tokens.
// Exchanges are never retried here; a failed login or renewal must surface to
// the caller, and the next request naturally retries.
type Client struct {
	config       Config
	authorityURL string
	httpClient   *http.Client
	nowTime      func() time.Time
}

// ClientOption modifies a Client instance.
type ClientOption func(*Client)

// WithAuthorityURL overrides the identity provider base URL.
func WithAuthorityURL(authorityURL string) ClientOption {
	return func(c *Client) {
		c.authorityURL = strings.TrimRight(authorityURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client used for the token endpoint.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// NewClient creates a token exchange client for the given app registration.
func NewClient(config Config, options ...ClientOption) *Client {
	client := &Client{
		config:       config,
		authorityURL: DefaultAuthorityURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// ExchangeAuthorizationCode redeems an authorization code for tokens. The
// replyURI must match the redirect_uri the code was issued against.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code, replyURI string) (*Result, error) {
	form := url.Values{
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {replyURI},
		"resource":      {c.config.ResourceURI},
	}
	return c.postTokenEndpoint(ctx, form)
}

// ExchangeRefreshToken renews an access token from a refresh token. Azure AD
// v1 requires the resource parameter on this grant as well, which rules out
// the stock oauth2.TokenSource refresh path.
func (c *Client) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*Result, error) {
	form := url.Values{
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"resource":      {c.config.ResourceURI},
	}
	return c.postTokenEndpoint(ctx, form)
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    json.Number `json:"expires_in"` // AAD v1 returns this as a quoted string
}

func (c *Client) postTokenEndpoint(ctx context.Context, form url.Values) (*Result, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/token", c.authorityURL, c.config.TenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ExchangeError{Body: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("grant_type", form.Get("grant_type")).Msg("token endpoint unreachable")
		return nil, &ExchangeError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("grant_type", form.Get("grant_type")).
			Msg("token exchange rejected by provider")
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return c.normalize(resp.StatusCode, string(body), &token)
}

func (c *Client) normalize(status int, body string, token *tokenResponse) (*Result, error) {
	if token.AccessToken == "" {
		return nil, &ExchangeError{StatusCode: status, Body: body}
	}
	expiresIn, err := token.ExpiresIn.Int64()
	if err != nil || expiresIn <= 0 {
		return nil, &ExchangeError{StatusCode: status, Body: body}
	}

	userClaims, err := claims.Decode(token.AccessToken)
	if err != nil {
		return nil, err
	}

	expiresAt := c.nowTime().Add(time.Duration(expiresIn)*time.Second - expirySkew).UnixMilli()
	return &Result{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		UserClaims:   userClaims,
		ExpiresAt:    expiresAt,
	}, nil
}
