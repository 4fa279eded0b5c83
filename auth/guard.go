package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-auth-proxy/aad"
	"github.com/jrsteele09/go-auth-proxy/sessions"
)

// TokenExchanger performs the two OAuth2 grant exchanges against the identity
// provider. aad.Client is the production implementation.
type TokenExchanger interface {
	ExchangeAuthorizationCode(ctx context.Context, code, replyURI string) (*aad.Result, error)
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (*aad.Result, error)
}

// Guard decides, once per protected request, whether a session's access token
// is still usable or must be renewed first. It is the only caller of the
// refresh-token exchange.
type Guard struct {
	exchanger TokenExchanger
	nowTime   func() time.Time
}

// GuardOption modifies a Guard instance.
type GuardOption func(*Guard)

// WithGuardNowTime sets the now time function (primarily for testing).
func WithGuardNowTime(nowFunc func() time.Time) GuardOption {
	return func(g *Guard) {
		g.nowTime = nowFunc
	}
}

// NewGuard creates a token guard backed by the given exchanger.
func NewGuard(exchanger TokenExchanger, options ...GuardOption) *Guard {
	guard := &Guard{
		exchanger: exchanger,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(guard)
	}
	return guard
}

// EnsureValidToken returns nil when the session's access token may be
// attached to an outgoing request, renewing it in place first if needed.
//
// A still-valid token returns without mutating the session, so the hot path
// causes no store write at all. A renewal applies the fresh exchange result
// wholesale and marks the session dirty, which is the only store-write
// trigger on the hot path. A failed renewal propagates unchanged and leaves
// the session as-is; the next request retries naturally since no failure
// state is cached.
func (g *Guard) EnsureValidToken(ctx context.Context, session *sessions.Session) error {
	if !session.Authenticated() {
		return UnauthenticatedErr
	}
	if g.nowTime().UnixMilli() < session.ExpiresAt {
		return nil
	}

	result, err := g.exchanger.ExchangeRefreshToken(ctx, session.RefreshToken)
	if err != nil {
		return err
	}

	session.ApplyTokens(result)
	return nil
}
