package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-proxy/aad"
	"github.com/jrsteele09/go-auth-proxy/auth"
	"github.com/jrsteele09/go-auth-proxy/auth/authfakes"
	"github.com/jrsteele09/go-auth-proxy/claims"
	"github.com/jrsteele09/go-auth-proxy/sessions"
	"github.com/stretchr/testify/require"
)

var guardNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newGuard(exchanger auth.TokenExchanger) *auth.Guard {
	return auth.NewGuard(exchanger, auth.WithGuardNowTime(func() time.Time { return guardNow }))
}

func authenticatedSession(expiresAt time.Time) *sessions.Session {
	session := &sessions.Session{
		ID:           "session-1",
		AccessToken:  "access-old",
		RefreshToken: "refresh-old",
		ExpiresAt:    expiresAt.UnixMilli(),
		UserClaims:   &claims.UserClaims{UserID: "user-1"},
	}
	session.ClearDirty()
	return session
}

func TestEnsureValidToken(t *testing.T) {
	t.Run("valid token performs no exchange and no mutation", func(t *testing.T) {
		exchanger := authfakes.NewFakeExchanger(nil)
		session := authenticatedSession(guardNow.Add(10 * time.Minute))

		require.NoError(t, newGuard(exchanger).EnsureValidToken(context.Background(), session))
		require.Zero(t, exchanger.Calls())
		require.False(t, session.Dirty())
		require.Equal(t, "access-old", session.AccessToken)
	})

	t.Run("expired token performs exactly one refresh", func(t *testing.T) {
		renewed := &aad.Result{
			AccessToken:  "access-new",
			RefreshToken: "refresh-new",
			ExpiresAt:    guardNow.Add(55 * time.Minute).UnixMilli(),
			UserClaims:   &claims.UserClaims{UserID: "user-1"},
		}
		exchanger := authfakes.NewFakeExchanger(renewed)
		session := authenticatedSession(guardNow.Add(-time.Minute))

		require.NoError(t, newGuard(exchanger).EnsureValidToken(context.Background(), session))
		require.Equal(t, 1, exchanger.RefreshCalls)
		require.Zero(t, exchanger.CodeCalls)
		require.Equal(t, "refresh-old", exchanger.LastRefreshToken)

		require.Equal(t, "access-new", session.AccessToken)
		require.Equal(t, "refresh-new", session.RefreshToken)
		require.Greater(t, session.ExpiresAt, guardNow.UnixMilli())
		require.True(t, session.Dirty())
	})

	t.Run("session without a prior login never attempts a refresh", func(t *testing.T) {
		exchanger := authfakes.NewFakeExchanger(nil)
		session := &sessions.Session{ID: "session-1"}

		err := newGuard(exchanger).EnsureValidToken(context.Background(), session)
		require.ErrorIs(t, err, auth.UnauthenticatedErr)
		require.Zero(t, exchanger.Calls())
	})

	t.Run("failed refresh propagates and leaves the session untouched", func(t *testing.T) {
		exchanger := authfakes.NewFakeExchanger(nil)
		exchanger.Err = &aad.ExchangeError{StatusCode: 400, Body: `{"error":"invalid_grant"}`}
		session := authenticatedSession(guardNow.Add(-time.Minute))

		err := newGuard(exchanger).EnsureValidToken(context.Background(), session)

		var exchangeErr *aad.ExchangeError
		require.ErrorAs(t, err, &exchangeErr)
		require.Equal(t, "access-old", session.AccessToken)
		require.Equal(t, "refresh-old", session.RefreshToken)
		require.False(t, session.Dirty())
	})
}
