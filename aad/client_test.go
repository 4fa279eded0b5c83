package aad_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-proxy/aad"
	"github.com/stretchr/testify/require"
)

const (
	testTenantID     = "tenant-1"
	testClientID     = "client-1"
	testClientSecret = "secret-1"
	testResourceURI  = "https://api.example.com"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testAccessToken(t *testing.T) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{
		"oid": "user-1",
		"upn": "john.doe@example.com",
	})
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

// newTokenEndpoint stands in for the provider's token endpoint, capturing the
// submitted form and replying with the given handler response.
func newTokenEndpoint(t *testing.T, capture *url.Values, status int, response string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/"+testTenantID+"/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		*capture = r.PostForm

		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
}

func newTestClient(authorityURL string) *aad.Client {
	return aad.NewClient(aad.Config{
		TenantID:     testTenantID,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		ResourceURI:  testResourceURI,
	},
		aad.WithAuthorityURL(authorityURL),
		aad.WithNowTime(func() time.Time { return testNow }),
	)
}

func TestExchangeAuthorizationCode(t *testing.T) {
	accessToken := testAccessToken(t)
	var form url.Values
	srv := newTokenEndpoint(t, &form, http.StatusOK,
		`{"access_token":"`+accessToken+`","refresh_token":"refresh-1","expires_in":"3600"}`)
	defer srv.Close()

	result, err := newTestClient(srv.URL).ExchangeAuthorizationCode(context.Background(), "code-1", "https://proxy.example.com/.auth/reply")
	require.NoError(t, err)

	require.Equal(t, "authorization_code", form.Get("grant_type"))
	require.Equal(t, "code-1", form.Get("code"))
	require.Equal(t, "https://proxy.example.com/.auth/reply", form.Get("redirect_uri"))
	require.Equal(t, testClientID, form.Get("client_id"))
	require.Equal(t, testClientSecret, form.Get("client_secret"))
	require.Equal(t, testResourceURI, form.Get("resource"))

	require.Equal(t, accessToken, result.AccessToken)
	require.Equal(t, "refresh-1", result.RefreshToken)
	require.Equal(t, "john.doe@example.com", result.UserClaims.PrincipalName)

	// expires_in less the five minute skew
	require.Equal(t, testNow.Add(3300*time.Second).UnixMilli(), result.ExpiresAt)
}

func TestExchangeRefreshToken(t *testing.T) {
	accessToken := testAccessToken(t)
	var form url.Values
	srv := newTokenEndpoint(t, &form, http.StatusOK,
		`{"access_token":"`+accessToken+`","refresh_token":"refresh-2","expires_in":3600}`)
	defer srv.Close()

	result, err := newTestClient(srv.URL).ExchangeRefreshToken(context.Background(), "refresh-1")
	require.NoError(t, err)

	require.Equal(t, "refresh_token", form.Get("grant_type"))
	require.Equal(t, "refresh-1", form.Get("refresh_token"))
	require.Equal(t, testResourceURI, form.Get("resource"))
	require.Empty(t, form.Get("code"))

	require.Equal(t, "refresh-2", result.RefreshToken)
	require.Equal(t, "user-1", result.UserClaims.UserID)
}

func TestExchangeFailures(t *testing.T) {
	t.Run("provider rejection carries status and body", func(t *testing.T) {
		var form url.Values
		srv := newTokenEndpoint(t, &form, http.StatusBadRequest, `{"error":"invalid_grant"}`)
		defer srv.Close()

		_, err := newTestClient(srv.URL).ExchangeRefreshToken(context.Background(), "stale")
		require.Error(t, err)

		var exchangeErr *aad.ExchangeError
		require.ErrorAs(t, err, &exchangeErr)
		require.Equal(t, http.StatusBadRequest, exchangeErr.StatusCode)
		require.Contains(t, exchangeErr.Body, "invalid_grant")
	})

	t.Run("missing access_token in body", func(t *testing.T) {
		var form url.Values
		srv := newTokenEndpoint(t, &form, http.StatusOK, `{"expires_in":"3600"}`)
		defer srv.Close()

		_, err := newTestClient(srv.URL).ExchangeAuthorizationCode(context.Background(), "code-1", "https://proxy.example.com/.auth/reply")
		var exchangeErr *aad.ExchangeError
		require.ErrorAs(t, err, &exchangeErr)
		require.Equal(t, http.StatusOK, exchangeErr.StatusCode)
	})

	t.Run("missing expires_in in body", func(t *testing.T) {
		accessToken := testAccessToken(t)
		var form url.Values
		srv := newTokenEndpoint(t, &form, http.StatusOK, `{"access_token":"`+accessToken+`"}`)
		defer srv.Close()

		_, err := newTestClient(srv.URL).ExchangeAuthorizationCode(context.Background(), "code-1", "https://proxy.example.com/.auth/reply")
		var exchangeErr *aad.ExchangeError
		require.ErrorAs(t, err, &exchangeErr)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:1").ExchangeRefreshToken(context.Background(), "refresh-1")
		var exchangeErr *aad.ExchangeError
		require.ErrorAs(t, err, &exchangeErr)
		require.Zero(t, exchangeErr.StatusCode)
	})
}
