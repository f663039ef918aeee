package gtoken

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAssertion_claims(t *testing.T) {
	key := testKeyPEM(t)
	issuedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	decode := func(t *testing.T, assertion string) map[string]any {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Form = map[string][]string{"assertion": {assertion}}
		return assertionClaims(t, req)
	}

	t.Run("standard claims", func(t *testing.T) {
		assertion, err := buildAssertion("sa@example.com", "user@example.com",
			[]string{"scope-b", "scope-a"}, nil, key, issuedAt)
		require.NoError(t, err)

		claims := decode(t, assertion)
		assert.Equal(t, "sa@example.com", claims["iss"])
		assert.Equal(t, "user@example.com", claims["sub"])
		assert.Equal(t, "scope-b scope-a", claims["scope"])
		assert.Equal(t, tokenEndpoint, claims["aud"])
		assert.Equal(t, float64(issuedAt.Unix()), claims["iat"])
		assert.Equal(t, float64(issuedAt.Add(time.Hour).Unix()), claims["exp"])
	})

	t.Run("subject omitted when unset", func(t *testing.T) {
		assertion, err := buildAssertion("sa@example.com", "", []string{"s"}, nil, key, issuedAt)
		require.NoError(t, err)

		claims := decode(t, assertion)
		_, present := claims["sub"]
		assert.False(t, present)
	})

	t.Run("scope joins elements in input order", func(t *testing.T) {
		assertion, err := buildAssertion("sa@example.com", "",
			[]string{"z", "a", "m"}, nil, key, issuedAt)
		require.NoError(t, err)

		claims := decode(t, assertion)
		assert.Equal(t, "z a m", claims["scope"])
	})

	t.Run("additional claims are layered after standard claims", func(t *testing.T) {
		assertion, err := buildAssertion("sa@example.com", "", []string{"s"},
			map[string]any{
				"iss":    "override@example.com",
				"target": "urn:custom:audience",
			}, key, issuedAt)
		require.NoError(t, err)

		claims := decode(t, assertion)
		assert.Equal(t, "override@example.com", claims["iss"])
		assert.Equal(t, "urn:custom:audience", claims["target"])
		assert.Equal(t, "s", claims["scope"])
	})

	t.Run("header declares RS256", func(t *testing.T) {
		assertion, err := buildAssertion("sa@example.com", "", nil, nil, key, issuedAt)
		require.NoError(t, err)

		parts := strings.Split(assertion, ".")
		require.Len(t, parts, 3)
		header, err := base64.RawURLEncoding.DecodeString(parts[0])
		require.NoError(t, err)
		assert.Contains(t, string(header), `"alg":"RS256"`)
	})

	t.Run("malformed key", func(t *testing.T) {
		_, err := buildAssertion("sa@example.com", "", nil, nil, "garbage", issuedAt)
		assert.ErrorIs(t, err, ErrTokenExchange)
	})
}

func TestExchangeAssertion_transportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections
	stubEndpoints(t, server.URL, "")

	client := newDefaultHTTPClient(noEnv)
	_, err := exchangeAssertion(context.Background(), client, "assertion")
	require.Error(t, err)
	// Transport errors are surfaced verbatim, not wrapped in ErrTokenExchange.
	assert.NotErrorIs(t, err, ErrTokenExchange)
}

func TestParseOAuthError(t *testing.T) {
	t.Run("code and description", func(t *testing.T) {
		err := parseOAuthError([]byte(`{"error":"invalid_grant","error_description":"bad"}`))
		require.NotNil(t, err)
		assert.Equal(t, "invalid_grant: bad", err.Error())
	})

	t.Run("code only", func(t *testing.T) {
		err := parseOAuthError([]byte(`{"error":"invalid_client"}`))
		require.NotNil(t, err)
		assert.Equal(t, "invalid_client", err.Error())
	})

	t.Run("no error field", func(t *testing.T) {
		assert.Nil(t, parseOAuthError([]byte(`{"message":"nope"}`)))
	})

	t.Run("not json", func(t *testing.T) {
		assert.Nil(t, parseOAuthError([]byte(`<html>`)))
	})
}

func TestProxyFromGetenv(t *testing.T) {
	t.Run("unset routes direct", func(t *testing.T) {
		proxy := proxyFromGetenv(noEnv)
		u, err := proxy(nil)
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("HTTPS_PROXY", func(t *testing.T) {
		proxy := proxyFromGetenv(func(key string) string {
			if key == "HTTPS_PROXY" {
				return "https://proxy.example.com:3128"
			}
			return ""
		})
		u, err := proxy(nil)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "proxy.example.com:3128", u.Host)
	})

	t.Run("lowercase fallback", func(t *testing.T) {
		proxy := proxyFromGetenv(func(key string) string {
			if key == "https_proxy" {
				return "http://lower.example.com:8080"
			}
			return ""
		})
		u, err := proxy(nil)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "lower.example.com:8080", u.Host)
	})

	t.Run("environment is read on every request", func(t *testing.T) {
		var value string
		proxy := proxyFromGetenv(func(key string) string {
			if key == "HTTPS_PROXY" {
				return value
			}
			return ""
		})

		u, err := proxy(nil)
		require.NoError(t, err)
		assert.Nil(t, u)

		value = "https://late.example.com:3128"
		u, err = proxy(nil)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "late.example.com:3128", u.Host)
	})
}
