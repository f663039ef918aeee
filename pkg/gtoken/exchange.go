package gtoken

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// jwtBearerGrantType is the grant type for JWT bearer tokens.
	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// assertionLifetime is the validity window claimed by the assertion.
	assertionLifetime = time.Hour
)

// Endpoint URLs. Package variables so tests can point them at a local server.
var (
	tokenEndpoint  = "https://www.googleapis.com/oauth2/v4/token"
	revokeEndpoint = "https://accounts.google.com/o/oauth2/revoke"
)

// buildAssertion constructs and signs the JWT-bearer assertion. Standard
// claims are written first; additional claims are layered on afterwards
// and may override any of them.
func buildAssertion(issuer, subject string, scopes []string, additional map[string]any, key string, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   issuer,
		"scope": strings.Join(scopes, " "),
		"aud":   tokenEndpoint,
		"exp":   issuedAt.Add(assertionLifetime).Unix(),
		"iat":   issuedAt.Unix(),
	}
	if subject != "" {
		claims["sub"] = subject
	}
	for k, v := range additional {
		claims[k] = v
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return assertion, nil
}

// exchangeAssertion POSTs the signed assertion to the token endpoint and
// parses the response. Transport errors are returned unchanged; non-2xx
// responses carrying a structured OAuth error become an *OAuthError.
func exchangeAssertion(ctx context.Context, client HTTPClient, assertion string) (*TokenData, error) {
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrTokenExchange, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if oauthErr := parseOAuthError(body); oauthErr != nil {
			return nil, oauthErr
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrTokenExchange, resp.StatusCode, string(body))
	}

	var data TokenData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrTokenExchange, err)
	}
	return &data, nil
}

// revokeToken calls the revocation endpoint with the given token.
func revokeToken(ctx context.Context, client HTTPClient, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		revokeEndpoint+"?token="+url.QueryEscape(token), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRevokeFailed, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrRevokeFailed, resp.StatusCode, string(body))
	}
	return nil
}

// parseOAuthError extracts a structured OAuth error from a response body,
// or returns nil if the body carries no "error" field.
func parseOAuthError(body []byte) *OAuthError {
	var payload struct {
		Code        string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Code == "" {
		return nil
	}
	return &OAuthError{Code: payload.Code, Description: payload.Description}
}
