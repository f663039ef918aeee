package gtoken

import "time"

// timeNow makes it possible to test usage of time.
var timeNow = time.Now

// TokenData is the raw response from the token endpoint.
type TokenData struct {
	// AccessToken is the OAuth access token.
	AccessToken string `json:"access_token"`

	// ExpiresIn is the token lifetime in seconds. Nil when the server
	// omitted it, in which case the token never expires.
	ExpiresIn *int64 `json:"expires_in"`

	// TokenType is the type of token (usually "Bearer").
	TokenType string `json:"token_type"`

	// RefreshToken is used to obtain new access tokens (optional).
	RefreshToken string `json:"refresh_token"`

	// IDToken is the OpenID Connect ID token (optional).
	IDToken string `json:"id_token"`
}

// tokenState is the cached token held by a Manager. The issued flag
// distinguishes "no token" from a successfully issued token whose
// response omitted expires_in: the latter has a zero expiresAt and is
// treated as never expiring.
type tokenState struct {
	issued    bool
	token     string
	expiresAt time.Time
	raw       *TokenData
}

// expired reports whether the state holds no usable token.
func (s *tokenState) expired(now time.Time) bool {
	if !s.issued {
		return true
	}
	if s.expiresAt.IsZero() {
		return false
	}
	return !now.Before(s.expiresAt)
}
