package gtoken

import (
	"context"

	"golang.org/x/oauth2"
)

// tokenSource adapts a Manager to the oauth2.TokenSource interface.
type tokenSource struct {
	ctx     context.Context
	manager *Manager
}

// TokenSource returns an oauth2.TokenSource backed by this manager, for
// use with libraries built on golang.org/x/oauth2. The supplied context
// is used for every token fetch the source performs.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	if ctx == nil {
		ctx = context.Background()
	}
	return &tokenSource{ctx: ctx, manager: m}
}

// Token implements oauth2.TokenSource.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := s.manager.Token(s.ctx)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}
	if raw := s.manager.RawToken(); raw != nil {
		if raw.TokenType != "" {
			token.TokenType = raw.TokenType
		}
		token.RefreshToken = raw.RefreshToken
	}
	if expiry, ok := s.manager.ExpiresAt(); ok {
		token.Expiry = expiry
	}
	return token, nil
}
