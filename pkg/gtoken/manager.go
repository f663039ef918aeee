package gtoken

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Manager obtains, caches and revokes service account access tokens using
// the OAuth 2.0 JWT-bearer grant. A Manager owns its token state
// exclusively; all public methods are safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	config *Config
	client HTTPClient

	// Working copies of the configured key material and issuer. They may
	// be populated from a resolved credential file and are restored to
	// the original configuration after a successful revocation.
	key    string
	issuer string

	state tokenState
}

// NewManager creates a new token manager with the given configuration.
// Key material is not required at construction time; its absence is
// reported by Token before any I/O is performed.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfiguration)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := config.HTTPClient
	if client == nil {
		client = newDefaultHTTPClient(config.Getenv)
	}

	return &Manager{
		config: config,
		client: client,
		key:    config.Key,
		issuer: config.Email,
	}, nil
}

// HasExpired reports whether a fresh token must be fetched: true when no
// token is held or the held token's expiry has passed. A token issued
// without an expires_in never expires.
func (m *Manager) HasExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.expired(timeNow())
}

// Token returns a valid access token, performing a token exchange if the
// cached one is absent or expired. The cached token is returned without
// any I/O while it remains valid.
func (m *Manager) Token(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.expired(timeNow()) {
		return m.state.token, nil
	}

	if m.key == "" && m.config.KeyFile == "" {
		return "", ErrNoKey
	}

	if m.key == "" {
		creds, err := resolveCredentials(m.config.KeyFile)
		if err != nil {
			return "", err
		}
		m.key = creds.PrivateKey
		if m.issuer == "" {
			m.issuer = creds.ClientEmail
		}
		if m.issuer == "" {
			return "", fmt.Errorf("%w: email is required", ErrMissingCredentials)
		}
	}

	return m.requestToken(ctx)
}

// requestToken signs a fresh assertion, exchanges it and records the
// resulting token state. Must be called with the lock held.
func (m *Manager) requestToken(ctx context.Context) (string, error) {
	issuedAt := timeNow()

	assertion, err := buildAssertion(m.issuer, m.config.Subject, m.config.Scopes,
		m.config.AdditionalClaims, m.key, issuedAt)
	if err != nil {
		return "", err
	}

	data, err := exchangeAssertion(ctx, m.client, assertion)
	if err != nil {
		// Never keep a stale token after a failed refresh attempt.
		m.state = tokenState{}
		return "", err
	}

	m.state = tokenState{
		issued: true,
		token:  data.AccessToken,
		raw:    data,
	}
	if data.ExpiresIn != nil {
		m.state.expiresAt = issuedAt.Add(time.Duration(*data.ExpiresIn) * time.Second)
	}

	if m.config.Logger != nil {
		m.config.Logger.Printf("gtoken: obtained access token for %s", m.issuer)
	}

	return m.state.token, nil
}

// Revoke invalidates the cached token remotely and resets the manager to
// its original configuration, so the next Token call performs a full
// fresh acquisition (re-resolving the key file when one is configured).
// When the network call fails, local state is left unchanged.
func (m *Manager) Revoke(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.issued {
		return ErrNoTokenToRevoke
	}

	if err := revokeToken(ctx, m.client, m.state.token); err != nil {
		return err
	}

	m.key = m.config.Key
	m.issuer = m.config.Email
	m.state = tokenState{}

	if m.config.Logger != nil {
		m.config.Logger.Printf("gtoken: revoked access token")
	}

	return nil
}

// AccessToken returns the currently cached access token, or the empty
// string when none is held.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.token
}

// IDToken returns the ID token from the last exchange, if the server
// provided one.
func (m *Manager) IDToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.raw == nil {
		return ""
	}
	return m.state.raw.IDToken
}

// ExpiresAt returns the absolute expiry of the cached token. ok is false
// when no token is held or the server omitted an expiry.
func (m *Manager) ExpiresAt() (expiry time.Time, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.issued || m.state.expiresAt.IsZero() {
		return time.Time{}, false
	}
	return m.state.expiresAt, true
}

// RawToken returns the raw response from the last successful exchange,
// or nil when no token is held.
func (m *Manager) RawToken() *TokenData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.raw
}
