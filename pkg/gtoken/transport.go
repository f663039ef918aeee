package gtoken

import (
	"fmt"
	"net/http"
)

// Transport is an http.RoundTripper that automatically adds the manager's
// access token as a Bearer Authorization header to outgoing requests.
//
// It wraps an existing transport (typically http.DefaultTransport) and
// fetches or refreshes the token as needed before each request.
type Transport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// Manager provides the access tokens.
	Manager *Manager
}

// NewTransport creates a Transport for the given manager. The base
// transport defaults to http.DefaultTransport when nil.
func NewTransport(m *Manager, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Manager: m}
}

// RoundTrip implements http.RoundTripper. The token fetch respects the
// request context's cancellation and deadline. The request is cloned
// before the Authorization header is set.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Manager == nil {
		return nil, fmt.Errorf("gtoken: Transport.Manager is nil")
	}

	token, err := t.Manager.Token(req.Context())
	if err != nil {
		return nil, err
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
