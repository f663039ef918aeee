package gtoken

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Logger is an interface for optional logging in the Manager.
// Implementations can log token refresh and revocation events if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// Config contains the complete token manager configuration.
// It is treated as immutable after the Manager is constructed.
type Config struct {
	// KeyFile is the path to a service account credential file
	// (.json, .pem or .p12).
	KeyFile string

	// Key is raw private key material in PEM form. Either Key or
	// KeyFile must be set before a token can be requested.
	Key string

	// Email is the service account identity used as the "iss" claim.
	// It may be left empty when KeyFile is a JSON key file, in which
	// case the file's client_email is adopted.
	Email string

	// Subject is the impersonated principal ("sub" claim), optional.
	Subject string

	// Scopes are the OAuth scopes to request. They are joined with a
	// single space, in order, in the "scope" claim.
	Scopes []string

	// AdditionalClaims are extra JWT payload fields. They are applied
	// after the standard claims and may override any of them.
	AdditionalClaims map[string]any

	// HTTPClient allows overriding the HTTP client used for the token
	// and revocation endpoints. When nil a default proxy-aware client
	// is used.
	HTTPClient HTTPClient

	// Logger receives token lifecycle events. When nil no logging occurs.
	Logger Logger

	// Getenv is the environment lookup used to resolve HTTPS_PROXY at
	// request time. Defaults to os.Getenv. Exposed so tests do not have
	// to manipulate the process environment.
	Getenv func(key string) string
}

// Validate checks the configuration and applies defaults.
// Absence of key material is deliberately not checked here: it is a
// configuration error surfaced by Token before any I/O, so a Manager
// can be constructed first and have its key file resolved later.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfiguration)
	}

	if c.KeyFile != "" {
		ext := strings.ToLower(filepath.Ext(c.KeyFile))
		switch ext {
		case ".json", ".pem", ".p12":
		default:
			return fmt.Errorf("%w: %q (supported: .json, .pem, .p12)", ErrUnknownCertificateType, ext)
		}
	}

	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}

	return nil
}

// ParseScopes splits a space-separated scope string into a slice,
// for callers configured with a single scope string.
func ParseScopes(scope string) []string {
	return strings.Fields(scope)
}
