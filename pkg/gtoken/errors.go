package gtoken

import "errors"

var (
	// ErrInvalidConfiguration indicates the manager configuration is invalid.
	ErrInvalidConfiguration = errors.New("gtoken: invalid configuration")

	// ErrNoKey indicates no key material was configured.
	ErrNoKey = errors.New("gtoken: no key or keyFile set")

	// ErrMissingCredentials indicates a credential file lacked required
	// fields, or no issuer could be determined.
	ErrMissingCredentials = errors.New("gtoken: missing credentials")

	// ErrUnknownCertificateType indicates an unrecognized key-file extension.
	ErrUnknownCertificateType = errors.New("gtoken: unknown certificate type")

	// ErrTokenExchange indicates the token endpoint rejected the request
	// without a structured OAuth error body.
	ErrTokenExchange = errors.New("gtoken: token exchange failed")

	// ErrRevokeFailed indicates the revocation endpoint rejected the request.
	ErrRevokeFailed = errors.New("gtoken: token revocation failed")

	// ErrNoTokenToRevoke indicates revocation was attempted with no cached token.
	ErrNoTokenToRevoke = errors.New("gtoken: no token to revoke")
)

// OAuthError is a structured error returned by the token endpoint.
// Its message is the error code followed by the description, if any.
type OAuthError struct {
	// Code is the OAuth "error" field, e.g. "invalid_grant".
	Code string

	// Description is the optional "error_description" field.
	Description string
}

// Error implements the error interface.
func (e *OAuthError) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}
