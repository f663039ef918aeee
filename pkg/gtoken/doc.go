// Package gtoken obtains, caches and revokes Google service account
// access tokens using the OAuth 2.0 JWT-bearer grant.
//
// A Manager holds a private signing key and issuer identity, signs a
// short-lived RS256 assertion, exchanges it at the Google token endpoint
// and caches the resulting bearer token until it expires. Expired tokens
// are refreshed transparently on the next request.
//
// # Key material
//
// Credentials come from raw PEM key material or from a credential file:
//
//   - .json: a service account key file; private_key and client_email
//     are both required, and client_email is adopted as the issuer when
//     none is configured.
//   - .pem: the file content is the private key; the issuer must be
//     configured explicitly.
//   - .p12: a PKCS#12 key file as issued by Google; the issuer must be
//     configured explicitly.
//
// Example - JSON key file:
//
//	manager, err := gtoken.NewManager(&gtoken.Config{
//	    KeyFile: "/etc/secrets/service-account.json",
//	    Scopes:  []string{"https://www.googleapis.com/auth/cloud-platform"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := manager.Token(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(token)
//
// Example - raw key with impersonation:
//
//	manager, err := gtoken.NewManager(&gtoken.Config{
//	    Key:     privateKeyPEM,
//	    Email:   "sa@project.iam.gserviceaccount.com",
//	    Subject: "user@example.com",
//	    Scopes:  gtoken.ParseScopes("a-scope another-scope"),
//	})
//
// # Revocation
//
// Revoke invalidates the cached token at Google's revocation endpoint and
// resets the manager to its original configuration, so a subsequent Token
// call performs a full fresh acquisition:
//
//	if err := manager.Revoke(context.Background()); err != nil {
//	    log.Printf("revoke failed: %v", err)
//	}
//
// # Integration
//
// Manager.TokenSource adapts a manager to golang.org/x/oauth2, and
// Transport is an http.RoundTripper that injects the bearer token into
// outgoing requests:
//
//	client := &http.Client{Transport: gtoken.NewTransport(manager, nil)}
//
// # Proxy support
//
// Requests to the token and revocation endpoints honor the HTTPS_PROXY
// (or https_proxy) environment variable, re-read on every request.
//
// # Concurrency
//
// A Manager is safe for concurrent use. Token state is guarded by a
// mutex and a refresh in flight blocks other callers on the same manager
// until it completes.
package gtoken
