package gtoken

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient defines the interface for making HTTP requests.
// This abstraction allows for testing and custom implementations.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// defaultHTTPClient is a production HTTP client with sensible defaults.
type defaultHTTPClient struct {
	client *http.Client
}

// newDefaultHTTPClient creates an HTTP client for the token and revocation
// endpoints. The proxy is resolved through getenv on every request rather
// than http.ProxyFromEnvironment, which caches the environment on first
// use; requests go direct when HTTPS_PROXY is unset.
func newDefaultHTTPClient(getenv func(string) string) HTTPClient {
	transport := &http.Transport{
		Proxy: proxyFromGetenv(getenv),
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &defaultHTTPClient{
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Do executes the HTTP request.
func (c *defaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// proxyFromGetenv returns a proxy selector that reads HTTPS_PROXY (then
// https_proxy) through the supplied lookup on each request.
func proxyFromGetenv(getenv func(string) string) func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		addr := getenv("HTTPS_PROXY")
		if addr == "" {
			addr = getenv("https_proxy")
		}
		if addr == "" {
			return nil, nil
		}
		return url.Parse(addr)
	}
}
