// Package httputil provides the HTTP client plumbing shared by all sources:
// client construction, a pool of per-operation handles and URL validation.
package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// DefaultUserAgent is sent when the configuration does not override it.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"

// maxJSONSize caps API response bodies.
const maxJSONSize = 10 * 1024 * 1024

// Options configures the clients a Pool hands out.
type Options struct {
	UserAgent string

	// SharedCookies gives every client of the pool the same cookie jar.
	SharedCookies bool

	// NoRedirects makes clients return 3xx responses instead of following them.
	NoRedirects bool

	// Fingerprint dials TLS with a Chrome ClientHello.
	Fingerprint bool

	// Transport overrides the transport entirely. Used by tests.
	Transport http.RoundTripper
}

// NewClient creates a hardened HTTP client with secure defaults.
// There is no overall timeout because media streams are read for as long
// as playback lasts; only waiting for response headers is bounded.
func NewClient(opts Options) (*http.Client, error) {
	client := &http.Client{
		Transport: opts.Transport,
	}

	if client.Transport == nil {
		if opts.Fingerprint {
			client.Transport = newFingerprintTransport()
		} else {
			client.Transport = newTransport()
		}
	}

	if opts.SharedCookies {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		client.Jar = jar
	}

	if opts.NoRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableCompression:    false,
		MaxIdleConnsPerHost:   5,
	}
}

// IsSuccessWithContent reports whether a status code is a 2xx other than 204.
func IsSuccessWithContent(status int) bool {
	return status >= 200 && status < 300 && status != http.StatusNoContent
}

// StatusError is returned when an API answers with an unexpected status.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Status, e.URL)
}

func newRequest(ctx context.Context, userAgent, rawURL, accept string) (*http.Request, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	return req, nil
}

func readJSONBody(resp *http.Response, rawURL string) ([]byte, error) {
	defer resp.Body.Close()

	if !IsSuccessWithContent(resp.StatusCode) {
		return nil, &StatusError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return body, nil
}
