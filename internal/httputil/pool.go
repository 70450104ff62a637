package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
)

// ErrNoLocation is returned by Redirect when a response carries no Location header.
var ErrNoLocation = errors.New("response has no Location header")

// Pool lends out Interface handles, one per operation. All handles from a
// pool share one client, so they share its transport, cookie jar and
// redirect policy. A Pool is safe for concurrent use.
type Pool struct {
	client    *http.Client
	userAgent string
}

// NewPool builds the client described by opts and a pool around it.
func NewPool(opts Options) (*Pool, error) {
	client, err := NewClient(opts)
	if err != nil {
		return nil, err
	}

	return &Pool{client: client, userAgent: opts.UserAgent}, nil
}

// Get borrows a handle. Each call returns a new handle, so closing one never
// affects another. Callers must Close it when the operation ends.
func (p *Pool) Get() *Interface {
	return &Interface{pool: p}
}

// Client exposes the pool's underlying client.
func (p *Pool) Client() *http.Client {
	return p.client
}

// Close drops idle connections held by the pool's transport.
func (p *Pool) Close() {
	p.client.CloseIdleConnections()
}

// Interface is a borrowed handle for issuing requests.
type Interface struct {
	pool   *Pool
	closed atomic.Bool
}

// Close ends the borrow. Closing twice is a no-op.
func (i *Interface) Close() error {
	i.closed.Store(true)
	return nil
}

// UserAgent returns the User-Agent requests from this handle should carry.
func (i *Interface) UserAgent() string {
	if i.pool.userAgent == "" {
		return DefaultUserAgent
	}
	return i.pool.userAgent
}

// Do sends req with the pool's client.
func (i *Interface) Do(req *http.Request) (*http.Response, error) {
	if i.closed.Load() {
		return nil, fmt.Errorf("http interface used after close")
	}
	return i.pool.client.Do(req)
}

// Get performs a GET request with standard browser-like headers.
func (i *Interface) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := newRequest(ctx, i.pool.userAgent, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	return i.Do(req)
}

// GetJSON performs a GET request with a JSON accept header and returns the
// body of a 2xx response.
func (i *Interface) GetJSON(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := newRequest(ctx, i.pool.userAgent, rawURL, "application/json")
	if err != nil {
		return nil, err
	}

	resp, err := i.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return readJSONBody(resp, rawURL)
}

// Redirect issues a GET and returns the absolute target of the response's
// Location header. The pool must be configured with NoRedirects. Error
// statuses are reported as *StatusError; ErrNoLocation is only returned for
// 2xx and 3xx responses that carry no Location.
func (i *Interface) Redirect(ctx context.Context, rawURL string) (string, error) {
	resp, err := i.Get(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 || resp.StatusCode < 200 {
		return "", &StatusError{URL: rawURL, Status: resp.StatusCode}
	}

	loc, err := resp.Location()
	if err != nil {
		if errors.Is(err, http.ErrNoLocation) {
			return "", ErrNoLocation
		}
		return "", fmt.Errorf("parsing Location header: %w", err)
	}

	return loc.String(), nil
}
