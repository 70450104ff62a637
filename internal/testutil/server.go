// Package testutil routes requests for real platform hosts to a local
// httptest server so sources can be tested with their production URLs.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Server is an httptest server that dispatches on the original host and
// path of each request and records what it saw.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []string
}

// NewServer starts a server; it is closed with the test.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{handlers: make(map[string]http.HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers h for host+path, e.g. "api.reddit.com/api/info/".
func (s *Server) Handle(hostPath string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[hostPath] = h
}

// Requests returns host+path of every request received, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many requests hit hostPath.
func (s *Server) Count(hostPath string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == hostPath {
			n++
		}
	}
	return n
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(originalHostHeader) + r.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, key)
	h, ok := s.handlers[key]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// Transport returns a RoundTripper that sends every request to s.
func (s *Server) Transport() http.RoundTripper {
	target, _ := url.Parse(s.URL)
	return &rewriteTransport{target: target, base: http.DefaultTransport}
}

const originalHostHeader = "X-Original-Host"

type rewriteTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set(originalHostHeader, req.URL.Host)
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	out.Host = ""

	resp, err := rt.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	// Relative Location headers resolve against the URL the caller used.
	resp.Request = req
	return resp, nil
}
