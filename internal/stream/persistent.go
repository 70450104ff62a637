// Package stream provides a seekable reader over a remote HTTP resource that
// reconnects with range requests when the position changes or the
// connection drops.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"clipstream/internal/httputil"
	"clipstream/internal/log"
	"clipstream/internal/media"
)

// Persistent is an io.ReadSeekCloser over an HTTP URL. Nothing is requested
// until the first Read. Not safe for concurrent use.
type Persistent struct {
	ctx    context.Context
	http   *httputil.Interface
	url    string
	header http.Header

	body     io.ReadCloser
	position int64
	length   int64 // -1 while unknown
	closed   bool
}

// Open creates a stream over rawURL using the borrowed handle h. The handle
// stays owned by the caller. header may be nil.
func Open(ctx context.Context, h *httputil.Interface, rawURL string, header http.Header) (*Persistent, error) {
	if err := httputil.ValidateURL(rawURL); err != nil {
		return nil, media.Upstream("invalid stream URL", err)
	}
	return &Persistent{
		ctx:    ctx,
		http:   h,
		url:    rawURL,
		header: header,
		length: -1,
	}, nil
}

// Connect opens the connection eagerly so that an unreachable URL surfaces
// before the stream is handed to a processor.
func (p *Persistent) Connect() error {
	if p.body != nil {
		return nil
	}
	return p.connect()
}

// Length returns the total content length, or -1 if not yet known.
func (p *Persistent) Length() int64 {
	return p.length
}

// Position returns the current read offset.
func (p *Persistent) Position() int64 {
	return p.position
}

// maxRedirects bounds how many Location hops connect follows itself, which
// is needed when the handle's client is configured not to follow redirects.
const maxRedirects = 5

func (p *Persistent) connect() error {
	if p.closed {
		return fmt.Errorf("stream is closed")
	}

	var resp *http.Response
	for hops := 0; ; hops++ {
		req, err := p.newRequest()
		if err != nil {
			return media.Upstream("creating stream request", err)
		}

		resp, err = p.http.Do(req)
		if err != nil {
			return media.Upstream("connecting to stream", err)
		}

		if !isRedirect(resp.StatusCode) {
			break
		}

		loc, err := resp.Location()
		resp.Body.Close()
		if err != nil {
			return media.Upstream("following stream redirect", err)
		}
		if hops >= maxRedirects {
			return media.Upstream("following stream redirect", fmt.Errorf("stopped after %d redirects", maxRedirects))
		}
		// Later reconnects go straight to the final location.
		p.url = loc.String()
	}

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		resp.Body.Close()
		// Position is at or past the end.
		p.body = io.NopCloser(strings.NewReader(""))
		return nil
	case resp.StatusCode == http.StatusOK && p.position > 0:
		// Server ignored the range; skip ahead manually.
		if _, err := io.CopyN(io.Discard, resp.Body, p.position); err != nil {
			resp.Body.Close()
			return media.Upstream("skipping to stream position", err)
		}
	case !httputil.IsSuccessWithContent(resp.StatusCode):
		resp.Body.Close()
		return media.Upstream("opening stream", &httputil.StatusError{URL: p.url, Status: resp.StatusCode})
	}

	p.learnLength(resp)
	p.body = resp.Body
	log.Debugf("stream connected at offset %d (length %d): %s", p.position, p.length, p.url)
	return nil
}

func (p *Persistent) newRequest() (*http.Request, error) {
	req, err := http.NewRequestWithContext(p.ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range p.header {
		req.Header[k] = v
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", p.http.UserAgent())
	}
	if p.position > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", p.position))
	}
	return req, nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// learnLength records the total size from Content-Range, falling back to
// Content-Length on a full response.
func (p *Persistent) learnLength(resp *http.Response) {
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		if i := strings.LastIndexByte(cr, '/'); i >= 0 {
			if n, err := strconv.ParseInt(cr[i+1:], 10, 64); err == nil {
				p.length = n
				return
			}
		}
	}
	if resp.StatusCode == http.StatusOK && resp.ContentLength >= 0 {
		p.length = resp.ContentLength
	}
}

// Read reads from the current position, reconnecting once if the
// connection fails mid-stream.
func (p *Persistent) Read(b []byte) (int, error) {
	if p.closed {
		return 0, fmt.Errorf("read on closed stream")
	}
	if p.body == nil {
		if err := p.connect(); err != nil {
			return 0, err
		}
	}

	n, err := p.body.Read(b)
	p.position += int64(n)

	if err != nil && !errors.Is(err, io.EOF) && p.ctx.Err() == nil {
		log.Debugf("stream read failed at offset %d, reconnecting: %v", p.position, err)
		p.dropConnection()
		if cerr := p.connect(); cerr != nil {
			return n, cerr
		}
		if n > 0 {
			return n, nil
		}
		m, err := p.body.Read(b)
		p.position += int64(m)
		return m, err
	}

	return n, err
}

// Seek moves the read position. The connection is reopened lazily on the
// next Read. Seeking relative to the end requires a known length.
func (p *Persistent) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = p.position + offset
	case io.SeekEnd:
		if p.length < 0 {
			if err := p.Connect(); err != nil {
				return p.position, err
			}
		}
		if p.length < 0 {
			return p.position, fmt.Errorf("seek from end: stream length unknown")
		}
		target = p.length + offset
	default:
		return p.position, fmt.Errorf("seek: invalid whence %d", whence)
	}

	if target < 0 {
		return p.position, fmt.Errorf("seek: negative position %d", target)
	}

	if target != p.position {
		p.dropConnection()
		p.position = target
	}
	return target, nil
}

func (p *Persistent) dropConnection() {
	if p.body != nil {
		p.body.Close()
		p.body = nil
	}
}

// Close releases the connection. The borrowed HTTP handle is not closed.
func (p *Persistent) Close() error {
	if p.closed {
		return nil
	}
	p.dropConnection()
	p.closed = true
	return nil
}
