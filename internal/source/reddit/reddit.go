// Package reddit resolves Reddit video posts through the public post-info API.
package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"clipstream/internal/httputil"
	"clipstream/internal/log"
	"clipstream/internal/media"
	"clipstream/internal/source"
)

// Name is the source name stored with persisted tracks.
const Name = "reddit"

// DefaultAPIURL is the post-info endpoint; the post id is appended to it.
const DefaultAPIURL = "https://api.reddit.com/api/info/?id=t3_"

// Placeholder thumbnails Reddit uses instead of a real preview.
const (
	noImageURL   = "https://www.reddit.com/static/noimage.png"
	selfPostURL  = "https://www.reddit.com/static/self_default2.png"
	nsfwImageURL = "https://www.reddit.com/static/nsfw2.png"
)

var (
	postURLPattern  = regexp.MustCompile(`^(?:https?://)?(?:old\.|www\.)?reddit\.com/r/\w+/\w+/([^/?#]+)(?:[/?#].*)?$`)
	videoURLPattern = regexp.MustCompile(`^https?://v\.redd\.it/([^/]+)/.+`)
)

// Reddit implements source.Source for reddit.com posts.
type Reddit struct {
	apiURL string
	pool   *httputil.Pool
}

// New creates a Reddit source. An empty apiURL selects DefaultAPIURL.
func New(apiURL string, opts httputil.Options) (*Reddit, error) {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	pool, err := httputil.NewPool(opts)
	if err != nil {
		return nil, fmt.Errorf("creating reddit http pool: %w", err)
	}
	return &Reddit{apiURL: apiURL, pool: pool}, nil
}

func (r *Reddit) Name() string { return Name }

// Close drops pooled connections.
func (r *Reddit) Close() { r.pool.Close() }

// MatchPostID extracts the post id from a Reddit post URL.
func MatchPostID(rawURL string) (string, bool) {
	m := postURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Resolve loads the video behind a Reddit post URL.
func (r *Reddit) Resolve(ctx context.Context, rawURL string) (source.Track, error) {
	postID, ok := MatchPostID(rawURL)
	if !ok {
		return nil, source.ErrNotRecognized
	}

	log.Debugf("loading reddit post %s", postID)

	h := r.pool.Get()
	defer h.Close()

	body, err := h.GetJSON(ctx, r.apiURL+postID)
	if err != nil {
		return nil, media.Upstream("fetching reddit post info", err)
	}

	info, err := extractInfo(body)
	if err != nil {
		return nil, err
	}

	return &Track{info: info}, nil
}

// Decode rebuilds a track from persisted info.
func (r *Reddit) Decode(info media.Info) (source.Track, error) {
	if info.Identifier == "" || info.URI == "" {
		return nil, fmt.Errorf("reddit track needs identifier and uri")
	}
	return &Track{info: info}, nil
}

// listing mirrors the parts of the post-info response that are read.
type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	Title       *string         `json:"title"`
	Author      *string         `json:"author"`
	Thumbnail   *string         `json:"thumbnail"`
	SecureMedia json.RawMessage `json:"secure_media"`
}

type secureMedia struct {
	RedditVideo struct {
		FallbackURL string          `json:"fallback_url"`
		Duration    json.RawMessage `json:"duration"`
	} `json:"reddit_video"`
}

func extractInfo(body []byte) (media.Info, error) {
	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return media.Info{}, media.Upstream("parsing reddit post info", err)
	}
	// Deleted or unknown posts come back as an empty listing.
	if len(l.Data.Children) == 0 {
		return media.Info{}, media.NotPlayable("reddit post does not contain a video", nil)
	}
	p := l.Data.Children[0].Data

	if isNull(p.SecureMedia) {
		return media.Info{}, media.NotPlayable("reddit post does not contain a video", nil)
	}

	var sm secureMedia
	if err := json.Unmarshal(p.SecureMedia, &sm); err != nil {
		return media.Info{}, media.Upstream("parsing reddit secure_media", err)
	}

	m := videoURLPattern.FindStringSubmatch(sm.RedditVideo.FallbackURL)
	if m == nil {
		return media.Info{}, media.Upstream("could not determine playback url", fmt.Errorf("unexpected fallback url %q", sm.RedditVideo.FallbackURL))
	}

	return media.Info{
		Title:        text(p.Title),
		Author:       text(p.Author),
		Length:       parseLength(sm.RedditVideo.Duration),
		Identifier:   m[1],
		IsStream:     false,
		URI:          sm.RedditVideo.FallbackURL,
		ThumbnailURL: thumbnail(text(p.Thumbnail)),
	}, nil
}

// thumbnail swaps Reddit's placeholder keywords for their static images.
func thumbnail(value string) string {
	switch value {
	case "default":
		return noImageURL
	case "self":
		return selfPostURL
	case "nsfw":
		return nsfwImageURL
	default:
		return value
	}
}

// parseLength reads the duration, which Reddit sends as a number of seconds
// but which may also arrive as "m:ss" text. Anything unreadable is unknown.
func parseLength(raw json.RawMessage) int64 {
	if isNull(raw) {
		return media.DurationUnknown
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		value = string(raw)
	}

	ms, err := media.ParseDurationText(value)
	if err != nil {
		log.Debugf("unreadable reddit duration %s: %v", raw, err)
		return media.DurationUnknown
	}
	return ms
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
