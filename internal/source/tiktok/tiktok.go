// Package tiktok resolves TikTok videos through the aweme detail API.
//
// Resolution stores only the aweme id. The direct media URL expires, so the
// track fetches a fresh one from the same API each time playback starts.
package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"clipstream/internal/httputil"
	"clipstream/internal/log"
	"clipstream/internal/media"
	"clipstream/internal/source"
)

// Name is the source name stored with persisted tracks.
const Name = "tiktok"

// DefaultAPIURL is the aweme detail endpoint; the aweme id is appended to it.
const DefaultAPIURL = "https://api2.musical.ly/aweme/v1/aweme/detail/?aweme_id="

var (
	videoURLPattern  = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?tiktok\.com/@[^/]+/video/(\d+)`)
	mobileURLPattern = regexp.MustCompile(`^(?:https?://)?vm\.tiktok\.com/\w+`)
)

// TikTok implements source.Source for tiktok.com videos.
type TikTok struct {
	apiURL string
	pool   *httputil.Pool
}

// New creates a TikTok source. Its clients never follow redirects, so the
// short-link request can read Location, and share one cookie jar, since the
// detail API relies on cookies set by earlier responses.
func New(apiURL string, opts httputil.Options) (*TikTok, error) {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	opts.SharedCookies = true
	opts.NoRedirects = true

	pool, err := httputil.NewPool(opts)
	if err != nil {
		return nil, fmt.Errorf("creating tiktok http pool: %w", err)
	}
	return &TikTok{apiURL: apiURL, pool: pool}, nil
}

func (t *TikTok) Name() string { return Name }

// Close drops pooled connections.
func (t *TikTok) Close() { t.pool.Close() }

// MatchVideoID extracts the aweme id from a direct video URL.
func MatchVideoID(rawURL string) (string, bool) {
	m := videoURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsShortURL reports whether rawURL is a vm.tiktok.com short link.
func IsShortURL(rawURL string) bool {
	return mobileURLPattern.MatchString(rawURL)
}

// Resolve loads a TikTok video from a direct or short URL.
func (t *TikTok) Resolve(ctx context.Context, rawURL string) (source.Track, error) {
	if id, ok := MatchVideoID(rawURL); ok {
		return t.loadTrack(ctx, id)
	}

	if !IsShortURL(rawURL) {
		return nil, source.ErrNotRecognized
	}

	id, err := t.resolveShortURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return t.loadTrack(ctx, id)
}

// resolveShortURL reads the redirect target of a short link and extracts
// the aweme id from it.
func (t *TikTok) resolveShortURL(ctx context.Context, rawURL string) (string, error) {
	h := t.pool.Get()
	defer h.Close()

	realURL, err := h.Redirect(ctx, httputil.WithScheme(rawURL))
	if errors.Is(err, httputil.ErrNoLocation) {
		return "", media.NotPlayable("tiktok url is not a valid video", err)
	}
	if err != nil {
		return "", media.Upstream("failed to get real url of tiktok video", err)
	}

	log.Debugf("tiktok short url %s redirects to %s", rawURL, realURL)

	id, ok := MatchVideoID(realURL)
	if !ok {
		return "", media.NotPlayable("tiktok url is not a valid video", fmt.Errorf("redirect target %q is not a video url", realURL))
	}
	return id, nil
}

// Decode rebuilds a track from persisted info.
func (t *TikTok) Decode(info media.Info) (source.Track, error) {
	if err := httputil.ValidateNumericID(info.Identifier); err != nil {
		return nil, fmt.Errorf("invalid tiktok identifier: %w", err)
	}
	return &Track{info: info, source: t}, nil
}

func (t *TikTok) loadTrack(ctx context.Context, id string) (source.Track, error) {
	h := t.pool.Get()
	defer h.Close()

	detail, err := t.fetchDetail(ctx, h, id)
	if err != nil {
		return nil, media.Upstream("failed to fetch tiktok video info", err)
	}

	return &Track{info: detail.info(id), source: t}, nil
}

// detailResponse mirrors the parts of the aweme detail response that are read.
type detailResponse struct {
	AwemeDetail *awemeDetail `json:"aweme_detail"`
}

type awemeDetail struct {
	Desc   *string `json:"desc"`
	Author struct {
		Nickname *string `json:"nickname"`
		UniqueID *string `json:"unique_id"`
	} `json:"author"`
	Video struct {
		Duration *int64  `json:"duration"`
		Cover    urlList `json:"cover"`
		PlayAddr urlList `json:"play_addr"`
	} `json:"video"`
}

type urlList struct {
	URLList []string `json:"url_list"`
}

func (u urlList) first() string {
	if len(u.URLList) == 0 {
		return ""
	}
	return u.URLList[0]
}

func (t *TikTok) fetchDetail(ctx context.Context, h *httputil.Interface, id string) (*awemeDetail, error) {
	body, err := h.GetJSON(ctx, t.apiURL+url.QueryEscape(id))
	if err != nil {
		return nil, err
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing tiktok detail: %w", err)
	}
	if resp.AwemeDetail == nil {
		return nil, fmt.Errorf("tiktok detail response has no aweme_detail")
	}
	return resp.AwemeDetail, nil
}

func (d *awemeDetail) info(id string) media.Info {
	length := media.DurationUnknown
	if d.Video.Duration != nil {
		length = *d.Video.Duration
	}

	return media.Info{
		Title:        text(d.Desc),
		Author:       text(d.Author.Nickname),
		Length:       length,
		Identifier:   id,
		IsStream:     false,
		URI:          "https://www.tiktok.com/@" + text(d.Author.UniqueID) + "/video/" + id,
		ThumbnailURL: d.Video.Cover.first(),
	}
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
