package reddit

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"clipstream/internal/httputil"
	"clipstream/internal/media"
	"clipstream/internal/source"
	"clipstream/internal/testutil"
)

const videoPost = `{
  "kind": "Listing",
  "data": {
    "children": [{
      "kind": "t3",
      "data": {
        "title": "Cat learns to open doors",
        "author": "whiskers",
        "thumbnail": "https://b.thumbs.redditmedia.com/abc.jpg",
        "secure_media": {
          "reddit_video": {
            "fallback_url": "https://v.redd.it/x7k2m9/DASH_720.mp4?source=fallback",
            "duration": 83,
            "is_gif": false
          }
        }
      }
    }]
  }
}`

const textPost = `{
  "data": {
    "children": [{
      "data": {
        "title": "Discussion thread",
        "author": "mod",
        "thumbnail": "self",
        "secure_media": null
      }
    }]
  }
}`

func newTestSource(t *testing.T, srv *testutil.Server) *Reddit {
	t.Helper()
	r, err := New("", httputil.Options{Transport: srv.Transport()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return r
}

func servePost(srv *testutil.Server, wantID, body string) {
	srv.Handle("api.reddit.com/api/info/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "t3_"+wantID {
			http.Error(w, "wrong id "+got, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

func TestMatchPostID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"www", "https://www.reddit.com/r/aww/comments/1abcde/cat_learns_to_open_doors/", "1abcde", true},
		{"old", "https://old.reddit.com/r/aww/comments/1abcde/cat/", "1abcde", true},
		{"bare host", "https://reddit.com/r/aww/comments/1abcde/cat", "1abcde", true},
		{"no scheme", "reddit.com/r/aww/comments/1abcde/cat/", "1abcde", true},
		{"http", "http://www.reddit.com/r/aww/comments/1abcde/cat/", "1abcde", true},
		{"query string", "https://www.reddit.com/r/aww/comments/1abcde/cat/?utm_source=share", "1abcde", true},
		{"no title segment", "https://www.reddit.com/r/aww/comments/1abcde", "1abcde", true},
		{"subreddit only", "https://www.reddit.com/r/aww/", "", false},
		{"user page", "https://www.reddit.com/user/whiskers/", "", false},
		{"other site", "https://www.youtube.com/watch?v=abc", "", false},
		{"lookalike host", "https://notreddit.com/r/aww/comments/1abcde/cat/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := MatchPostID(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("MatchPostID(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("MatchPostID(%q) = %q, want %q", tt.url, id, tt.wantID)
			}
		})
	}
}

func TestResolveVideoPost(t *testing.T) {
	srv := testutil.NewServer(t)
	servePost(srv, "1abcde", videoPost)
	r := newTestSource(t, srv)

	track, err := r.Resolve(context.Background(), "https://www.reddit.com/r/aww/comments/1abcde/cat_learns_to_open_doors/")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	info := track.Info()
	if info.Title != "Cat learns to open doors" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.Author != "whiskers" {
		t.Errorf("Author = %q", info.Author)
	}
	if info.Identifier != "x7k2m9" {
		t.Errorf("Identifier = %q, want x7k2m9", info.Identifier)
	}
	if info.URI != "https://v.redd.it/x7k2m9/DASH_720.mp4?source=fallback" {
		t.Errorf("URI = %q", info.URI)
	}
	if info.Length != 83000 {
		t.Errorf("Length = %d, want 83000", info.Length)
	}
	if info.IsStream {
		t.Error("IsStream should be false")
	}
	if info.ThumbnailURL != "https://b.thumbs.redditmedia.com/abc.jpg" {
		t.Errorf("ThumbnailURL = %q", info.ThumbnailURL)
	}
	if track.SourceName() != Name {
		t.Errorf("SourceName() = %q", track.SourceName())
	}
	if _, ok := track.(source.Streamer); ok {
		t.Error("reddit tracks are played from their URI and should not be streamers")
	}
}

func TestResolveTextPost(t *testing.T) {
	srv := testutil.NewServer(t)
	servePost(srv, "9zzzzz", textPost)
	r := newTestSource(t, srv)

	_, err := r.Resolve(context.Background(), "https://www.reddit.com/r/aww/comments/9zzzzz/discussion/")
	if !errors.Is(err, media.ErrNotPlayable) {
		t.Fatalf("Resolve() error = %v, want not playable", err)
	}
	if errors.Is(err, media.ErrUpstream) {
		t.Error("not playable error must not also be an upstream failure")
	}
}

func TestResolveMissingPost(t *testing.T) {
	srv := testutil.NewServer(t)
	servePost(srv, "0gone0", `{"kind":"Listing","data":{"children":[]}}`)
	r := newTestSource(t, srv)

	_, err := r.Resolve(context.Background(), "https://www.reddit.com/r/aww/comments/0gone0/deleted/")
	if !errors.Is(err, media.ErrNotPlayable) {
		t.Fatalf("Resolve() error = %v, want not playable", err)
	}
	if errors.Is(err, media.ErrUpstream) {
		t.Error("empty listing must not be an upstream failure")
	}
}

func TestResolveUsesPostIDVerbatim(t *testing.T) {
	var rawQuery string
	srv := testutil.NewServer(t)
	srv.Handle("api.reddit.com/api/info/", func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(videoPost))
	})
	r := newTestSource(t, srv)

	if _, err := r.Resolve(context.Background(), "https://www.reddit.com/r/aww/comments/ab+c%2Cd/cat/"); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if rawQuery != "id=t3_ab+c%2Cd" {
		t.Errorf("query = %q, want the post id appended unchanged", rawQuery)
	}
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"forbidden", http.StatusForbidden, `{"message":"Forbidden"}`},
		{"invalid json", http.StatusOK, `<html>`},
		{"foreign fallback url", http.StatusOK, `{"data":{"children":[{"data":{"secure_media":{"reddit_video":{"fallback_url":"https://cdn.example.com/x.mp4"}}}}]}}`},
		{"embed without reddit video", http.StatusOK, `{"data":{"children":[{"data":{"secure_media":{"oembed":{"type":"video"}}}}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewServer(t)
			srv.Handle("api.reddit.com/api/info/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			r := newTestSource(t, srv)

			_, err := r.Resolve(context.Background(), "https://www.reddit.com/r/aww/comments/1abcde/cat/")
			if !errors.Is(err, media.ErrUpstream) {
				t.Errorf("Resolve() error = %v, want upstream failure", err)
			}
		})
	}
}

func TestResolveNotRecognized(t *testing.T) {
	srv := testutil.NewServer(t)
	r := newTestSource(t, srv)

	_, err := r.Resolve(context.Background(), "https://www.tiktok.com/@user/video/123")
	if !errors.Is(err, source.ErrNotRecognized) {
		t.Errorf("Resolve() error = %v, want ErrNotRecognized", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("unrecognized URL caused %d requests", n)
	}
}

func TestMissingFieldsDefault(t *testing.T) {
	body := `{"data":{"children":[{"data":{"secure_media":{"reddit_video":{"fallback_url":"https://v.redd.it/abc/DASH_480.mp4"}}}}]}}`

	info, err := extractInfo([]byte(body))
	if err != nil {
		t.Fatalf("extractInfo() error: %v", err)
	}
	if info.Title != "" || info.Author != "" || info.ThumbnailURL != "" {
		t.Errorf("missing text fields should be empty, got %+v", info)
	}
	if info.Length != media.DurationUnknown {
		t.Errorf("Length = %d, want DurationUnknown", info.Length)
	}
}

func TestDurationForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"number", `45`, 45000},
		{"text seconds", `"45"`, 45000},
		{"minutes", `"1:30"`, 90000},
		{"hours", `"1:02:03"`, 3723000},
		{"null", `null`, media.DurationUnknown},
		{"garbage", `"soon"`, media.DurationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLength([]byte(tt.raw)); got != tt.want {
				t.Errorf("parseLength(%s) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"default", "https://www.reddit.com/static/noimage.png"},
		{"self", "https://www.reddit.com/static/self_default2.png"},
		{"nsfw", "https://www.reddit.com/static/nsfw2.png"},
		{"spoiler", "spoiler"},
		{"", ""},
		{"https://b.thumbs.redditmedia.com/abc.jpg", "https://b.thumbs.redditmedia.com/abc.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := thumbnail(tt.input); got != tt.want {
				t.Errorf("thumbnail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeAndClone(t *testing.T) {
	r, err := New("", httputil.Options{})
	if err != nil {
		t.Fatal(err)
	}

	info := media.Info{Title: "t", Identifier: "x7k2m9", URI: "https://v.redd.it/x7k2m9/DASH_720.mp4", Length: 1000}
	track, err := r.Decode(info)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if track.Info() != info {
		t.Errorf("Decode() info = %+v, want %+v", track.Info(), info)
	}

	clone := track.Clone()
	if clone == track {
		t.Error("Clone() returned the same track")
	}
	if clone.Info() != info {
		t.Errorf("Clone() info = %+v", clone.Info())
	}

	if _, err := r.Decode(media.Info{}); err == nil {
		t.Error("Decode() of empty info should fail")
	}
}
