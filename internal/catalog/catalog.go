// Package catalog fetches song metadata, lyrics and cover art from the
// NetEase Cloud Music web API.
//
// Requests go through a retrying HTTP client and carry the browser-like
// headers and cookies the API expects from its desktop client.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"tools.zach/dev/lyricard/internal/lyrics"
)

// DefaultBaseURL is the public NetEase API host.
const DefaultBaseURL = "http://music.163.com"

// maxCoverBytes caps downloaded cover images.
const maxCoverBytes = 10 << 20

var (
	// ErrNotFound is returned when the API has no song for an id.
	ErrNotFound = errors.New("song not found")
	// ErrBadID is returned for ids that are not positive integers.
	ErrBadID = errors.New("invalid song id")
)

// Song is the metadata needed to render a card.
type Song struct {
	ID     string
	Title  string
	Artist string
	// CoverURL points at the album art.
	CoverURL string
	// Lyrics is normalized text with timestamps removed, or
	// [lyrics.Instrumental] when the song has none.
	Lyrics string
}

// Options configures a Client.
type Options struct {
	// BaseURL defaults to [DefaultBaseURL].
	BaseURL string
	// Timeout bounds each HTTP attempt. Defaults to 10s.
	Timeout time.Duration
	// RetryMax is the number of retries after the first attempt.
	RetryMax int
}

// Client talks to the NetEase API.
type Client struct {
	base string
	http *retryablehttp.Client
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := retryablehttp.NewClient()
	hc.RetryMax = opts.RetryMax
	hc.HTTPClient.Timeout = opts.Timeout
	hc.Logger = nil // suppress retryablehttp's default logging
	return &Client{base: strings.TrimRight(opts.BaseURL, "/"), http: hc}
}

// ///////////////////////////////////////////////
// API responses
// ///////////////////////////////////////////////

type detailResponse struct {
	Songs []struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Album struct {
			BlurPicURL string `json:"blurPicUrl"`
		} `json:"album"`
	} `json:"songs"`
}

type lyricResponse struct {
	Lrc struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
}

// ///////////////////////////////////////////////
// Fetching
// ///////////////////////////////////////////////

// Song fetches metadata and lyrics for id.
func (c *Client) Song(ctx context.Context, id string) (*Song, error) {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseUint(id, 10, 64); err != nil || n == 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadID, id)
	}

	var detail detailResponse
	detailURL := c.base + "/api/song/detail?ids=" + url.QueryEscape("["+id+"]")
	if err := c.getJSON(ctx, http.MethodGet, detailURL, &detail); err != nil {
		return nil, fmt.Errorf("fetch song detail %s: %w", id, err)
	}
	if len(detail.Songs) == 0 {
		return nil, fmt.Errorf("song %s: %w", id, ErrNotFound)
	}
	d := detail.Songs[0]

	var lrc lyricResponse
	lyricURL := c.base + "/api/song/lyric?" + url.Values{
		"id": {id}, "lv": {"1"}, "kv": {"1"}, "tv": {"-1"},
	}.Encode()
	if err := c.getJSON(ctx, http.MethodPost, lyricURL, &lrc); err != nil {
		return nil, fmt.Errorf("fetch lyrics %s: %w", id, err)
	}

	song := &Song{
		ID:       id,
		Title:    d.Name,
		CoverURL: d.Album.BlurPicURL,
		Lyrics:   lyrics.Normalize(lyrics.StripTimestamps(lrc.Lrc.Lyric)),
	}
	if len(d.Artists) > 0 {
		song.Artist = d.Artists[0].Name
	}
	if song.Lyrics == "" {
		song.Lyrics = lyrics.Instrumental
	}
	return song, nil
}

// Cover returns the image bytes for ref. http(s) refs are downloaded;
// anything else is read from disk.
func (c *Client) Cover(ctx context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("read cover: %w", err)
		}
		return data, nil
	}

	resp, err := c.do(ctx, http.MethodGet, ref)
	if err != nil {
		return nil, fmt.Errorf("download cover: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read cover body: %w", err)
	}
	if len(data) > maxCoverBytes {
		return nil, fmt.Errorf("cover exceeds %d bytes", maxCoverBytes)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, method, rawURL string, v any) error {
	resp, err := c.do(ctx, method, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do sends a request with the desktop client headers and fails on non-200.
func (c *Client) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Referer", "http://music.163.com/")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_13_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/71.0.3578.98 Safari/537.36")
	req.AddCookie(&http.Cookie{Name: "appver", Value: "1.2.1"})
	req.AddCookie(&http.Cookie{Name: "os", Value: "osx"})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}
