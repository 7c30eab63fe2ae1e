// google.go fetches font files through the Google Fonts CSS API.
//
// Sources use the form "google:FAMILY:WEIGHT" (e.g. "google:Noto Sans SC:700").
// Fetched fonts are stored as SFNT files in the resolver's cache directory so
// later runs work offline.

package typeface

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"tools.zach/dev/lyricard/internal/atomicfile"
)

// DefaultCSSURL is the Google Fonts CSS2 endpoint.
const DefaultCSSURL = "https://fonts.googleapis.com/css2"

// fontURLRe extracts the first font file URL from a CSS response, e.g.
// url(https://fonts.gstatic.com/s/inter/v18/xxx.woff2).
var fontURLRe = regexp.MustCompile(`url\((https?://[^)]+)\)`)

var (
	defaultClient     *retryablehttp.Client
	defaultClientOnce sync.Once
)

// sharedClient returns the retrying client used when a Resolver has none.
func sharedClient() *retryablehttp.Client {
	defaultClientOnce.Do(func() {
		defaultClient = retryablehttp.NewClient()
		defaultClient.RetryMax = 2
		defaultClient.HTTPClient.Timeout = 15 * time.Second
		defaultClient.Logger = nil
	})
	return defaultClient
}

// ParseGoogleFontSpec splits "google:Family:Weight" into its parts.
func ParseGoogleFontSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// fetchGoogle returns SFNT bytes for family at weight, from cache when present.
func (r *Resolver) fetchGoogle(family, weight string) ([]byte, error) {
	cacheFile := filepath.Join(r.CacheDir, cacheName(family, weight))
	if r.CacheDir != "" {
		if data, err := os.ReadFile(cacheFile); err == nil {
			slog.Debug("font cache hit", "family", family, "weight", weight)
			return data, nil
		}
	}

	cssURL := r.CSSURL
	if cssURL == "" {
		cssURL = DefaultCSSURL
	}
	cssBody, err := r.get(fmt.Sprintf("%s?family=%s:wght@%s", cssURL, url.QueryEscape(family), weight), 1<<20)
	if err != nil {
		return nil, fmt.Errorf("fetch css for %s wght@%s: %w", family, weight, err)
	}

	m := fontURLRe.FindSubmatch(cssBody)
	if m == nil {
		return nil, fmt.Errorf("no font url in css for %s wght@%s", family, weight)
	}
	fontURL := string(m[1])

	data, err := r.get(fontURL, 10<<20)
	if err != nil {
		return nil, fmt.Errorf("download font %s: %w", fontURL, err)
	}
	data, err = toSFNT(fontURL, data)
	if err != nil {
		return nil, err
	}

	if r.CacheDir != "" {
		if err := atomicfile.Write(cacheFile, data, 0o644); err != nil {
			slog.Warn("font cache write failed", "path", cacheFile, "error", err)
		}
	}
	slog.Info("fetched google font", "family", family, "weight", weight, "bytes", len(data))
	return data, nil
}

// get performs a GET and reads at most limit bytes of a 200 response.
func (r *Resolver) get(rawURL string, limit int64) ([]byte, error) {
	client := r.Client
	if client == nil {
		client = sharedClient()
	}
	req, err := retryablehttp.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// A modern user agent gets WOFF2 URLs, which toSFNT converts.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// cacheName builds a file-system friendly cache file name.
func cacheName(family, weight string) string {
	return strings.ReplaceAll(family, " ", "_") + "-" + weight + ".ttf"
}
