// source.go turns configured font sources into SFNT bytes.

package typeface

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tdewolff/font"
)

// Resolver loads font data for a source string. A source is either a
// "google:Family:Weight" spec or a file path, which may be a doublestar glob
// such as "fonts/**/PingFang*Bold.ttf". Relative paths are anchored at Root.
type Resolver struct {
	// Root anchors relative font paths. Empty means the working directory.
	Root string
	// CacheDir holds fonts fetched from Google Fonts. Empty disables caching.
	CacheDir string
	// CSSURL overrides [DefaultCSSURL].
	CSSURL string
	// Client performs remote fetches. Nil uses a shared retrying client.
	Client *retryablehttp.Client
}

// Load returns SFNT (TTF/OTF) bytes for source, converting WOFF2 if needed.
func (r *Resolver) Load(source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty font source")
	}
	if family, weight, ok := ParseGoogleFontSpec(source); ok {
		return r.fetchGoogle(family, weight)
	}

	path, err := r.locate(source)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return toSFNT(path, data)
}

// locate expands pattern and returns the first match in lexical order.
func (r *Resolver) locate(pattern string) (string, error) {
	if !filepath.IsAbs(pattern) && r.Root != "" {
		pattern = filepath.Join(r.Root, pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("bad font pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no font matches %q: %w", pattern, fs.ErrNotExist)
	}
	slices.Sort(matches)
	return matches[0], nil
}

// toSFNT converts WOFF2 data to SFNT and passes anything else through.
func toSFNT(name string, data []byte) ([]byte, error) {
	if !isWOFF2(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert woff2 to sfnt: %w", err)
	}
	return sfnt, nil
}

// isWOFF2 checks the file extension, then the "wOF2" magic bytes.
func isWOFF2(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".woff2") {
		return true
	}
	return len(data) >= 4 && string(data[:4]) == "wOF2"
}
