// selector.go maps (text, role) pairs to cached font faces.

package typeface

import (
	"fmt"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Role is the part of the card a piece of text is drawn in. It picks the
// size only; the family always follows the text's script.
type Role int

const (
	RoleLyric Role = iota
	RoleTitle
	RoleArtist
)

// String returns the role name used in logs.
func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleArtist:
		return "artist"
	default:
		return "lyric"
	}
}

// Sizes holds the em size in pixels for each role.
type Sizes struct {
	Lyric  float64
	Title  float64
	Artist float64
}

// For returns the size configured for role.
func (s Sizes) For(r Role) float64 {
	switch r {
	case RoleTitle:
		return s.Title
	case RoleArtist:
		return s.Artist
	default:
		return s.Lyric
	}
}

// FontLoadError reports a font that could not be loaded at the requested size.
type FontLoadError struct {
	Script Script
	Source string
	Size   float64
	Err    error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("load %s font %q at %gpx: %v", e.Script, e.Source, e.Size, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// faceKey identifies a cached face.
type faceKey struct {
	script Script
	size   float64
}

// Selector resolves each script's configured source once and caches one
// face per (script, size). A Selector is not safe for concurrent use.
type Selector struct {
	// sources maps each script to its configured font source.
	sources map[Script]string
	// sizes holds the per-role em sizes.
	sizes Sizes
	// resolver turns sources into font bytes.
	resolver *Resolver
	// fonts caches parsed font files per script.
	fonts map[Script]*opentype.Font
	// faces caches sized faces.
	faces map[faceKey]*Face
}

// NewSelector creates a Selector over the given CJK and Latin sources.
func NewSelector(cjk, latin string, sizes Sizes, resolver *Resolver) *Selector {
	if resolver == nil {
		resolver = &Resolver{}
	}
	return &Selector{
		sources:  map[Script]string{CJK: cjk, Latin: latin},
		sizes:    sizes,
		resolver: resolver,
		fonts:    make(map[Script]*opentype.Font),
		faces:    make(map[faceKey]*Face),
	}
}

// Select returns the face for text drawn in role.
func (s *Selector) Select(text string, role Role) (*Face, error) {
	script := Classify(text)
	f, err := s.Face(script, s.sizes.For(role))
	if err != nil {
		return nil, err
	}
	slog.Debug("font selected", "role", role, "script", script, "size", f.Size())
	return f, nil
}

// Face returns the face for script at size, opening it on first use.
func (s *Selector) Face(script Script, size float64) (*Face, error) {
	key := faceKey{script: script, size: size}
	if f, ok := s.faces[key]; ok {
		return f, nil
	}

	source := s.sources[script]
	if size <= 0 {
		return nil, &FontLoadError{Script: script, Source: source, Size: size, Err: fmt.Errorf("size must be positive")}
	}
	otf, err := s.font(script)
	if err != nil {
		return nil, &FontLoadError{Script: script, Source: source, Size: size, Err: err}
	}
	ff, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &FontLoadError{Script: script, Source: source, Size: size, Err: fmt.Errorf("create face: %w", err)}
	}

	f := NewFace(ff, script, size)
	s.faces[key] = f
	return f, nil
}

// font parses the script's font file once.
func (s *Selector) font(script Script) (*opentype.Font, error) {
	if otf, ok := s.fonts[script]; ok {
		return otf, nil
	}
	data, err := s.resolver.Load(s.sources[script])
	if err != nil {
		return nil, err
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	s.fonts[script] = otf
	return otf, nil
}

// Close releases every cached face.
func (s *Selector) Close() error {
	for key, f := range s.faces {
		f.Close()
		delete(s.faces, key)
	}
	return nil
}
