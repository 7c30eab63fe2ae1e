// face.go wraps x/image font faces with the ink-box metrics layout needs.

package typeface

import (
	"image"

	"golang.org/x/image/font"
)

// Face is a sized font face. All measurements are glyph ink boxes rounded
// outward to whole pixels, never character counts.
type Face struct {
	// face draws and measures glyphs.
	face font.Face
	// script is the family this face was opened for.
	script Script
	// size is the em size in pixels.
	size float64
}

// NewFace wraps an already sized font.Face.
func NewFace(face font.Face, script Script, size float64) *Face {
	return &Face{face: face, script: script, size: size}
}

// Font returns the underlying drawing face.
func (f *Face) Font() font.Face { return f.face }

// Script returns the family the face belongs to.
func (f *Face) Script() Script { return f.script }

// Size returns the em size in pixels.
func (f *Face) Size() float64 { return f.size }

// Bounds returns the ink box of s relative to a baseline origin at (0, 0).
// Min.Y is negative for glyphs that rise above the baseline. Empty text has
// an empty box.
func (f *Face) Bounds(s string) image.Rectangle {
	if s == "" {
		return image.Rectangle{}
	}
	b, _ := font.BoundString(f.face, s)
	return image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
}

// Width returns the ink width of s in pixels.
func (f *Face) Width(s string) int { return f.Bounds(s).Dx() }

// Height returns the ink height of s in pixels.
func (f *Face) Height(s string) int { return f.Bounds(s).Dy() }

// Close releases the underlying face.
func (f *Face) Close() error { return f.face.Close() }
