// Package layout computes where every element of a lyric card goes.
//
// [Compute] is a single forward pass over measured inputs. It allocates no
// images and draws nothing; the resulting [Plan] is consumed read-only by
// the compositor.
//
// Vertical structure, top to bottom:
//
//	cover (scaled to the canvas width)
//	padding
//	lyric rows
//	banner spacing + banner row
//	padding + bottom budget, holding title, artist, icon and QR code
package layout

import (
	"fmt"
	"image"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Kind identifies what an [Element] draws.
type Kind int

const (
	KindCover Kind = iota
	KindLyric
	KindArtist
	KindTitle
	KindIcon
	KindCode
)

var kindNames = [...]string{"cover", "lyric", "artist", "title", "icon", "code"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Element is one positioned item on the canvas.
type Element struct {
	Kind Kind
	// Text is set for lyric, artist and title elements. An empty lyric
	// element is a stanza break.
	Text string
	// Rect is the occupied box on the canvas. For text it is the ink box.
	Rect image.Rectangle
	// Origin is the text baseline origin passed to the drawer.
	Origin image.Point
}

// Plan is the immutable result of [Compute].
type Plan struct {
	width    int
	height   int
	style    Style
	elements []Element
}

// Width returns the canvas width.
func (p *Plan) Width() int { return p.width }

// Height returns the canvas height.
func (p *Plan) Height() int { return p.height }

// Style returns the style the plan was computed with.
func (p *Plan) Style() Style { return p.style }

// Elements returns a copy of the elements in drawing order.
func (p *Plan) Elements() []Element {
	return append([]Element(nil), p.elements...)
}

// Find returns a copy of every element of kind k, in drawing order.
func (p *Plan) Find(k Kind) []Element {
	var out []Element
	for _, e := range p.elements {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Measurer reports the ink box of text relative to its baseline origin.
type Measurer interface {
	Bounds(s string) image.Rectangle
}

// Input is everything layout needs, already measured or measurable.
type Input struct {
	// CoverSize is the decoded cover image size.
	CoverSize image.Point
	// IconSize is the decoded brand icon size.
	IconSize image.Point
	// Rows are wrapped lyric rows; "" marks a stanza break.
	Rows   []string
	Title  string
	Artist string

	LyricFont  Measurer
	TitleFont  Measurer
	ArtistFont Measurer

	Style Style
}

// LayoutError reports geometry that cannot produce a valid card.
type LayoutError struct {
	Reason string
}

func (e *LayoutError) Error() string {
	return "layout: " + e.Reason
}

func layoutErrorf(format string, args ...any) error {
	return &LayoutError{Reason: fmt.Sprintf(format, args...)}
}

// ///////////////////////////////////////////////
// Compute
// ///////////////////////////////////////////////

// Compute places every element. It fails with a *[LayoutError] instead of
// clamping when the inputs cannot produce a consistent card.
func Compute(in Input) (*Plan, error) {
	s := in.Style
	if err := validate(in); err != nil {
		return nil, err
	}

	coverHeight := in.CoverSize.Y * s.Width / in.CoverSize.X
	if coverHeight <= 0 {
		return nil, layoutErrorf("cover %dx%d scales to zero height", in.CoverSize.X, in.CoverSize.Y)
	}

	p := &Plan{width: s.Width, style: s}
	p.elements = append(p.elements, Element{Kind: KindCover, Rect: image.Rect(0, 0, s.Width, coverHeight)})

	// Lyric rows.
	top := coverHeight + s.Padding
	y := top
	afterBreak := false
	for _, row := range in.Rows {
		if row == "" {
			p.elements = append(p.elements, Element{Kind: KindLyric, Rect: image.Rectangle{Min: image.Pt(s.Padding, y), Max: image.Pt(s.Padding, y)}, Origin: image.Pt(s.Padding, y)})
			y += s.LineSpacing
			afterBreak = true
			continue
		}
		el := placeText(KindLyric, row, in.LyricFont, s.Padding, y)
		p.elements = append(p.elements, el)
		y += el.Rect.Dy() + s.LineSpacing
		// The first row of a stanza is followed by the extra spacing.
		if afterBreak {
			y += s.StanzaSpacing
			afterBreak = false
		}
	}
	lyricHeight := y - top
	lyricBottom := y

	p.height = coverHeight + s.Padding + lyricHeight + s.BannerSpacing + s.BannerSize + s.Padding + s.BottomBudget

	// Bottom block.
	artistTop := p.height - s.Padding - s.ArtistSize - s.BannerSize - s.BannerSpacing + s.ArtistLift
	titleHeight := in.TitleFont.Bounds(in.Title).Dy()
	titleTop := artistTop - titleHeight - s.TitleGap
	if titleTop < lyricBottom {
		return nil, layoutErrorf("title top %d overlaps lyric block ending at %d", titleTop, lyricBottom)
	}

	p.elements = append(p.elements,
		placeText(KindArtist, in.Artist, in.ArtistFont, s.Padding, artistTop),
		placeText(KindTitle, in.Title, in.TitleFont, s.Padding, titleTop),
	)

	iconTop := p.height - s.Padding - s.BannerSize - s.IconNudge
	p.elements = append(p.elements,
		Element{Kind: KindIcon, Rect: image.Rectangle{Min: image.Pt(s.Padding, iconTop), Max: image.Pt(s.Padding, iconTop).Add(in.IconSize)}},
		Element{Kind: KindCode, Rect: image.Rect(s.Width-s.CodeSize-s.Padding, p.height-s.CodeSize-s.Padding, s.Width-s.Padding, p.height-s.Padding)},
	)

	for _, e := range p.elements {
		if e.Rect.Min.Y < 0 || e.Rect.Max.Y > p.height {
			return nil, layoutErrorf("%s element %v falls outside canvas height %d", e.Kind, e.Rect, p.height)
		}
	}
	return p, nil
}

// placeText puts the ink box of text with its left edge at the drawing
// origin x and its top edge at y.
func placeText(kind Kind, text string, m Measurer, x, y int) Element {
	b := m.Bounds(text)
	origin := image.Pt(x, y-b.Min.Y)
	return Element{
		Kind:   kind,
		Text:   text,
		Rect:   b.Add(origin),
		Origin: origin,
	}
}

// validate rejects inputs that would produce a meaningless geometry.
func validate(in Input) error {
	s := in.Style
	switch {
	case in.CoverSize.X <= 0 || in.CoverSize.Y <= 0:
		return layoutErrorf("invalid cover size %dx%d", in.CoverSize.X, in.CoverSize.Y)
	case in.IconSize.X < 0 || in.IconSize.Y < 0:
		return layoutErrorf("invalid icon size %dx%d", in.IconSize.X, in.IconSize.Y)
	case s.Width <= 0:
		return layoutErrorf("invalid canvas width %d", s.Width)
	case s.TextWidth() <= 0:
		return layoutErrorf("padding %d leaves no text width on a %dpx canvas", s.Padding, s.Width)
	case s.Padding < 0 || s.LineSpacing < 0 || s.StanzaSpacing < 0 || s.TitleGap < 0 ||
		s.BannerSpacing < 0 || s.BannerSize < 0 || s.BottomBudget < 0:
		return layoutErrorf("negative spacing in style")
	case s.CodeSize <= 0:
		return layoutErrorf("invalid code size %d", s.CodeSize)
	case in.LyricFont == nil || in.TitleFont == nil || in.ArtistFont == nil:
		return layoutErrorf("missing font measurer")
	}
	return nil
}
