// style.go defines the fixed geometry and colours of a card.

package layout

import "image/color"

// Style holds every layout constant. All distances are pixels.
type Style struct {
	// Width is the canvas width; the cover is scaled to it.
	Width int
	// Padding is the outer margin on every side.
	Padding int
	// LineSpacing separates consecutive lyric rows.
	LineSpacing int
	// StanzaSpacing is added after the first row of each new stanza.
	StanzaSpacing int
	// TitleGap separates the bottom of the title from the artist line.
	TitleGap int
	// ArtistLift moves the artist line down from its computed top.
	ArtistLift int
	// BannerSpacing separates the lyric block from the banner row.
	BannerSpacing int
	// BannerSize is the height reserved for the brand icon row.
	BannerSize int
	// BottomBudget is extra height reserved for the title/artist block.
	BottomBudget int
	// IconNudge raises the brand icon above the banner row.
	IconNudge int
	// CodeSize is the side of the QR code square.
	CodeSize int

	// LyricSize, TitleSize and ArtistSize are font em sizes.
	LyricSize  int
	TitleSize  int
	ArtistSize int

	// Text colours every string; Background fills the canvas.
	Text       color.NRGBA
	Background color.NRGBA
}

// DefaultStyle returns the stock card geometry: a 640px wide card with a
// grey-on-white palette.
func DefaultStyle() Style {
	return Style{
		Width:         640,
		Padding:       50,
		LineSpacing:   30,
		StanzaSpacing: 20,
		TitleGap:      10,
		ArtistLift:    30,
		BannerSpacing: 60,
		BannerSize:    20,
		BottomBudget:  150,
		IconNudge:     2,
		CodeSize:      120,
		LyricSize:     50,
		TitleSize:     40,
		ArtistSize:    25,
		Text:          color.NRGBA{R: 0x76, G: 0x76, B: 0x76, A: 0xff},
		Background:    color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// TextWidth is the horizontal room for lyric rows.
func (s Style) TextWidth() int {
	return s.Width - 2*s.Padding
}
