// Package card runs the lyric card pipeline: normalize the lyrics, pick
// fonts, wrap each logical line, compute the layout, composite and encode.
//
// The pipeline is synchronous and keeps no state between builds beyond the
// font cache held by the [typeface.Selector]. Every failure is returned as
// a *[StageError] naming the stage that failed.
package card

import (
	"fmt"
	"log/slog"
	"time"

	"tools.zach/dev/lyricard/internal/compose"
	"tools.zach/dev/lyricard/internal/layout"
	"tools.zach/dev/lyricard/internal/logger"
	"tools.zach/dev/lyricard/internal/lyrics"
	"tools.zach/dev/lyricard/internal/typeface"
	"tools.zach/dev/lyricard/internal/wrap"
)

// Stage names a pipeline step in errors and logs.
type Stage string

const (
	StageFonts   Stage = "fonts"
	StageAssets  Stage = "assets"
	StageLayout  Stage = "layout"
	StageCompose Stage = "compose"
	StageEncode  Stage = "encode"
)

// StageError wraps the failure of one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Request is one card to render. Lyrics may be raw; they are normalized
// before use. Cover, Icon and Code are encoded images.
type Request struct {
	Title  string
	Artist string
	Lyrics string
	Cover  []byte
	Icon   []byte
	Code   []byte
}

// Builder renders requests with a fixed style and font selector.
type Builder struct {
	fonts *typeface.Selector
	style layout.Style
}

// NewBuilder creates a Builder. The selector stays owned by the caller.
func NewBuilder(fonts *typeface.Selector, style layout.Style) *Builder {
	return &Builder{fonts: fonts, style: style}
}

// Build renders req and returns the PNG bytes.
func (b *Builder) Build(req Request) ([]byte, error) {
	start := time.Now()
	text := lyrics.Normalize(req.Lyrics)

	lyricFace, err := b.fonts.Select(text, typeface.RoleLyric)
	if err != nil {
		return nil, &StageError{Stage: StageFonts, Err: err}
	}
	titleFace, err := b.fonts.Select(req.Title, typeface.RoleTitle)
	if err != nil {
		return nil, &StageError{Stage: StageFonts, Err: err}
	}
	artistFace, err := b.fonts.Select(req.Artist, typeface.RoleArtist)
	if err != nil {
		return nil, &StageError{Stage: StageFonts, Err: err}
	}

	rows := wrapRows(text, lyricFace, b.style.TextWidth())
	slog.Debug("lyrics wrapped", "stage", "wrap", "lines", len(lyrics.Lines(text)), "rows", len(rows))

	imgs, err := compose.Decode(compose.Assets{Cover: req.Cover, Icon: req.Icon, Code: req.Code})
	if err != nil {
		return nil, &StageError{Stage: StageAssets, Err: err}
	}

	plan, err := layout.Compute(layout.Input{
		CoverSize:  imgs.Cover.Bounds().Size(),
		IconSize:   imgs.Icon.Bounds().Size(),
		Rows:       rows,
		Title:      req.Title,
		Artist:     req.Artist,
		LyricFont:  lyricFace,
		TitleFont:  titleFace,
		ArtistFont: artistFace,
		Style:      b.style,
	})
	if err != nil {
		return nil, &StageError{Stage: StageLayout, Err: err}
	}
	slog.Debug("layout computed", "stage", "layout", "width", plan.Width(), "height", plan.Height())

	canvas, err := compose.Render(plan, imgs, compose.Faces{
		Lyric:  lyricFace.Font(),
		Title:  titleFace.Font(),
		Artist: artistFace.Font(),
	})
	if err != nil {
		return nil, &StageError{Stage: StageCompose, Err: err}
	}

	data, err := compose.Encode(canvas)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}
	logger.Trace(slog.Default(), "card built", "bytes", len(data), "elapsed", time.Since(start))
	return data, nil
}

// wrapRows wraps every logical line of normalized text. Stanza breaks pass
// through as empty rows.
func wrapRows(text string, face wrap.Measurer, maxWidth int) []string {
	var rows []string
	for _, line := range lyrics.Lines(text) {
		if line == "" {
			rows = append(rows, "")
			continue
		}
		rows = append(rows, wrap.Wrap(line, face, maxWidth)...)
	}
	return rows
}
