package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tools.zach/dev/lyricard/internal/atomicfile"
	"tools.zach/dev/lyricard/internal/card"
	"tools.zach/dev/lyricard/internal/catalog"
	"tools.zach/dev/lyricard/internal/compose"
	"tools.zach/dev/lyricard/internal/config"
	"tools.zach/dev/lyricard/internal/layout"
	"tools.zach/dev/lyricard/internal/logger"
	"tools.zach/dev/lyricard/internal/lyrics"
	"tools.zach/dev/lyricard/internal/paths"
	"tools.zach/dev/lyricard/internal/qr"
	"tools.zach/dev/lyricard/internal/typeface"
	"tools.zach/dev/lyricard/internal/watch"
)

// badgeScale is the badge font size relative to the banner height.
const badgeScale = 0.7

// app holds everything built once per process and shared by every render.
type app struct {
	cfg     *config.Config
	data    paths.DataDir
	style   layout.Style
	fonts   *typeface.Selector
	builder *card.Builder
	catalog *catalog.Client
}

// newApp wires the font selector, card builder and catalog client from cfg.
func newApp(cfg *config.Config, data paths.DataDir) (*app, error) {
	style, err := cfg.LayoutStyle()
	if err != nil {
		return nil, fmt.Errorf("build style: %w", err)
	}
	resolver := &typeface.Resolver{Root: data.Root, CacheDir: data.FontCache()}
	fonts := typeface.NewSelector(cfg.Fonts.CJK, cfg.Fonts.Latin, cfg.FontSizes(), resolver)
	return &app{
		cfg:     cfg,
		data:    data,
		style:   style,
		fonts:   fonts,
		builder: card.NewBuilder(fonts, style),
		catalog: catalog.New(cfg.CatalogOptions()),
	}, nil
}

// Close releases cached font faces.
func (a *app) Close() error {
	return a.fonts.Close()
}

// ///////////////////////////////////////////////
// Rendering
// ///////////////////////////////////////////////

// render builds one card from o and writes it atomically. Returns the
// output path.
func (a *app) render(ctx context.Context, o options) (string, error) {
	req, err := a.request(ctx, o)
	if err != nil {
		return "", err
	}
	data, err := a.builder.Build(req)
	if err != nil {
		return "", err
	}

	dir := o.out
	if dir == "" {
		dir = a.cfg.Output.Dir
	}
	out := paths.OutputFile(dir, req.Title)
	if err := atomicfile.Write(out, data, 0o644); err != nil {
		return "", fmt.Errorf("write card: %w", err)
	}
	slog.Info("card written", "path", out, "bytes", len(data))
	return out, nil
}

// request gathers the inputs for one card from the catalog or local files.
func (a *app) request(ctx context.Context, o options) (card.Request, error) {
	var req card.Request
	var text string

	if o.song != "" {
		song, err := a.catalog.Song(ctx, o.song)
		if err != nil {
			return req, fmt.Errorf("fetch song %s: %w", o.song, err)
		}
		coverRef := song.CoverURL
		if o.cover != "" {
			coverRef = o.cover
		}
		cover, err := a.catalog.Cover(ctx, coverRef)
		if err != nil {
			return req, fmt.Errorf("fetch cover: %w", err)
		}
		req.Title, req.Artist, req.Cover = song.Title, song.Artist, cover
		text = song.Lyrics
		slog.Debug("song fetched", "id", o.song, "title", song.Title)
	} else {
		cover, err := a.catalog.Cover(ctx, o.cover)
		if err != nil {
			return req, fmt.Errorf("read cover: %w", err)
		}
		raw, err := os.ReadFile(o.lyricsFile)
		if err != nil {
			return req, fmt.Errorf("read lyrics: %w", err)
		}
		req.Cover = cover
		text = lyrics.Normalize(lyrics.StripTimestamps(string(raw)))
	}

	if o.title != "" {
		req.Title = o.title
	}
	if o.artist != "" {
		req.Artist = o.artist
	}

	if o.lines != "" {
		kept, err := lyrics.Select(lyrics.Lines(text), o.lines)
		if err != nil {
			return req, fmt.Errorf("select lines: %w", err)
		}
		text = strings.Join(kept, "\n")
	}
	req.Lyrics = text

	icon, err := a.icon()
	if err != nil {
		return req, err
	}
	req.Icon = icon

	code, err := qr.Encode(qr.Link(a.cfg.Link.Base, o.link), a.style.CodeSize)
	if err != nil {
		return req, fmt.Errorf("encode link: %w", err)
	}
	req.Code = code
	return req, nil
}

// icon returns the configured brand icon, or a rendered text badge when no
// icon file is set. Relative icon paths are anchored at the data directory.
func (a *app) icon() ([]byte, error) {
	out := a.cfg.Output
	if out.Icon != "" {
		path := out.Icon
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.data.Root, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read icon: %w", err)
		}
		return data, nil
	}

	bg, err := config.ParseHexColor(out.BadgeColor)
	if err != nil {
		return nil, fmt.Errorf("output.badge_color: %w", err)
	}
	fg, err := config.ParseHexColor(out.BadgeTextColor)
	if err != nil {
		return nil, fmt.Errorf("output.badge_text_color: %w", err)
	}
	face, err := a.fonts.Face(typeface.Classify(out.BadgeLabel), float64(a.style.BannerSize)*badgeScale)
	if err != nil {
		return nil, fmt.Errorf("badge font: %w", err)
	}
	badge, err := compose.Badge(out.BadgeLabel, face.Font(), a.style.BannerSize, bg, fg)
	if err != nil {
		return nil, fmt.Errorf("render badge: %w", err)
	}
	return badge, nil
}

// logFailure logs err at FAIL level, naming the pipeline stage when known.
func logFailure(err error) {
	var se *card.StageError
	if errors.As(err, &se) {
		logger.Fail(slog.Default(), "render failed", "stage", string(se.Stage), "error", se.Err)
		return
	}
	logger.Fail(slog.Default(), "render failed", "error", err)
}

// ///////////////////////////////////////////////
// Watch Loop
// ///////////////////////////////////////////////

// watch re-renders the card each time the lyrics file changes, until a
// value arrives on stop. Render failures are logged and the loop continues.
func (a *app) watch(ctx context.Context, o options, stop <-chan os.Signal) error {
	w, err := watch.New(o.lyricsFile)
	if err != nil {
		return err
	}
	defer w.Close()

	if w.Polling() {
		slog.Info("using polling mode for file watching")
	}
	slog.Info("watching lyrics", "path", o.lyricsFile)

	for {
		select {
		case <-stop:
			slog.Info("received shutdown signal")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-w.Events():
			out, err := a.render(ctx, o)
			if err != nil {
				logFailure(err)
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Println(out)
		}
	}
}
