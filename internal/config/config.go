// Package config loads the lyricard configuration.
//
// Configuration lives in config.toml inside the data directory. Missing keys
// fall back to [DefaultConfig], so a file only needs the values it changes.
// Older schema versions are upgraded through the migrate registry before
// parsing, with a .bak copy of the original kept next to it.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"tools.zach/dev/lyricard/internal/atomicfile"
	"tools.zach/dev/lyricard/internal/catalog"
	"tools.zach/dev/lyricard/internal/layout"
	"tools.zach/dev/lyricard/internal/migrate"
	"tools.zach/dev/lyricard/internal/paths"
	"tools.zach/dev/lyricard/internal/qr"
	"tools.zach/dev/lyricard/internal/typeface"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config is the top-level configuration.
type Config struct {
	// Version is the schema version used for migrations.
	Version int `toml:"version"`
	// Style holds card geometry, font sizes and colours.
	Style StyleConfig `toml:"style"`
	// Fonts holds the font source for each script.
	Fonts FontsConfig `toml:"fonts"`
	// Catalog holds the song metadata API settings.
	Catalog CatalogConfig `toml:"catalog"`
	// Link holds the QR code target settings.
	Link LinkConfig `toml:"link"`
	// Output holds output location and brand icon settings.
	Output OutputConfig `toml:"output"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// StyleConfig mirrors [layout.Style] with TOML names. Distances are pixels.
type StyleConfig struct {
	Width         int `toml:"width"`
	Padding       int `toml:"padding"`
	LineSpacing   int `toml:"line_spacing"`
	StanzaSpacing int `toml:"stanza_spacing"`
	TitleGap      int `toml:"title_gap"`
	ArtistLift    int `toml:"artist_lift"`
	BannerSpacing int `toml:"banner_spacing"`
	BannerSize    int `toml:"banner_size"`
	BottomBudget  int `toml:"bottom_budget"`
	IconNudge     int `toml:"icon_nudge"`
	CodeSize      int `toml:"code_size"`

	LyricFontSize  int `toml:"lyric_font_size"`
	TitleFontSize  int `toml:"title_font_size"`
	ArtistFontSize int `toml:"artist_font_size"`

	// TextColor is a "#RRGGBB" colour for all text.
	TextColor string `toml:"text_color"`
	// Background is a "#RRGGBB" colour for the canvas.
	Background string `toml:"background"`
}

// FontsConfig holds font sources. A source is a path or doublestar glob
// relative to the data directory, or a "google:Family:Weight" spec.
type FontsConfig struct {
	// CJK is the bold family for text containing CJK ideographs.
	CJK string `toml:"cjk"`
	// Latin is the bold family for everything else.
	Latin string `toml:"latin"`
}

// CatalogConfig holds song metadata API settings.
type CatalogConfig struct {
	// BaseURL is the API host.
	BaseURL string `toml:"base_url"`
	// TimeoutSeconds bounds each HTTP attempt.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// Retries is the number of retries after a failed attempt.
	Retries int `toml:"retries"`
}

// LinkConfig holds QR code settings.
type LinkConfig struct {
	// Base is prepended to the link id given on the command line.
	Base string `toml:"base"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	// Dir is where cards are written, relative to the working directory.
	Dir string `toml:"dir"`
	// Icon is an optional brand icon image. Empty renders a text badge.
	Icon string `toml:"icon"`
	// BadgeLabel is the text of the default badge.
	BadgeLabel string `toml:"badge_label"`
	// BadgeColor and BadgeTextColor are "#RRGGBB" badge colours.
	BadgeColor     string `toml:"badge_color"`
	BadgeTextColor string `toml:"badge_text_color"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with the stock card style.
func DefaultConfig() *Config {
	s := layout.DefaultStyle()
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Style: StyleConfig{
			Width:          s.Width,
			Padding:        s.Padding,
			LineSpacing:    s.LineSpacing,
			StanzaSpacing:  s.StanzaSpacing,
			TitleGap:       s.TitleGap,
			ArtistLift:     s.ArtistLift,
			BannerSpacing:  s.BannerSpacing,
			BannerSize:     s.BannerSize,
			BottomBudget:   s.BottomBudget,
			IconNudge:      s.IconNudge,
			CodeSize:       s.CodeSize,
			LyricFontSize:  s.LyricSize,
			TitleFontSize:  s.TitleSize,
			ArtistFontSize: s.ArtistSize,
			TextColor:      FormatHexColor(s.Text),
			Background:     FormatHexColor(s.Background),
		},
		Fonts: FontsConfig{
			CJK:   "fonts/PingFang Bold.ttf",
			Latin: "fonts/System San Francisco Text Bold.ttf",
		},
		Catalog: CatalogConfig{
			BaseURL:        catalog.DefaultBaseURL,
			TimeoutSeconds: 10,
			Retries:        2,
		},
		Link: LinkConfig{
			Base: qr.DefaultLinkBase,
		},
		Output: OutputConfig{
			Dir:            paths.DefaultOutputDir,
			BadgeLabel:     "Apple Music",
			BadgeColor:     "#767676",
			BadgeTextColor: "#FFFFFF",
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the field is missing, zero, or unreadable.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil || v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads dataDir/config.toml. A missing file yields DefaultConfig.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	version := PeekVersion(data)
	migrated := migrate.Config.NeedsMigration(version)
	if migrated {
		if err := atomicfile.Write(path+".bak", data, 0o644); err != nil {
			slog.Warn("failed to write config backup", "error", err)
		}
		data, _, err = migrate.Config.Run(data, version)
		if err != nil {
			return nil, fmt.Errorf("migrate config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if migrated {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}
	return cfg, nil
}

// Save writes the config to path as TOML.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	s := c.Style
	positive := []struct {
		name  string
		value int
	}{
		{"style.width", s.Width},
		{"style.code_size", s.CodeSize},
		{"style.lyric_font_size", s.LyricFontSize},
		{"style.title_font_size", s.TitleFontSize},
		{"style.artist_font_size", s.ArtistFontSize},
		{"catalog.timeout_seconds", c.Catalog.TimeoutSeconds},
		{"log.max_size_mb", c.Log.MaxSizeMB},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", p.name, p.value)
		}
	}

	nonNegative := []struct {
		name  string
		value int
	}{
		{"style.padding", s.Padding},
		{"style.line_spacing", s.LineSpacing},
		{"style.stanza_spacing", s.StanzaSpacing},
		{"style.title_gap", s.TitleGap},
		{"style.banner_spacing", s.BannerSpacing},
		{"style.banner_size", s.BannerSize},
		{"style.bottom_budget", s.BottomBudget},
		{"catalog.retries", c.Catalog.Retries},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", p.name, p.value)
		}
	}

	if 2*s.Padding >= s.Width {
		return fmt.Errorf("style.padding %d leaves no room on a %dpx canvas", s.Padding, s.Width)
	}

	colors := []struct {
		name  string
		value string
	}{
		{"style.text_color", s.TextColor},
		{"style.background", s.Background},
		{"output.badge_color", c.Output.BadgeColor},
		{"output.badge_text_color", c.Output.BadgeTextColor},
	}
	for _, col := range colors {
		if _, err := ParseHexColor(col.value); err != nil {
			return fmt.Errorf("invalid %s: %w", col.name, err)
		}
	}

	if strings.TrimSpace(c.Fonts.CJK) == "" || strings.TrimSpace(c.Fonts.Latin) == "" {
		return fmt.Errorf("fonts.cjk and fonts.latin must both be set")
	}
	if c.Output.Icon == "" && c.Output.BadgeLabel == "" {
		return fmt.Errorf("output.badge_label must be set when output.icon is empty")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	return nil
}

// ///////////////////////////////////////////////
// Conversions
// ///////////////////////////////////////////////

// LayoutStyle converts the style section to a [layout.Style].
func (c *Config) LayoutStyle() (layout.Style, error) {
	text, err := ParseHexColor(c.Style.TextColor)
	if err != nil {
		return layout.Style{}, fmt.Errorf("style.text_color: %w", err)
	}
	bg, err := ParseHexColor(c.Style.Background)
	if err != nil {
		return layout.Style{}, fmt.Errorf("style.background: %w", err)
	}
	s := c.Style
	return layout.Style{
		Width:         s.Width,
		Padding:       s.Padding,
		LineSpacing:   s.LineSpacing,
		StanzaSpacing: s.StanzaSpacing,
		TitleGap:      s.TitleGap,
		ArtistLift:    s.ArtistLift,
		BannerSpacing: s.BannerSpacing,
		BannerSize:    s.BannerSize,
		BottomBudget:  s.BottomBudget,
		IconNudge:     s.IconNudge,
		CodeSize:      s.CodeSize,
		LyricSize:     s.LyricFontSize,
		TitleSize:     s.TitleFontSize,
		ArtistSize:    s.ArtistFontSize,
		Text:          text,
		Background:    bg,
	}, nil
}

// FontSizes returns the per-role font sizes.
func (c *Config) FontSizes() typeface.Sizes {
	return typeface.Sizes{
		Lyric:  float64(c.Style.LyricFontSize),
		Title:  float64(c.Style.TitleFontSize),
		Artist: float64(c.Style.ArtistFontSize),
	}
}

// CatalogOptions returns client options for the song catalog.
func (c *Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		BaseURL:  c.Catalog.BaseURL,
		Timeout:  time.Duration(c.Catalog.TimeoutSeconds) * time.Second,
		RetryMax: c.Catalog.Retries,
	}
}
