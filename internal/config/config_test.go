// Tests for the config package covering [Load] (defaults, overrides, missing
// and malformed files, schema migration), [Config.Validate], the style and
// client conversions, colour parsing and the embedded default file.

package config

import (
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"tools.zach/dev/lyricard"
	"tools.zach/dev/lyricard/internal/layout"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

// ///////////////////////////////////////////////
// Load
// ///////////////////////////////////////////////

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		noFile  bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "missing file returns defaults",
			noFile: true,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Errorf("cfg = %+v, want defaults", cfg)
				}
			},
		},
		{
			name:   "minimal config keeps defaults",
			config: "version = 2\n",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Style != DefaultConfig().Style {
					t.Errorf("Style = %+v, want defaults", cfg.Style)
				}
			},
		},
		{
			name: "partial override preserves other defaults",
			config: `
version = 2

[style]
width = 800
text_color = "#000000"

[fonts]
cjk = "google:Noto Sans SC:700"
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				def := DefaultConfig()
				if cfg.Style.Width != 800 || cfg.Style.TextColor != "#000000" {
					t.Errorf("Style = %+v", cfg.Style)
				}
				if cfg.Style.Padding != def.Style.Padding {
					t.Errorf("Padding = %d, want default %d", cfg.Style.Padding, def.Style.Padding)
				}
				if cfg.Fonts.CJK != "google:Noto Sans SC:700" || cfg.Fonts.Latin != def.Fonts.Latin {
					t.Errorf("Fonts = %+v", cfg.Fonts)
				}
			},
		},
		{
			name:    "malformed TOML returns error",
			config:  "this is not valid toml [[[",
			wantErr: true,
		},
		{
			name:    "invalid value returns error",
			config:  "version = 2\n[style]\nwidth = -1\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if !tt.noFile {
				writeConfig(t, dir, tt.config)
			}

			cfg, err := Load(dir)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_MigratesV1(t *testing.T) {
	dir := t.TempDir()
	v1 := "version = 1\n\n[style]\nextra_space = 35\nwidth = 720\n"
	path := writeConfig(t, dir, v1)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 2 {
		t.Errorf("Version = %d, want 2", cfg.Version)
	}
	if cfg.Style.StanzaSpacing != 35 || cfg.Style.Width != 720 {
		t.Errorf("Style = %+v, want stanza_spacing 35 and width 720", cfg.Style)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != v1 {
		t.Errorf("backup = %q, want original", backup)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migrated: %v", err)
	}
	if strings.Contains(string(saved), "extra_space") || PeekVersion(saved) != 2 {
		t.Errorf("migrated file not rewritten:\n%s", saved)
	}
}

func TestRenameStanzaSpacing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"old key moves", "[style]\nextra_space = 12\n", 12},
		{"new key wins", "[style]\nextra_space = 12\nstanza_spacing = 40\n", 40},
		{"no style section", "version = 1\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := renameStanzaSpacing([]byte(tt.in))
			if err != nil {
				t.Fatalf("renameStanzaSpacing: %v", err)
			}
			var doc struct {
				Version int `toml:"version"`
				Style   struct {
					ExtraSpace    *int64 `toml:"extra_space"`
					StanzaSpacing int64  `toml:"stanza_spacing"`
				} `toml:"style"`
			}
			if _, err := toml.Decode(string(out), &doc); err != nil {
				t.Fatalf("decode output: %v", err)
			}
			if doc.Version != 2 || doc.Style.ExtraSpace != nil || doc.Style.StanzaSpacing != tt.want {
				t.Errorf("output = %+v from\n%s", doc, out)
			}
		})
	}
}

func TestPeekVersion(t *testing.T) {
	tests := []struct {
		data string
		want int
	}{
		{"version = 3\n", 3},
		{"[style]\nwidth = 1\n", 1},
		{"not toml [[", 1},
	}
	for _, tt := range tests {
		if got := PeekVersion([]byte(tt.data)); got != tt.want {
			t.Errorf("PeekVersion(%q) = %d, want %d", tt.data, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Embedded default file
// ///////////////////////////////////////////////

func TestDefaultTOMLMatchesDefaults(t *testing.T) {
	var cfg Config
	if err := toml.Unmarshal(lyricard.DefaultConfigTOML, &cfg); err != nil {
		t.Fatalf("parse config.default.toml: %v", err)
	}
	if !reflect.DeepEqual(&cfg, DefaultConfig()) {
		t.Errorf("config.default.toml drifted from DefaultConfig:\n got %+v\nwant %+v", cfg, *DefaultConfig())
	}
}

// ///////////////////////////////////////////////
// Save
// ///////////////////////////////////////////////

func TestConfig_Save_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Style.LineSpacing = 44
	cfg.Output.Icon = "logo.png"

	if err := cfg.Save(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

// ///////////////////////////////////////////////
// Validate
// ///////////////////////////////////////////////

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero width", func(c *Config) { c.Style.Width = 0 }, "style.width"},
		{"zero font size", func(c *Config) { c.Style.TitleFontSize = 0 }, "style.title_font_size"},
		{"negative spacing", func(c *Config) { c.Style.LineSpacing = -5 }, "style.line_spacing"},
		{"padding too wide", func(c *Config) { c.Style.Padding = 320 }, "style.padding"},
		{"bad text colour", func(c *Config) { c.Style.TextColor = "grey" }, "style.text_color"},
		{"bad badge colour", func(c *Config) { c.Output.BadgeColor = "#12345" }, "output.badge_color"},
		{"missing font", func(c *Config) { c.Fonts.Latin = " " }, "fonts.cjk and fonts.latin"},
		{"no icon and no badge", func(c *Config) { c.Output.BadgeLabel = "" }, "output.badge_label"},
		{"icon without badge", func(c *Config) { c.Output.Icon = "logo.png"; c.Output.BadgeLabel = "" }, ""},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"upper-case log level", func(c *Config) { c.Log.Level = "DEBUG" }, ""},
		{"negative retries", func(c *Config) { c.Catalog.Retries = -1 }, "catalog.retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Conversions
// ///////////////////////////////////////////////

func TestConfig_LayoutStyle(t *testing.T) {
	got, err := DefaultConfig().LayoutStyle()
	if err != nil {
		t.Fatalf("LayoutStyle: %v", err)
	}
	if got != layout.DefaultStyle() {
		t.Errorf("LayoutStyle = %+v, want layout.DefaultStyle()", got)
	}

	cfg := DefaultConfig()
	cfg.Style.Background = "nope"
	if _, err := cfg.LayoutStyle(); err == nil {
		t.Error("expected error for bad background")
	}
}

func TestConfig_ClientOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.CatalogOptions()
	if opts.Timeout != 10*time.Second || opts.RetryMax != 2 || opts.BaseURL != cfg.Catalog.BaseURL {
		t.Errorf("CatalogOptions = %+v", opts)
	}
	sizes := cfg.FontSizes()
	if sizes.Lyric != 50 || sizes.Title != 40 || sizes.Artist != 25 {
		t.Errorf("FontSizes = %+v", sizes)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#767676", color.NRGBA{R: 0x76, G: 0x76, B: 0x76, A: 0xff}, false},
		{"ff8000", color.NRGBA{R: 0xff, G: 0x80, A: 0xff}, false},
		{" #FFFFFF ", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, false},
		{"#fff", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr {
			if back, _ := ParseHexColor(FormatHexColor(got)); back != got {
				t.Errorf("FormatHexColor(%v) does not parse back", got)
			}
		}
	}
}
