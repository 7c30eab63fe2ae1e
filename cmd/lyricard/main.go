// Package main implements the lyricard command, which renders a song's lyrics,
// cover art and a QR link into one shareable PNG card.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	rootpkg "tools.zach/dev/lyricard"
	"tools.zach/dev/lyricard/internal/config"
	"tools.zach/dev/lyricard/internal/logger"
	"tools.zach/dev/lyricard/internal/paths"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags (-X main.version=...). When unset,
// resolveVersion falls back to the VCS info embedded by the Go toolchain.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags it is returned as-is; otherwise the embedded VCS revision and dirty
// state produce a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Options
// ///////////////////////////////////////////////

// options holds the parsed command line.
type options struct {
	dataDir string
	// song is a catalog id. When set, title, artist, cover and lyrics come
	// from the catalog unless overridden.
	song string
	// link is the id appended to the configured link base for the QR code.
	link string
	// lines is a range filter such as "1-4,7".
	lines      string
	cover      string
	lyricsFile string
	title      string
	artist     string
	// out overrides the configured output directory.
	out     string
	watch   bool
	verbose bool
}

// parseFlags parses args (without the program name) into options and
// validates the combination of modes.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("lyricard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dataDir, "data-dir", defaultDataDir(), "Data directory for config, fonts, and logs")
	fs.StringVar(&o.song, "song", "", "Catalog song id to fetch title, artist, cover, and lyrics")
	fs.StringVar(&o.link, "link", "", "Link id encoded in the QR code (required)")
	fs.StringVar(&o.lines, "lines", "", "Lyric lines to keep, 1-based, e.g. \"1-4,7\"")
	fs.StringVar(&o.cover, "cover", "", "Cover image path or URL")
	fs.StringVar(&o.lyricsFile, "lyrics-file", "", "Lyrics text file (LRC timestamps are removed)")
	fs.StringVar(&o.title, "title", "", "Song title")
	fs.StringVar(&o.artist, "artist", "", "Artist name")
	fs.StringVar(&o.out, "out", "", "Output directory (default from config)")
	fs.BoolVar(&o.watch, "watch", false, "Re-render whenever the lyrics file changes")
	fs.BoolVar(&o.verbose, "verbose", false, "Also write log records to stderr")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, o.validate()
}

// validate checks that exactly one input mode is fully specified.
func (o options) validate() error {
	if o.link == "" {
		return errors.New("-link is required")
	}
	if o.song != "" {
		if o.lyricsFile != "" {
			return errors.New("-song cannot be combined with -lyrics-file")
		}
		if o.watch {
			return errors.New("-watch needs -lyrics-file")
		}
		return nil
	}
	switch {
	case o.cover == "":
		return errors.New("-cover is required without -song")
	case o.lyricsFile == "":
		return errors.New("-lyrics-file is required without -song")
	case o.title == "":
		return errors.New("-title is required without -song")
	}
	return nil
}

// ///////////////////////////////////////////////
// Default Data Directory
// ///////////////////////////////////////////////

// defaultDataDir returns ~/.lyricard, or ./.lyricard if the home directory
// cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(2)
	}

	data := paths.DataDir{Root: opts.dataDir}
	if err := os.MkdirAll(data.Root, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: create data dir: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(data.Config()); os.IsNotExist(err) {
		if writeErr := os.WriteFile(data.Config(), rootpkg.DefaultConfigTOML, 0o644); writeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write default config: %v\n", writeErr)
		}
	}

	cfg, err := config.Load(data.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: load config: %v\n", err)
		os.Exit(1)
	}

	logOpts := logger.Options{
		Path:      data.Log(),
		Level:     logger.ParseLevel(cfg.Log.Level),
		MaxSizeMB: cfg.Log.MaxSizeMB,
	}
	if opts.verbose {
		logOpts.Console = os.Stderr
	}
	log, logCloser := logger.NewLogger(logOpts)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("lyricard starting", "version", resolveVersion(), "data_dir", data.Root)

	a, err := newApp(cfg, data)
	if err != nil {
		slog.Error("setup failed", "error", err)
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx := context.Background()
	out, err := a.render(ctx, opts)
	if err != nil {
		logFailure(err)
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)

	if opts.watch {
		if err := a.watch(ctx, opts, signalChannel()); err != nil {
			slog.Error("watch failed", "error", err)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}
}
