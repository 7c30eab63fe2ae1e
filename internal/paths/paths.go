// Package paths centralizes file and directory names used across lyricard.
// All data directory file names are defined here as the single source of truth.
package paths

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory layout.
const (
	DataDirRel   = ".lyricard" // relative to $HOME
	ConfigFile   = "config.toml"
	LogFile      = "lyricard.log"
	FontsDir     = "fonts"
	FontCacheDir = ".cache" // inside FontsDir
)

// Output defaults.
const (
	DefaultOutputDir = "output"
	CardExt          = ".png"
	// fallbackName is used when a title sanitizes to nothing.
	fallbackName = "lyricard"
)

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// Fonts returns the directory holding user font files.
func (d DataDir) Fonts() string { return filepath.Join(d.Root, FontsDir) }

// FontCache returns the directory for fonts fetched from Google Fonts.
func (d DataDir) FontCache() string { return filepath.Join(d.Root, FontsDir, FontCacheDir) }

// ///////////////////////////////////////////////
// Output
// ///////////////////////////////////////////////

// OutputFile returns dir/<title>.png with the title made safe as a file
// name on every platform.
func OutputFile(dir, title string) string {
	return filepath.Join(dir, SanitizeName(title)+CardExt)
}

// SanitizeName replaces path separators, characters reserved on Windows
// and control characters with "_", then trims spaces and dots from both
// ends. An empty result becomes "lyricard".
func SanitizeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
	mapped = strings.Trim(mapped, " .")
	if mapped == "" {
		return fallbackName
	}
	return mapped
}
