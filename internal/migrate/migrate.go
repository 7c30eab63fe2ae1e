// Package migrate upgrades versioned on-disk documents one schema version
// at a time.
package migrate

import (
	"fmt"
	"log/slog"
	"slices"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Migration upgrades a document from the previous version to Version.
type Migration struct {
	// Version is the schema version this migration produces.
	Version int
	// Description is a short label for log output.
	Description string
	// Upgrade rewrites the raw document.
	Upgrade func(data []byte) ([]byte, error)
}

// Registry holds the migrations of one document type. Migrations may be
// registered in any order; they always run by ascending version.
type Registry struct {
	// Target names the document type in logs, e.g. "config".
	Target string
	// CurrentVersion is the version written by this build.
	CurrentVersion int

	migrations []Migration
}

// Config is the registry for config.toml.
var Config = &Registry{Target: "config", CurrentVersion: 2}

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

// Register adds m. It panics on a duplicate version or a version beyond
// CurrentVersion, both of which are programming errors.
func (r *Registry) Register(m Migration) {
	if m.Version > r.CurrentVersion {
		panic(fmt.Sprintf("migrate: %s migration v%d exceeds current version %d", r.Target, m.Version, r.CurrentVersion))
	}
	for _, existing := range r.migrations {
		if existing.Version == m.Version {
			panic(fmt.Sprintf("migrate: duplicate %s migration v%d (%q)", r.Target, m.Version, m.Description))
		}
	}
	r.migrations = append(r.migrations, m)
	slices.SortFunc(r.migrations, func(a, b Migration) int { return a.Version - b.Version })
}

// Pending returns the migrations a document at fromVersion still needs.
func (r *Registry) Pending(fromVersion int) []Migration {
	var out []Migration
	for _, m := range r.migrations {
		if m.Version > fromVersion {
			out = append(out, m)
		}
	}
	return out
}

// NeedsMigration reports whether a document at fileVersion is behind.
func (r *Registry) NeedsMigration(fileVersion int) bool {
	return fileVersion < r.CurrentVersion || len(r.Pending(fileVersion)) > 0
}

// Run applies every pending migration in order and returns the upgraded
// document with the version it reached. On failure the version is the
// last one that succeeded.
func (r *Registry) Run(data []byte, fromVersion int) ([]byte, int, error) {
	version := fromVersion
	for _, m := range r.Pending(fromVersion) {
		slog.Info("applying migration", "target", r.Target, "version", m.Version, "description", m.Description)
		out, err := m.Upgrade(data)
		if err != nil {
			return nil, version, fmt.Errorf("migrate %s to v%d: %w", r.Target, m.Version, err)
		}
		data, version = out, m.Version
	}
	if version < r.CurrentVersion {
		version = r.CurrentVersion
	}
	return data, version, nil
}
