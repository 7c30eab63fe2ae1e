// Package lyricard embeds assets shared by the lyricard binaries.
//
// The root package exists only to embed config.default.toml via
// [DefaultConfigTOML], which cmd/lyricard writes to the data directory on
// first run.
package lyricard

import _ "embed"

// DefaultConfigTOML holds config.default.toml. It must stay in sync with
// config.DefaultConfig; a config test enforces this.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
