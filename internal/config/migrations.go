// migrations.go registers config schema upgrades.

package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"tools.zach/dev/lyricard/internal/migrate"
)

func init() {
	migrate.Config.Register(migrate.Migration{
		Version:     2,
		Description: "rename style.extra_space to style.stanza_spacing",
		Upgrade:     renameStanzaSpacing,
	})
}

// renameStanzaSpacing moves style.extra_space to style.stanza_spacing. An
// existing stanza_spacing wins over the old key.
func renameStanzaSpacing(data []byte) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse v1 config: %w", err)
	}
	if style, ok := doc["style"].(map[string]any); ok {
		if v, ok := style["extra_space"]; ok {
			if _, exists := style["stanza_spacing"]; !exists {
				style["stanza_spacing"] = v
			}
			delete(style, "extra_space")
		}
	}
	doc["version"] = 2

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode v2 config: %w", err)
	}
	return buf.Bytes(), nil
}
