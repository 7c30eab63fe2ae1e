// Package qr renders the scan code printed in the card's corner.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultLinkBase is the album page prefix the code points to.
const DefaultLinkBase = "https://music.apple.com/cn/album/"

// Encode renders content as a size x size PNG with low error correction and
// no quiet zone.
func Encode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("encode qr: empty content")
	}
	code, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code.DisableBorder = true
	data, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return data, nil
}

// Link appends id to base with exactly one slash between them. The id is
// used verbatim so album ids may carry a query such as "?i=123".
func Link(base, id string) string {
	id = strings.TrimLeft(strings.TrimSpace(id), "/")
	if base == "" {
		return id
	}
	return strings.TrimRight(base, "/") + "/" + id
}
