// Package typeface classifies text by script and hands out font faces sized
// for each text role on the card.
//
// Two families are configured: a bold CJK family and a bold Latin family.
// Text containing any CJK Unified Ideograph is drawn with the CJK family,
// everything else with the Latin family. There is no per-glyph fallback.
package typeface

// Script is the writing system a piece of text is classified as.
type Script int

const (
	Latin Script = iota
	CJK
)

// String returns the lowercase script name used in config and logs.
func (s Script) String() string {
	switch s {
	case CJK:
		return "cjk"
	default:
		return "latin"
	}
}

// Classify returns CJK when text contains a rune in U+4E00..U+9FFF and
// Latin otherwise. The first ideograph found decides.
func Classify(text string) Script {
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FFF {
			return CJK
		}
	}
	return Latin
}
