// Package lyrics cleans raw lyric text into stanza-separated logical lines
// and selects line ranges before the text reaches layout.
//
// A normalized block has no leading or trailing whitespace, every line is
// trimmed, and stanzas are separated by exactly one blank line.
package lyrics

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Instrumental is the placeholder used when a song has no lyric text.
const Instrumental = "纯音乐，无歌词"

// ErrBadRange is wrapped by every line-range parsing failure.
var ErrBadRange = errors.New("bad line range")

// timestampRe matches bracketed LRC markup such as "[01:23.45]" or "[by:x]".
// Greedy and line-bounded: "[a] text [b]" loses everything between the brackets.
var timestampRe = regexp.MustCompile(`\[.*\]`)

// ///////////////////////////////////////////////
// Normalization
// ///////////////////////////////////////////////

// StripTimestamps removes bracketed markup from every line of raw.
func StripTimestamps(raw string) string {
	return timestampRe.ReplaceAllString(raw, "")
}

// Normalize trims the text, trims each line, and collapses runs of blank
// lines into a single blank line. Normalize is idempotent. An empty or
// all-whitespace input yields "".
func Normalize(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	out := make([]string, 0, len(lines))
	inBlankRun := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if inBlankRun {
				continue
			}
			inBlankRun = true
		} else {
			inBlankRun = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Lines splits normalized text into its logical lines. Blank entries mark
// stanza breaks. Empty text has no lines.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// ///////////////////////////////////////////////
// Range Selection
// ///////////////////////////////////////////////

// Select returns the lines named by ranges, in the order given. ranges is a
// comma-separated list of 1-based line numbers or inclusive ranges such as
// "1-4,7". An empty string selects every line. Malformed or out-of-range
// parts fail with an error wrapping [ErrBadRange]; nothing is clamped.
func Select(lines []string, ranges string) ([]string, error) {
	ranges = strings.TrimSpace(ranges)
	if ranges == "" {
		return append([]string(nil), lines...), nil
	}

	var out []string
	for part := range strings.SplitSeq(ranges, ",") {
		part = strings.TrimSpace(part)
		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if hi > len(lines) {
			return nil, fmt.Errorf("%w: %q exceeds %d lines", ErrBadRange, part, len(lines))
		}
		out = append(out, lines[lo-1:hi]...)
	}
	return out, nil
}

// parseRange parses "n" or "a-b" into an inclusive 1-based range.
func parseRange(part string) (lo, hi int, err error) {
	first, last, isRange := strings.Cut(part, "-")
	lo, err = strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadRange, part)
	}
	hi = lo
	if isRange {
		hi, err = strconv.Atoi(strings.TrimSpace(last))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadRange, part)
		}
	}
	if lo < 1 || hi < lo {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadRange, part)
	}
	return lo, hi, nil
}
