// Package wrap breaks a logical lyric line into rows that fit a pixel width.
//
// Tokens come from splitting on single spaces and are never split further,
// so a CJK line without spaces is one token. Wrapping is a greedy fold over
// the tokens with two extra rules:
//
//   - a token wider than the limit on its own stays alone on its row;
//   - when a row would end in a one-character token, that character is
//     carried down to start the next row so it is not left dangling, even
//     if the carried pair is then wider than the limit.
package wrap

import (
	"strings"
	"unicode/utf8"
)

// Measurer reports the rendered width of text in pixels.
type Measurer interface {
	Width(s string) int
}

// state is the fold accumulator: the row being built and the rows done.
type state struct {
	current string
	lines   []string
}

// Wrap splits text into rows no wider than maxWidth, as measured by m. Only
// a single overlong token, or a carried character plus the token after it,
// may exceed the limit. Concatenating the rows with spaces restores every
// token in order.
func Wrap(text string, m Measurer, maxWidth int) []string {
	var st state
	for _, tok := range strings.Split(text, " ") {
		st = st.feed(tok, m, maxWidth)
	}
	return st.flush(st.current).lines
}

// feed adds one token to the fold.
func (st state) feed(tok string, m Measurer, maxWidth int) state {
	candidate := tok
	if st.current != "" {
		candidate = st.current + " " + tok
	}
	if m.Width(candidate) <= maxWidth || st.current == "" {
		st.current = candidate
		return st
	}

	head, last := splitLast(st.current)
	if utf8.RuneCountInString(last) == 1 {
		st = st.flush(head)
		st.current = last + " " + tok
		return st
	}

	st = st.flush(st.current)
	st.current = tok
	return st
}

// flush pushes row if it has any content.
func (st state) flush(row string) state {
	if row = strings.TrimSpace(row); row != "" {
		st.lines = append(st.lines, row)
	}
	return st
}

// splitLast separates the last space-delimited token of s.
func splitLast(s string) (head, last string) {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}
