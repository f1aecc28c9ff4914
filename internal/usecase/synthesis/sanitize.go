package synthesis

import (
	"regexp"
	"strings"
)

var openFence = regexp.MustCompile("(?i)```json\\s*")

const fence = "```"

// Sanitize applies the fixed repair sequence that turns "almost JSON" into
// strict JSON: strip fence markers, drop trailing commas before a closing
// brace or bracket, strip // line comments, trim. Commas and slashes inside
// double-quoted strings are left alone. Input that cannot be repaired fails at
// the parse step that follows.
func Sanitize(text string) string {
	text = openFence.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, fence, "")
	text = dropTrailingCommas(text)
	text = stripLineComments(text)
	return strings.TrimSpace(text)
}

// dropTrailingCommas removes a comma that is followed only by whitespace and
// then '}' or ']'. Only the comma is removed.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var sc stringScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.step(c) || c != ',' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j < len(s) && (s[j] == '}' || s[j] == ']') {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// stripLineComments removes everything from "//" to the end of the line. The
// line break itself is kept.
func stripLineComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var sc stringScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.step(c) {
			b.WriteByte(c)
			continue
		}
		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// stringScanner tracks whether the current byte lies inside a double-quoted
// JSON string.
type stringScanner struct {
	inString bool
	escaped  bool
}

// step consumes c and reports whether it belongs to a string literal,
// including its quotes.
func (sc *stringScanner) step(c byte) bool {
	if sc.inString {
		switch {
		case sc.escaped:
			sc.escaped = false
		case c == '\\':
			sc.escaped = true
		case c == '"':
			sc.inString = false
		}
		return true
	}
	if c == '"' {
		sc.inString = true
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
