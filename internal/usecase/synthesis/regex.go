package synthesis

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// regexLiteral matches `": /pattern/flags` right after a key. A pattern body
// containing '/' is not recognized and passes through unchanged.
var regexLiteral = regexp.MustCompile(`(":\s*)/([^/]+)/([a-z]*)`)

// NormalizeRegexLiterals rewrites `"key": /pattern/flags` into
// `"key": {"$regex": "pattern", "$options": "flags"}`. Only the i, m, s and x
// flags are kept; any other flag character is dropped. A match whose leading
// quote does not close a key string (an escaped quote inside a value) is left
// as it is.
func NormalizeRegexLiterals(text string) string {
	var (
		b       strings.Builder
		sc      stringScanner
		scanned int // bytes of text fed to sc
		last    int // bytes of text already written to b
	)
	for pos := 0; pos < len(text); {
		m := regexLiteral.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		for i := range m {
			m[i] += pos
		}
		for ; scanned < m[0]; scanned++ {
			sc.step(text[scanned])
		}

		closesKey := sc.inString && !sc.escaped
		if !closesKey || slashInPattern(text, text[m[4]:m[5]], m[1]) {
			pos = m[0] + 1
			continue
		}

		if last == 0 {
			b.Grow(len(text) + 32)
		}
		b.WriteString(text[last:m[2]])
		b.WriteString(text[m[2]:m[3]])
		b.WriteString(`{"$regex": `)
		b.WriteString(value.QuoteString(text[m[4]:m[5]]))
		b.WriteString(`, "$options": `)
		b.WriteString(value.QuoteString(regexOptions(text[m[6]:m[7]])))
		b.WriteByte('}')

		// The literal itself is never a string, whatever quotes its body holds.
		last, scanned, pos = m[1], m[1], m[1]
		sc = stringScanner{}
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// slashInPattern reports a literal whose body holds a '/', escaped or not: the
// match then stops at an inner slash.
func slashInPattern(text, pattern string, end int) bool {
	if end < len(text) && text[end] == '/' {
		return true
	}
	n := len(pattern) - len(strings.TrimRight(pattern, `\`))
	return n%2 == 1
}

func regexOptions(flags string) string {
	var b strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'x':
			b.WriteRune(f)
		}
	}
	return b.String()
}
