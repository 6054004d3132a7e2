package diff

import "strings"

// binarySniffLen bounds how far binary detection looks for a NUL byte.
const binarySniffLen = 8000

// isBinary reports whether data looks like binary content: a NUL byte
// within the sniff window.
func isBinary(data []byte) bool {
	window := data
	if len(window) > binarySniffLen {
		window = window[:binarySniffLen]
	}
	return strings.IndexByte(string(window), 0) >= 0
}

// splitLines splits s into lines. A trailing newline does not produce
// an extra empty element (matching standard text file conventions).
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}

// canonicalLine maps a line to its comparison key under the whitespace
// flags. The strongest requested flag wins; with no whitespace flag set
// the line is its own key.
func canonicalLine(s string, flags Flag) string {
	switch {
	case flags.Has(IgnoreWhitespace):
		var b strings.Builder
		b.Grow(len(s))
		for i := 0; i < len(s); i++ {
			if !isSpaceByte(s[i]) {
				b.WriteByte(s[i])
			}
		}
		return b.String()
	case flags.Has(IgnoreWhitespaceChange):
		// Each whitespace run maps to a single space; a run at end of
		// line disappears.
		var b strings.Builder
		b.Grow(len(s))
		for i := 0; i < len(s); {
			if !isSpaceByte(s[i]) {
				b.WriteByte(s[i])
				i++
				continue
			}
			j := i
			for j < len(s) && isSpaceByte(s[j]) {
				j++
			}
			if j < len(s) {
				b.WriteByte(' ')
			}
			i = j
		}
		return b.String()
	case flags.Has(IgnoreWhitespaceEOL):
		return strings.TrimRight(s, " \t\r\f\v")
	}
	return s
}

const whitespaceFlags = IgnoreWhitespace | IgnoreWhitespaceChange | IgnoreWhitespaceEOL

// canonicalLines maps every line to its comparison key, or returns the
// input untouched when no whitespace flag is set.
func canonicalLines(lines []string, flags Flag) []string {
	if flags&whitespaceFlags == 0 {
		return lines
	}
	keys := make([]string, len(lines))
	for i, l := range lines {
		keys[i] = canonicalLine(l, flags)
	}
	return keys
}
