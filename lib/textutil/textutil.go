package textutil

import "strings"

// StripControl removes ASCII control characters (0x00-0x1F and 0x7F)
// from a string. Characters are dropped entirely, not replaced.
func StripControl(s string) string {
	out := strings.Builder{}
	out.Grow(len(s))
	for _, c := range s {
		if c < 0x20 || c == 0x7f {
			continue
		}
		out.WriteRune(c)
	}
	return out.String()
}

// Truncate clamps a string to at most max runes, silently dropping
// trailing content.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Clean strips control characters then truncates, in that order, so a
// control character never counts against the length budget.
func Clean(s string, max int) string {
	return Truncate(StripControl(s), max)
}
