package netutil

import "strings"

// CleanText collapses whitespace runs and NBSPs that LinkedIn and DuckDuckGo
// markup is full of.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Truncate caps s at max runes for storage hygiene. Not used on message
// text, which is stored verbatim.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
