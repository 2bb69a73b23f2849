package util

import "unicode/utf8"

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// Truncate shortens s to at most max runes, appending the ellipsis marker when
// content was dropped. Rune-safe so multi-byte text is never cut mid
// character. Non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + Ellipsis
}
