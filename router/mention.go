package router

import (
	"regexp"
	"strings"
)

// mentionPattern matches an @word token (letters, digits, underscore) at the
// start of the string or immediately after whitespace. The second capture
// group holds the raw token. An @ embedded in a word (email addresses) never
// matches.
var mentionPattern = regexp.MustCompile(`(^|\s)@(\w+)`)

// FirstMention returns the raw token of the first mention in message and
// whether one was found.
func FirstMention(message string) (string, bool) {
	m := mentionPattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// StripMentions removes every @word token matching the mention pattern (not
// just the first, and regardless of alias-table membership) together with the
// whitespace that introduced it, then trims the result.
func StripMentions(message string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(message, ""))
}
