package common

import "strings"

// HasAny reports whether s contains any of the substrings. Matching is
// case-sensitive; callers lowercase first.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
