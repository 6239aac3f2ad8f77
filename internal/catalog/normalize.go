package catalog

import "strings"

// Normalize canonicalizes a free-text label for comparison: trims, lowercases,
// collapses internal whitespace runs to a single space and strips everything
// outside [a-z0-9 ]. Empty or absent input yields "". The result is only ever
// used as a comparison key, never stored or displayed.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			pendingSpace = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		default:
			// strip punctuation and anything non-ascii
		}
	}
	return b.String()
}
