package download

import (
	"strings"
	"unicode"
)

// SanitizeFileName keeps letters, digits, spaces, dots, dashes and
// underscores, dropping everything else. The result, combined with the
// video ID, is the collision-avoidance key for artifacts in the shared
// temp directory.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
