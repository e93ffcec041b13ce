package common

import (
	"strings"
)

// SanitizeNamespace maps a subject name to the directory name of its vector
// store. The mapping keeps ASCII letters, digits, '-' and '_' unchanged and
// replaces every other byte with '_', then collapses runs of '_' and trims
// them from both ends. An input that sanitizes to nothing yields "subject".
//
// Distinct subjects can collapse to the same namespace ("ML!" and "ML?" both
// become "ML"), so the subject catalog rejects collisions at load time
// rather than trusting this function to be injective.
func SanitizeNamespace(subject string) string {
	var b strings.Builder
	b.Grow(len(subject))

	lastUnderscore := false
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	sanitized := strings.Trim(b.String(), "_")
	if sanitized == "" {
		return "subject"
	}
	return sanitized
}
