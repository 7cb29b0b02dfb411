// internal/tenant/slug.go
//
// Slug derivation for tenant titles.
//
// Rules
// -----
// 1. Lower-case everything.
// 2. Drop every rune that is not [a-z0-9] or a space.
// 3. Collapse whitespace runs to a single "-".
// 4. Trim leading / trailing "-".
// 5. Empty result falls back to "site".
//
// No Unicode transliteration; titles are expected to be ASCII-dominant and
// non-ASCII runes simply vanish.

package tenant

import "strings"

// MakeSlug converts a display title into a lower-kebab identifier.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			pendingDash = true
		default:
			// stripped entirely; does not break a word
		}
	}

	slug := b.String()
	if slug == "" {
		return "site"
	}
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}
