package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks after canonical decomposition,
// preserving case.
func StripAccents(s string) string {
	if s == "" {
		return ""
	}
	// Transformers carry state and are not safe for concurrent use.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases s and strips diacritics.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(StripAccents(s)))
}

// Key returns the alias cache key for raw: Fold(Clean(raw)). An empty key
// means raw carries no resolvable name.
func Key(raw string) string {
	return Fold(Clean(raw))
}

// Keys returns the distinct non-empty lookup forms of raw: the lowercased
// cleaned form and the folded key. Older caches were seeded with
// accent-preserving keys, so both are probed and both are healed.
func Keys(raw string) []string {
	cleaned := Clean(raw)
	lower := strings.ToLower(cleaned)
	folded := Fold(cleaned)
	switch {
	case lower == "" && folded == "":
		return nil
	case lower == folded || lower == "":
		return []string{folded}
	case folded == "":
		return []string{lower}
	default:
		return []string{lower, folded}
	}
}
