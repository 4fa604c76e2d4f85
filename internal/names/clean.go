package names

import (
	"regexp"
	"strings"
	"unicode"
)

// noisePattern matches decorations bookmakers attach to names: [Q], (USA),
// (WC), #12, seed 3 and the qualifier/retired/walkover tags.
var noisePattern = regexp.MustCompile(`(?i)\[[A-Z]{1,3}\]|\(\s*[A-Z]{2,3}\s*\)|\(\s*WC\s*\)|\(\s*Q\s*\)|#\s*\d+|\bseed\s*\d+\b|\bqualifier\b|\bretired\b|\bwalkover\b`)

var punctuationReplacer = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u2013", "-",
	"\u2014", "-",
	"\u2019", "'",
	"`", "'",
)

const edgeSeparators = " ,.-/"

// Clean returns the display form of raw with feed noise removed, dashes and
// quotes unified, whitespace collapsed and stray separators trimmed.
// Clean(Clean(x)) == Clean(x) for every x: passes repeat until the output
// is stable. A pass never lengthens its input, so the loop terminates.
func Clean(raw string) string {
	current := raw
	for {
		next := cleanOnce(current)
		if next == current {
			return next
		}
		current = next
	}
}

func cleanOnce(s string) string {
	s = punctuationReplacer.Replace(s)
	s = noisePattern.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if !keepRune(r) || unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		b.WriteRune(r)
		prevSpace = false
	}
	return strings.Trim(b.String(), edgeSeparators)
}

// keepRune reports whether r survives cleaning: letters, combining marks that
// belong to a letter, digits, underscore and the separators - . , / '.
func keepRune(r rune) bool {
	switch {
	case unicode.Is(unicode.Variation_Selector, r):
		return false
	case unicode.IsLetter(r), unicode.Is(unicode.Mn, r), unicode.Is(unicode.Mc, r), unicode.Is(unicode.Nd, r):
		return true
	case unicode.IsSpace(r):
		return true
	}
	switch r {
	case '_', '-', '.', ',', '/', '\'':
		return true
	}
	return false
}
