package selftest

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"oddsmap/internal/names"
)

var surnameSplit = regexp.MustCompile(`[ \-]+`)

// BookmakerVariants returns the sorted spellings a bookmaker is likely to
// print for a person: "First Last", "Last, First", hyphenated given-name
// halves and initials, reductions of a multi-part surname, and the
// accent-free form of each.
func BookmakerVariants(first, last string) []string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" && last == "" {
		return nil
	}

	variants := []string{strings.TrimSpace(first + " " + last)}
	if first != "" && last != "" {
		variants = append(variants, last+", "+first)
	}

	if strings.Contains(first, "-") {
		var initials []string
		for _, part := range strings.Split(first, "-") {
			if part == "" {
				continue
			}
			variants = append(variants, last+", "+part)
			r, _ := utf8.DecodeRuneInString(part)
			initials = append(initials, string(r))
		}
		if len(initials) > 0 {
			variants = append(variants,
				strings.Join(initials, ".")+". "+last,
				strings.Join(initials, "")+" "+last,
			)
		}
	}

	var toks []string
	for _, tok := range surnameSplit.Split(last, -1) {
		if tok != "" {
			toks = append(toks, tok)
		}
	}
	if len(toks) > 1 && first != "" {
		given := strings.Fields(first)[0]
		variants = append(variants, given+" "+strings.Join(toks, " "))
		anchor := toks[len(toks)-1]
		if !names.IsParticle(anchor) {
			variants = append(variants, given+" "+anchor)
		}
		j := len(toks) - 1
		for j > 0 && names.IsParticle(toks[j-1]) {
			j--
		}
		variants = append(variants, given+" "+strings.Join(toks[j:], " "))
	}

	set := make(map[string]struct{}, len(variants)*2)
	for _, v := range variants {
		v = strings.Trim(strings.Join(strings.Fields(v), " "), " ,")
		if v == "" {
			continue
		}
		set[v] = struct{}{}
		set[names.StripAccents(v)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
