package names

import "strings"

// ShouldExpand reports whether a cleaned name has enough structure to be
// worth expanding into candidates: a comma, or three or more tokens.
func ShouldExpand(cleaned string) bool {
	return strings.Contains(cleaned, ",") || len(strings.Fields(cleaned)) >= 3
}

// Candidates returns alternate spellings of a cleaned name in probe order.
// Comma names yield the inverted form first, then every first-core by
// last-core pairing. Plain names of three or more tokens pair the first-name
// cores with cores of the particle-attached surname and then with cores of
// the whole tail. The result is deduplicated, never contains the input
// itself, and never contains a bare particle.
func Candidates(cleaned string) []string {
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || !ShouldExpand(cleaned) {
		return nil
	}
	out := newOrderedSet()
	if lastPart, firstPart, ok := strings.Cut(cleaned, ","); ok {
		out.add(Flip(cleaned))
		pairCores(out, FirstCores(strings.TrimSpace(firstPart)), LastCores(strings.TrimSpace(lastPart)))
	} else {
		toks := strings.Fields(cleaned)
		given, surname := attachParticles(toks)
		lastCores := LastCores(strings.Join(surname, " "))
		lastCores = append(lastCores, LastCores(strings.Join(toks[1:], " "))...)
		pairCores(out, FirstCores(strings.Join(given, " ")), lastCores)
	}

	result := make([]string, 0, len(out.items))
	for _, cand := range out.items {
		if cand == cleaned || IsParticle(cand) {
			continue
		}
		result = append(result, cand)
	}
	return result
}

func pairCores(out *orderedSet, firsts, lasts []string) {
	for _, f := range firsts {
		for _, l := range lasts {
			out.add(strings.TrimSpace(f + " " + l))
		}
	}
}
