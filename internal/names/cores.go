package names

import (
	"strings"
	"unicode/utf8"
)

// particles are surname joining words that never stand alone as a surname.
var particles = map[string]struct{}{
	"al": {}, "el": {}, "bin": {}, "ibn": {}, "ben": {},
	"de": {}, "del": {}, "della": {}, "delle": {}, "dei": {}, "degli": {}, "di": {},
	"do": {}, "dos": {}, "da": {}, "das": {}, "du": {}, "des": {},
	"la": {}, "le": {}, "lo": {},
	"van": {}, "von": {}, "der": {}, "den": {}, "ter": {}, "ten": {},
	"vander": {}, "vanden": {}, "vande": {}, "vd": {}, "v.d": {},
	"san": {}, "santa": {}, "santo": {}, "los": {}, "las": {},
}

// IsParticle reports whether token is a surname particle.
func IsParticle(token string) bool {
	_, ok := particles[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

func surnameTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-'
	})
}

// FirstCores returns the given-name fragments worth pairing with a surname:
// the first token, and for a hyphenated token its halves plus dotted (J.-L.,
// J.L.) and compact (JL) initials.
func FirstCores(given string) []string {
	fields := strings.Fields(given)
	if len(fields) == 0 {
		return nil
	}
	first := fields[0]
	out := newOrderedSet()
	out.add(first)
	if !strings.Contains(first, "-") {
		return out.items
	}
	var parts, initials []string
	for _, part := range strings.Split(first, "-") {
		if part == "" {
			continue
		}
		parts = append(parts, part)
		r, _ := utf8.DecodeRuneInString(part)
		initials = append(initials, string(r))
	}
	if len(parts) == 0 {
		return out.items
	}
	for _, part := range parts {
		out.add(part)
	}
	out.add(strings.Join(initials, ".-") + ".")
	out.add(strings.Join(initials, ".") + ".")
	out.add(strings.Join(initials, ""))
	return out.items
}

// LastCores segments a surname around its rightmost non-particle token: the
// full surname, that token alone, the token with its attached particles, and
// the token with its non-particle predecessor. A bare particle is never
// returned.
func LastCores(surname string) []string {
	toks := surnameTokens(surname)
	if len(toks) == 0 {
		return nil
	}
	out := newOrderedSet()
	out.add(strings.Join(toks, " "))
	out.add(strings.Join(strings.Fields(surname), " "))

	anchor := -1
	for i := len(toks) - 1; i >= 0; i-- {
		if !IsParticle(toks[i]) {
			anchor = i
			break
		}
	}
	if anchor >= 0 {
		out.add(toks[anchor])
		start := anchor
		for start > 0 && IsParticle(toks[start-1]) {
			start--
		}
		out.add(strings.Join(toks[start:anchor+1], " "))
		if anchor > 0 && !IsParticle(toks[anchor-1]) {
			out.add(toks[anchor-1] + " " + toks[anchor])
		}
	}
	return withoutParticles(out.items)
}

// attachParticles splits plain tokens into a given part and a surname made of
// the last token plus the particles immediately before it. At least one token
// stays in the given part.
func attachParticles(toks []string) (given, surname []string) {
	if len(toks) < 2 {
		return toks, nil
	}
	j := len(toks) - 1
	for j > 1 && IsParticle(toks[j-1]) {
		j--
	}
	return toks[:j], toks[j:]
}

// Flip turns "Surname, Given Middle" into "Given Middle Surname", dropping
// trailing dots from the given tokens. Names without a usable comma split are
// returned cleaned but otherwise unchanged.
func Flip(name string) string {
	cleaned := Clean(name)
	last, first, ok := strings.Cut(cleaned, ",")
	if !ok {
		return cleaned
	}
	last = strings.TrimSpace(last)
	first = strings.TrimSpace(first)
	if last == "" || first == "" {
		return cleaned
	}
	given := make([]string, 0, 2)
	for _, tok := range strings.Fields(first) {
		if tok = strings.TrimRight(tok, "."); tok != "" {
			given = append(given, tok)
		}
	}
	return strings.TrimSpace(strings.Join(given, " ") + " " + last)
}

func withoutParticles(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) == "" || IsParticle(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
