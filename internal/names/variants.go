package names

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Variants returns the bounded set of seed aliases for a canonical person:
// "First Last", "Last, First", hyphen halves in both orders, initials with
// the surname, three-letter surname truncations, and the accent-free and
// lowercase forms of each. The result is sorted.
func Variants(first, last string) []string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" && last == "" {
		return nil
	}
	base := make(map[string]struct{})
	add := func(v string) {
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			base[v] = struct{}{}
		}
	}

	add(first + " " + last)
	if first != "" && last != "" {
		add(last + ", " + first)

		initial, _ := utf8.DecodeRuneInString(first)
		add(string(initial) + ". " + last)
		add(string(initial) + " " + last)

		if strings.Contains(first, "-") {
			var initials []string
			for _, part := range strings.Split(first, "-") {
				if part == "" {
					continue
				}
				add(part + " " + last)
				add(last + ", " + part)
				r, _ := utf8.DecodeRuneInString(part)
				initials = append(initials, string(r))
			}
			if len(initials) > 0 {
				add(strings.Join(initials, ".-") + ". " + last)
				add(strings.Join(initials, ".") + ". " + last)
				add(strings.Join(initials, "") + " " + last)
			}
		}

		trunc := truncateRunes(last, 3)
		add(first + " " + trunc + ".")
		add(trunc + ". " + first)
	}

	out := make(map[string]struct{}, len(base)*3)
	for v := range base {
		stripped := StripAccents(v)
		out[v] = struct{}{}
		out[stripped] = struct{}{}
		out[strings.ToLower(v)] = struct{}{}
		out[strings.ToLower(stripped)] = struct{}{}
	}
	result := make([]string, 0, len(out))
	for v := range out {
		result = append(result, v)
	}
	slices.Sort(result)
	return result
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
