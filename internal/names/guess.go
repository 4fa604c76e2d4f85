package names

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Guess is a best-effort split of an unrecognized name.
type Guess struct {
	First     string
	Last      string
	Canonical string
}

// GuessName title-cases a comma-aware given/surname split of raw. Without a
// comma the surname is the last token plus any particles directly before it.
func GuessName(raw string) Guess {
	cleaned := Clean(raw)
	if cleaned == "" {
		return Guess{}
	}
	var given, surname []string
	if lastPart, firstPart, ok := strings.Cut(cleaned, ","); ok && strings.TrimSpace(lastPart) != "" && strings.TrimSpace(firstPart) != "" {
		for _, tok := range strings.Fields(firstPart) {
			if tok = strings.TrimRight(tok, "."); tok != "" {
				given = append(given, tok)
			}
		}
		surname = strings.Fields(lastPart)
	} else {
		plain := strings.NewReplacer(",", " ", ".", "").Replace(cleaned)
		given, surname = attachParticles(strings.Fields(plain))
	}

	caser := cases.Title(language.Und)
	first := titleTokens(caser, given, true)
	last := titleTokens(caser, surname, len(given) == 0)
	return Guess{
		First:     first,
		Last:      last,
		Canonical: strings.TrimSpace(first + " " + last),
	}
}

// titleTokens title-cases each token, keeping particles lowercase unless the
// token opens the whole name.
func titleTokens(caser cases.Caser, toks []string, leading bool) string {
	out := make([]string, 0, len(toks))
	for i, tok := range toks {
		if IsParticle(tok) && !(leading && i == 0) {
			out = append(out, strings.ToLower(tok))
			continue
		}
		out = append(out, caser.String(tok))
	}
	return strings.Join(out, " ")
}

// TitleName returns the cleaned raw string title-cased. Tournament proposals
// use it as their canonical guess.
func TitleName(raw string) string {
	cleaned := Clean(raw)
	if cleaned == "" {
		return ""
	}
	return cases.Title(language.Und).String(cleaned)
}
