package ingest

import (
	"strings"
	"time"
)

// Scope values a listing can carry.
const (
	ScopeHighlight = "highlight"
	ScopeLive      = "live"
)

// Match is one listed event.
type Match struct {
	ID          int64     `json:"id"`
	Competition string    `json:"competition"`
	Competitors []string  `json:"competitors"`
	StartTime   time.Time `json:"start_time_utc"`
	Scope       string    `json:"scope,omitempty"`
	Markets     []Market  `json:"markets,omitempty"`
}

// Market is a betting market of a match.
type Market struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Selections []Selection `json:"selections"`
}

// Selection is one priced outcome. Odds is nil when the feed sent no usable
// price.
type Selection struct {
	Name string   `json:"name"`
	Odds *float64 `json:"odds,omitempty"`
}

// Row is one selection of one market with every name mapped. An id of zero
// means the name did not resolve.
type Row struct {
	Source    string `json:"source"`
	MatchID   int64  `json:"match_id"`
	IsDoubles bool   `json:"is_doubles"`
	StartTime string `json:"start_time_utc"`
	Scope     string `json:"scope"`

	TournamentRaw        string `json:"tournament_raw"`
	TournamentCanonical  string `json:"tournament_canonical"`
	TournamentID         int64  `json:"tournament_id"`
	TournamentStatus     string `json:"tournament_status"`
	TournamentProposalID string `json:"tournament_proposal_id,omitempty"`

	Competitor1Raw       string  `json:"competitor1_raw"`
	Competitor2Raw       string  `json:"competitor2_raw"`
	Competitor1Canonical string  `json:"competitor1_canonical"`
	Competitor2Canonical string  `json:"competitor2_canonical"`
	Competitor1IDs       []int64 `json:"competitor1_ids"`
	Competitor2IDs       []int64 `json:"competitor2_ids"`

	MarketID           int64    `json:"market_id"`
	MarketName         string   `json:"market_name"`
	SelectionRaw       string   `json:"selection_raw"`
	SelectionCanonical string   `json:"selection_canonical"`
	SelectionIDs       []int64  `json:"selection_ids"`
	Odds               *float64 `json:"odds"`
}

// IsDoubles reports whether either of the first two competitors is a pair
// written as "A / B".
func IsDoubles(competitors []string) bool {
	if len(competitors) < 2 {
		return false
	}
	return strings.Contains(competitors[0], "/") || strings.Contains(competitors[1], "/")
}

// SplitPair splits "A / B" into its trimmed, non-empty halves. A name without
// halves is returned as the only element.
func SplitPair(name string) []string {
	var parts []string
	for _, p := range strings.Split(name, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return []string{name}
	}
	return parts
}

// DedupeMatches keeps one listing per match id in first-seen order. A live
// listing replaces an earlier one with the same id.
func DedupeMatches(matches []Match) []Match {
	pos := make(map[int64]int, len(matches))
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if i, seen := pos[m.ID]; seen {
			if m.Scope == ScopeLive {
				out[i] = m
			}
			continue
		}
		pos[m.ID] = len(out)
		out = append(out, m)
	}
	return out
}

func formatStart(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func competitor(competitors []string, i int) string {
	if i < len(competitors) {
		return competitors[i]
	}
	return ""
}
