package entity

import "time"

// ProposalStatus tracks a proposal through review.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalResolved ProposalStatus = "resolved"
)

// Sighting describes where an unresolved name was observed.
type Sighting struct {
	Source     string `json:"source_bookmaker,omitempty"`
	Tournament string `json:"tournament,omitempty"`
	Opponent   string `json:"opponent_raw,omitempty"`
	EventTime  string `json:"event_time_utc,omitempty"`
}

// Proposal is an unrecognized entity awaiting a human decision.
type Proposal struct {
	ID             string         `json:"proposal_id"`
	Status         ProposalStatus `json:"status"`
	RawSamples     []string       `json:"raw_samples"`
	CanonicalGuess string         `json:"canonical_name_guess"`
	FirstNameGuess string         `json:"first_name_guess,omitempty"`
	LastNameGuess  string         `json:"last_name_guess,omitempty"`
	Aliases        []string       `json:"aliases"`
	Sightings      int            `json:"sightings"`
	CreatedAt      time.Time      `json:"created_at_utc"`
	LastSeen       time.Time      `json:"last_seen_utc"`
	Context        []Sighting     `json:"context,omitempty"`
}

// Pending reports whether the proposal still awaits review. Documents written
// without a status are treated as pending.
func (p Proposal) Pending() bool {
	return p.Status == "" || p.Status == ProposalPending
}
