package entity

import "strings"

// Record is a canonical player or tournament. Player fields and tournament
// fields share one struct; the unused half stays empty and is omitted from
// the stored document.
type Record struct {
	ID            int64  `json:"-"`
	CanonicalName string `json:"canonical_name,omitempty"`

	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Gender        string `json:"gender,omitempty"`
	PreferredHand string `json:"preferred_hand,omitempty"`

	Level   string `json:"level,omitempty"`
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Surface string `json:"surface,omitempty"`
}

// DisplayName returns the stored canonical name, falling back to
// "first last" when none was recorded.
func (r Record) DisplayName() string {
	if name := strings.TrimSpace(r.CanonicalName); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}
