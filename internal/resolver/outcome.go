package resolver

import (
	"context"
	"fmt"

	"oddsmap/internal/entity"
	"oddsmap/internal/names"
)

// Status classifies a ResolveOrRegister result.
type Status string

const (
	StatusHit     Status = "hit"
	StatusPending Status = "pending"
	// StatusSkipped marks input that normalizes to nothing.
	StatusSkipped Status = "skipped"
)

// Outcome is the result handed to ingestion callers. Hits carry ID and
// CanonicalName; pending results carry ProposalID and CanonicalGuess.
type Outcome struct {
	Status         Status `json:"status"`
	ID             int64  `json:"id,omitempty"`
	CanonicalName  string `json:"canonical_name,omitempty"`
	ProposalID     string `json:"proposal_id,omitempty"`
	CanonicalGuess string `json:"canonical_guess,omitempty"`
}

// ResolveOrRegister resolves raw and, on a miss, registers a proposal with
// the sighting context.
func (r *Resolver) ResolveOrRegister(ctx context.Context, raw string, sighting entity.Sighting) (Outcome, error) {
	if names.Key(raw) == "" {
		return Outcome{Status: StatusSkipped}, nil
	}
	m, ok, err := r.Resolve(ctx, raw)
	if err != nil {
		return Outcome{}, err
	}
	if ok {
		out := Outcome{Status: StatusHit, ID: m.ID}
		if r.deps.Records != nil {
			rec, found, err := r.deps.Records.Get(ctx, m.ID)
			if err != nil {
				return Outcome{}, err
			}
			if found {
				out.CanonicalName = rec.DisplayName()
			}
		}
		return out, nil
	}

	if r.deps.Proposals == nil {
		return Outcome{}, ErrNoQueue
	}
	p, _, err := r.deps.Proposals.Register(ctx, raw, sighting)
	if err != nil {
		return Outcome{}, fmt.Errorf("register proposal: %w", err)
	}
	return Outcome{
		Status:         StatusPending,
		ProposalID:     p.ID,
		CanonicalGuess: p.CanonicalGuess,
	}, nil
}

// LookupOnly resolves raw to its canonical record without ever registering a
// proposal. A miss, or a cached id with no record behind it, returns nil.
func (r *Resolver) LookupOnly(ctx context.Context, raw string) (*entity.Record, error) {
	m, ok, err := r.Resolve(ctx, raw)
	if err != nil || !ok {
		return nil, err
	}
	if r.deps.Records == nil {
		return &entity.Record{ID: m.ID}, nil
	}
	rec, found, err := r.deps.Records.Get(ctx, m.ID)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}
