package resolver

import (
	"context"

	"oddsmap/internal/entity"
	"oddsmap/internal/names"
)

// Memo remembers ResolveOrRegister outcomes for the length of one run, keyed
// by the normalized input. Repeated spellings within the run do not reach the
// stores again. It is not safe for concurrent use and must be dropped when
// the run ends.
type Memo struct {
	resolver *Resolver
	entries  map[string]Outcome
	hits     int
}

// NewMemo returns an empty memo in front of r.
func NewMemo(r *Resolver) *Memo {
	return &Memo{resolver: r, entries: make(map[string]Outcome)}
}

// ResolveOrRegister answers from the memo when raw was already seen this run.
func (m *Memo) ResolveOrRegister(ctx context.Context, raw string, sighting entity.Sighting) (Outcome, error) {
	key := names.Key(raw)
	if key == "" {
		return Outcome{Status: StatusSkipped}, nil
	}
	if out, ok := m.entries[key]; ok {
		m.hits++
		return out, nil
	}
	out, err := m.resolver.ResolveOrRegister(ctx, raw, sighting)
	if err != nil {
		return Outcome{}, err
	}
	m.entries[key] = out
	return out, nil
}

// Len reports how many distinct keys were resolved.
func (m *Memo) Len() int { return len(m.entries) }

// Hits reports how many calls were answered from the memo.
func (m *Memo) Hits() int { return m.hits }
