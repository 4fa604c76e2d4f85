package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
	"oddsmap/internal/names"
)

// Via records which step produced a match.
type Via string

const (
	ViaCache     Via = "cache"
	ViaCandidate Via = "candidate"
	ViaIndex     Via = "index"
)

// ErrNoQueue is returned by ResolveOrRegister when the resolver was built
// without a proposal queue.
var ErrNoQueue = errors.New("resolver has no proposal queue")

// AliasStore is the persistent alias cache.
type AliasStore interface {
	Get(ctx context.Context, d entity.Domain, key string) (int64, bool, error)
	UpsertMany(ctx context.Context, d entity.Domain, pairs []entity.Pair) (int, error)
}

// IndexLookup is the fallback name index.
type IndexLookup interface {
	Lookup(ctx context.Context, name string) (int64, bool, error)
}

// RecordLookup fetches canonical records by id.
type RecordLookup interface {
	Get(ctx context.Context, id int64) (entity.Record, bool, error)
}

// ProposalRegistrar records unresolved names for review.
type ProposalRegistrar interface {
	Register(ctx context.Context, raw string, sighting entity.Sighting) (entity.Proposal, bool, error)
}

// Deps are the stores a Resolver reads and heals. Proposals may be nil for
// lookup-only use.
type Deps struct {
	Aliases   AliasStore
	Index     IndexLookup
	Records   RecordLookup
	Proposals ProposalRegistrar
}

// Match is a successful resolution.
type Match struct {
	ID        int64
	Via       Via
	Candidate string
}

// Resolver resolves names for one domain.
type Resolver struct {
	domain entity.Domain
	deps   Deps
	logger *slog.Logger
}

// New builds a resolver for d.
func New(d entity.Domain, deps Deps, logger *slog.Logger) *Resolver {
	return &Resolver{
		domain: d,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "resolver").With(
			logging.String(logging.FieldDomain, d.String()),
		),
	}
}

// Domain reports the resolver's domain.
func (r *Resolver) Domain() entity.Domain { return r.domain }

// Resolve looks raw up and heals the alias cache after a candidate or index
// hit. A miss is reported through ok; err is only set for store failures.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Match, bool, error) {
	return r.resolve(ctx, raw, true)
}

// Probe is Resolve without healing.
func (r *Resolver) Probe(ctx context.Context, raw string) (Match, bool, error) {
	return r.resolve(ctx, raw, false)
}

func (r *Resolver) resolve(ctx context.Context, raw string, heal bool) (Match, bool, error) {
	cleaned := names.Clean(raw)
	if names.Key(cleaned) == "" {
		return Match{}, false, nil
	}

	id, ok, err := r.cached(ctx, cleaned)
	if err != nil || ok {
		return Match{ID: id, Via: ViaCache}, ok, err
	}

	var candidates []string
	if r.domain == entity.Players {
		candidates = names.Candidates(cleaned)
	}
	for _, cand := range candidates {
		id, ok, err := r.cached(ctx, cand)
		if err != nil {
			return Match{}, false, err
		}
		if ok {
			m := Match{ID: id, Via: ViaCandidate, Candidate: cand}
			return m, true, r.healIf(ctx, heal, cleaned, m)
		}
	}

	if r.deps.Index == nil {
		return Match{}, false, nil
	}
	probes := append([]string{cleaned}, candidates...)
	for _, probe := range probes {
		id, ok, err := r.deps.Index.Lookup(ctx, probe)
		if err != nil {
			return Match{}, false, fmt.Errorf("index lookup: %w", err)
		}
		if ok {
			m := Match{ID: id, Via: ViaIndex}
			if probe != cleaned {
				m.Candidate = probe
			}
			return m, true, r.healIf(ctx, heal, cleaned, m)
		}
	}
	return Match{}, false, nil
}

// cached probes the alias cache on the cleaned and folded forms of name.
func (r *Resolver) cached(ctx context.Context, name string) (int64, bool, error) {
	for _, key := range names.Keys(name) {
		id, ok, err := r.deps.Aliases.Get(ctx, r.domain, key)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (r *Resolver) healIf(ctx context.Context, heal bool, cleaned string, m Match) error {
	if !heal {
		return nil
	}
	keys := names.Keys(cleaned)
	if m.Candidate != "" {
		keys = append(keys, names.Keys(m.Candidate)...)
	}
	pairs := make([]entity.Pair, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, entity.Pair{Key: key, ID: m.ID})
	}
	written, err := r.deps.Aliases.UpsertMany(ctx, r.domain, pairs)
	if err != nil {
		return fmt.Errorf("heal aliases: %w", err)
	}
	logging.WithContext(ctx, r.logger).Debug("aliases healed",
		logging.String(logging.FieldEventType, "alias_heal"),
		logging.Int64(logging.FieldEntityID, m.ID),
		logging.String("via", string(m.Via)),
		logging.String("name", cleaned),
		logging.String("candidate", m.Candidate),
		logging.Int("written", written),
	)
	return nil
}
