package ingest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
	"oddsmap/internal/names"
	"oddsmap/internal/resolver"
)

// Options select which matches a run keeps.
type Options struct {
	Doubles bool
}

// Stats summarize a run.
type Stats struct {
	RunID          string `json:"run_id"`
	Matches        int    `json:"matches"`
	MatchesSkipped int    `json:"matches_skipped"`
	Rows           int    `json:"rows"`
	PlayersHit     int    `json:"players_hit"`
	PlayersPending int    `json:"players_pending"`
	MemoHits       int    `json:"memo_hits"`
}

// Runner maps listings from one source.
type Runner struct {
	source      string
	players     *resolver.Resolver
	tournaments *resolver.Resolver
	logger      *slog.Logger
	newRunID    func() string
}

// NewRunner returns a runner tagging sightings and rows with source.
func NewRunner(source string, players, tournaments *resolver.Resolver, logger *slog.Logger) *Runner {
	return &Runner{
		source:      source,
		players:     players,
		tournaments: tournaments,
		logger:      logging.NewComponentLogger(logger, "ingest"),
		newRunID:    uuid.NewString,
	}
}

type resolvedName struct {
	canonical  string
	id         int64
	status     resolver.Status
	proposalID string
}

// run carries the per-run memos. It is discarded when Run returns.
type run struct {
	*Runner
	playerMemo     *resolver.Memo
	tournamentMemo *resolver.Memo
	stats          Stats
}

// Run de-duplicates matches, keeps the singles or doubles ones as requested,
// and returns one row per market selection.
func (r *Runner) Run(ctx context.Context, matches []Match, opts Options) ([]Row, Stats, error) {
	runID := r.newRunID()
	ctx = logging.WithRunID(ctx, runID)
	state := &run{
		Runner:         r,
		playerMemo:     resolver.NewMemo(r.players),
		tournamentMemo: resolver.NewMemo(r.tournaments),
		stats:          Stats{RunID: runID},
	}

	var rows []Row
	for _, m := range DedupeMatches(matches) {
		if IsDoubles(m.Competitors) != opts.Doubles {
			state.stats.MatchesSkipped++
			continue
		}
		matchRows, err := state.match(ctx, m)
		if err != nil {
			return nil, Stats{}, err
		}
		state.stats.Matches++
		rows = append(rows, matchRows...)
	}
	state.stats.Rows = len(rows)
	state.stats.MemoHits = state.playerMemo.Hits() + state.tournamentMemo.Hits()

	logging.WithContext(ctx, r.logger).Info("ingest run finished",
		logging.String(logging.FieldEventType, "ingest_run"),
		logging.String("source", r.source),
		logging.Bool("doubles", opts.Doubles),
		logging.Int("matches", state.stats.Matches),
		logging.Int("matches_skipped", state.stats.MatchesSkipped),
		logging.Int("rows", state.stats.Rows),
		logging.Int("players_hit", state.stats.PlayersHit),
		logging.Int("players_pending", state.stats.PlayersPending),
		logging.Int("memo_hits", state.stats.MemoHits),
	)
	return rows, state.stats, nil
}

func (s *run) match(ctx context.Context, m Match) ([]Row, error) {
	p1Raw := competitor(m.Competitors, 0)
	p2Raw := competitor(m.Competitors, 1)
	start := formatStart(m.StartTime)
	doubles := IsDoubles(m.Competitors)

	tourn, err := s.resolve(ctx, s.tournamentMemo, m.Competition, entity.Sighting{Source: s.source})
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]resolvedName)
	side := func(raw, opponent string) (string, []int64, error) {
		parts := []string{raw}
		if doubles {
			if parts = SplitPair(raw); len(parts) > 2 {
				parts = parts[:2]
			}
		}
		canon := make([]string, 0, len(parts))
		ids := make([]int64, 0, len(parts))
		for i, part := range parts {
			opp := opponent
			if doubles && i == 1 {
				opp = raw
			}
			n, err := s.player(ctx, part, m.Competition, opp, start)
			if err != nil {
				return "", nil, err
			}
			if key := names.Key(part); key != "" {
				byKey[key] = n
			}
			canon = append(canon, n.canonical)
			ids = append(ids, n.id)
		}
		return strings.Trim(strings.Join(canon, " / "), " /"), ids, nil
	}

	p1Canon, p1IDs, err := side(p1Raw, p2Raw)
	if err != nil {
		return nil, err
	}
	p2Canon, p2IDs, err := side(p2Raw, p1Raw)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for _, market := range m.Markets {
		for _, sel := range market.Selections {
			selCanon, selIDs, err := s.selection(ctx, sel.Name, byKey)
			if err != nil {
				return nil, err
			}
			rows = append(rows, Row{
				Source:               s.source,
				MatchID:              m.ID,
				IsDoubles:            doubles,
				StartTime:            start,
				Scope:                m.Scope,
				TournamentRaw:        m.Competition,
				TournamentCanonical:  tourn.canonical,
				TournamentID:         tourn.id,
				TournamentStatus:     string(tourn.status),
				TournamentProposalID: tourn.proposalID,
				Competitor1Raw:       p1Raw,
				Competitor2Raw:       p2Raw,
				Competitor1Canonical: p1Canon,
				Competitor2Canonical: p2Canon,
				Competitor1IDs:       p1IDs,
				Competitor2IDs:       p2IDs,
				MarketID:             market.ID,
				MarketName:           market.Name,
				SelectionRaw:         sel.Name,
				SelectionCanonical:   selCanon,
				SelectionIDs:         selIDs,
				Odds:                 sel.Odds,
			})
		}
	}
	return rows, nil
}

func (s *run) player(ctx context.Context, raw, tournament, opponent, start string) (resolvedName, error) {
	n, err := s.resolve(ctx, s.playerMemo, raw, entity.Sighting{
		Source:     s.source,
		Tournament: tournament,
		Opponent:   opponent,
		EventTime:  start,
	})
	if err != nil {
		return resolvedName{}, err
	}
	switch n.status {
	case resolver.StatusHit:
		s.stats.PlayersHit++
	case resolver.StatusPending:
		s.stats.PlayersPending++
	}
	return n, nil
}

// resolve maps an outcome to a display name: the canonical name on a hit,
// the raw text otherwise.
func (s *run) resolve(ctx context.Context, memo *resolver.Memo, raw string, sighting entity.Sighting) (resolvedName, error) {
	out, err := memo.ResolveOrRegister(ctx, raw, sighting)
	if err != nil {
		return resolvedName{}, err
	}
	n := resolvedName{canonical: raw, status: out.Status, proposalID: out.ProposalID}
	if out.Status == resolver.StatusHit {
		n.id = out.ID
		if out.CanonicalName != "" {
			n.canonical = out.CanonicalName
		}
	}
	return n, nil
}

func (s *run) selection(ctx context.Context, raw string, byKey map[string]resolvedName) (string, []int64, error) {
	if n, ok := byKey[names.Key(raw)]; ok {
		return n.canonical, []int64{n.id}, nil
	}
	rec, err := s.players.LookupOnly(ctx, raw)
	if err != nil {
		return "", nil, err
	}
	if rec == nil {
		return raw, []int64{0}, nil
	}
	return rec.DisplayName(), []int64{rec.ID}, nil
}
