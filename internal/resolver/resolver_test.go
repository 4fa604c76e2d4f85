package resolver_test

import (
	"context"
	"errors"
	"testing"

	"oddsmap/internal/entity"
	"oddsmap/internal/resolver"
	"oddsmap/internal/testsupport"
	"oddsmap/internal/workspace"
)

func openSeeded(t *testing.T, variants bool, players ...entity.Record) *workspace.Workspace {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	testsupport.WriteCorpus(t, cfg.Paths.PlayersDB, players...)
	testsupport.WriteCorpus(t, cfg.Paths.TournamentsDB,
		testsupport.Tournament(1, "Roland Garros"),
		testsupport.Tournament(2, "Internazionali BNL d'Italia"),
	)
	ws := testsupport.MustOpenWorkspace(t, cfg)
	ctx := context.Background()
	seed := ws.Review().SeedCanonicals
	if variants {
		seed = ws.Review().SeedVariants
	}
	if _, err := seed(ctx, entity.Players); err != nil {
		t.Fatalf("seed players: %v", err)
	}
	return ws
}

func mustResolve(t *testing.T, r *resolver.Resolver, raw string) resolver.Match {
	t.Helper()
	m, ok, err := r.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", raw, err)
	}
	if !ok {
		t.Fatalf("Resolve(%q): no match", raw)
	}
	return m
}

func TestResolveSpellingsOfOnePlayer(t *testing.T) {
	tests := []struct {
		name     string
		player   entity.Record
		variants bool
		inputs   []string
	}{
		{
			name:     "comma and initial forms",
			player:   testsupport.Player(10, "Rafael", "Nadal"),
			variants: true,
			inputs:   []string{"Rafael Nadal", "Nadal, Rafael", "R. Nadal", "NADAL, R.", "rafael nadal (ESP)"},
		},
		{
			name:   "hyphenated given name",
			player: testsupport.Player(20, "Jan-Lennard", "Struff"),
			inputs: []string{"Jan-Lennard Struff", "Struff, Jan-Lennard", "J.-L. Struff", "JL Struff"},
		},
		{
			name:   "particle surname",
			player: testsupport.Player(30, "Botic", "van de Zandschulp"),
			inputs: []string{"Botic van de Zandschulp", "Botic Zandschulp", "Van de Zandschulp, Botic"},
		},
		{
			name:   "accented name",
			player: testsupport.Player(40, "Jiří", "Lehečka"),
			inputs: []string{"Jiří Lehečka", "Jiri Lehecka", "LEHECKA, Jiri"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := openSeeded(t, tt.variants, tt.player, testsupport.Player(99, "Novak", "Djokovic"))
			r := ws.Players().Resolver
			for _, raw := range tt.inputs {
				if got := mustResolve(t, r, raw); got.ID != tt.player.ID {
					t.Fatalf("Resolve(%q) = %d via %s, want %d", raw, got.ID, got.Via, tt.player.ID)
				}
			}
		})
	}
}

func TestResolveOrder(t *testing.T) {
	ws := openSeeded(t, false, testsupport.Player(10, "Rafael", "Nadal"), testsupport.Player(20, "Jan-Lennard", "Struff"))
	r := ws.Players().Resolver

	if m := mustResolve(t, r, "Rafael Nadal"); m.Via != resolver.ViaCache {
		t.Fatalf("exact canonical resolved via %s", m.Via)
	}
	m := mustResolve(t, r, "Nadal, Rafael")
	if m.Via != resolver.ViaCandidate || m.Candidate != "Rafael Nadal" {
		t.Fatalf("comma form resolved %+v", m)
	}
	if m := mustResolve(t, r, "Nadal, Rafael"); m.Via != resolver.ViaCache {
		t.Fatalf("healed comma form resolved via %s", m.Via)
	}
	if m := mustResolve(t, r, "JL Struff"); m.Via != resolver.ViaIndex {
		t.Fatalf("initials resolved via %s", m.Via)
	}
}

func TestIndexHitHealsCache(t *testing.T) {
	ws := openSeeded(t, false, testsupport.Player(20, "Jan-Lennard", "Struff"))
	dom := ws.Players()

	before := dom.Index.Lookups()
	if m := mustResolve(t, dom.Resolver, "J.-L. Struff"); m.Via != resolver.ViaIndex {
		t.Fatalf("first lookup via %s, want index", m.Via)
	}
	afterFirst := dom.Index.Lookups()
	if afterFirst == before {
		t.Fatal("first lookup did not reach the index")
	}

	if m := mustResolve(t, dom.Resolver, "J.-L. Struff"); m.Via != resolver.ViaCache {
		t.Fatalf("second lookup via %s, want cache", m.Via)
	}
	if got := dom.Index.Lookups(); got != afterFirst {
		t.Fatalf("second lookup touched the index: %d -> %d", afterFirst, got)
	}

	id, ok, err := ws.Aliases.Get(context.Background(), entity.Players, "j.-l. struff")
	if err != nil || !ok || id != 20 {
		t.Fatalf("healed alias = %d %v %v", id, ok, err)
	}
}

func TestProbeDoesNotHeal(t *testing.T) {
	ws := openSeeded(t, false, testsupport.Player(20, "Jan-Lennard", "Struff"))
	dom := ws.Players()
	ctx := context.Background()

	for range 2 {
		m, ok, err := dom.Resolver.Probe(ctx, "JL Struff")
		if err != nil || !ok || m.Via != resolver.ViaIndex {
			t.Fatalf("Probe = %+v %v %v", m, ok, err)
		}
	}
	if _, ok, err := ws.Aliases.Get(ctx, entity.Players, "jl struff"); err != nil || ok {
		t.Fatalf("probe wrote an alias: %v %v", ok, err)
	}
}

func TestResolveMissAndEmpty(t *testing.T) {
	ws := openSeeded(t, false, testsupport.Player(10, "Rafael", "Nadal"))
	r := ws.Players().Resolver
	for _, raw := range []string{"", "   ", "(Q)", "Carlos Alcaraz"} {
		m, ok, err := r.Resolve(context.Background(), raw)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", raw, err)
		}
		if ok {
			t.Fatalf("Resolve(%q) = %+v, want miss", raw, m)
		}
	}
}

func TestResolveOrRegister(t *testing.T) {
	ws := openSeeded(t, false, testsupport.Player(10, "Rafael", "Nadal"))
	r := ws.Players().Resolver
	ctx := context.Background()

	hit, err := r.ResolveOrRegister(ctx, "Nadal, Rafael", entity.Sighting{Source: "bk1"})
	if err != nil {
		t.Fatal(err)
	}
	if hit.Status != resolver.StatusHit || hit.ID != 10 || hit.CanonicalName != "Rafael Nadal" {
		t.Fatalf("unexpected hit %+v", hit)
	}

	first, err := r.ResolveOrRegister(ctx, "Carlos Alcaraz", entity.Sighting{Source: "bk1", Opponent: "Rafael Nadal"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Status != resolver.StatusPending || first.ProposalID == "" || first.CanonicalGuess != "Carlos Alcaraz" {
		t.Fatalf("unexpected pending outcome %+v", first)
	}
	second, err := r.ResolveOrRegister(ctx, "Carlos Alcaraz", entity.Sighting{Source: "bk2"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ProposalID != first.ProposalID {
		t.Fatalf("second sighting opened %s, want %s", second.ProposalID, first.ProposalID)
	}
	pending, err := ws.Players().Queue.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Sightings != 2 || len(pending[0].RawSamples) != 1 {
		t.Fatalf("unexpected queue %+v", pending)
	}

	skipped, err := r.ResolveOrRegister(ctx, " [Q] ", entity.Sighting{})
	if err != nil || skipped.Status != resolver.StatusSkipped {
		t.Fatalf("empty name outcome %+v %v", skipped, err)
	}
}

func TestResolveOrRegisterWithoutQueue(t *testing.T) {
	ws := openSeeded(t, false, testsupport.Player(10, "Rafael", "Nadal"))
	dom := ws.Players()
	r := resolver.New(entity.Players, resolver.Deps{Aliases: ws.Aliases, Index: dom.Index, Records: dom.Corpus}, nil)

	if _, err := r.ResolveOrRegister(context.Background(), "Carlos Alcaraz", entity.Sighting{}); !errors.Is(err, resolver.ErrNoQueue) {
		t.Fatalf("expected ErrNoQueue, got %v", err)
	}
}

func TestLookupOnlyNeverRegisters(t *testing.T) {
	ws := openSeeded(t, false, testsupport.Player(10, "Rafael", "Nadal"))
	dom := ws.Players()
	ctx := context.Background()

	rec, err := dom.Resolver.LookupOnly(ctx, "Nadal, Rafael")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.ID != 10 || rec.LastName != "Nadal" {
		t.Fatalf("unexpected record %+v", rec)
	}

	rec, err = dom.Resolver.LookupOnly(ctx, "Carlos Alcaraz")
	if err != nil || rec != nil {
		t.Fatalf("LookupOnly miss = %+v %v", rec, err)
	}
	pending, err := dom.Queue.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("lookup-only registered %d proposals", len(pending))
	}
}

func TestMemoAnswersRepeats(t *testing.T) {
	ws := openSeeded(t, false, testsupport.Player(10, "Rafael", "Nadal"))
	memo := resolver.NewMemo(ws.Players().Resolver)
	ctx := context.Background()

	for _, raw := range []string{"Rafael Nadal", "RAFAEL NADAL", "Rafael Nadal (ESP)", "Carlos Alcaraz", "carlos alcaraz"} {
		if _, err := memo.ResolveOrRegister(ctx, raw, entity.Sighting{}); err != nil {
			t.Fatal(err)
		}
	}
	if memo.Len() != 2 || memo.Hits() != 3 {
		t.Fatalf("memo len=%d hits=%d, want 2 and 3", memo.Len(), memo.Hits())
	}
	pending, err := ws.Players().Queue.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Sightings != 1 {
		t.Fatalf("memoized miss should register once: %+v", pending)
	}
}

func TestTournamentResolution(t *testing.T) {
	ws := openSeeded(t, false)
	dom := ws.Tournaments()
	ctx := context.Background()

	m := mustResolve(t, dom.Resolver, "ROLAND GARROS")
	if m.ID != 1 || m.Via != resolver.ViaIndex {
		t.Fatalf("unexpected match %+v", m)
	}
	if m := mustResolve(t, dom.Resolver, "roland garros"); m.Via != resolver.ViaCache {
		t.Fatalf("healed tournament resolved via %s", m.Via)
	}
	if _, ok, err := dom.Resolver.Resolve(ctx, "Garros, Roland"); err != nil || ok {
		t.Fatalf("tournaments must not expand candidates: %v %v", ok, err)
	}

	out, err := dom.Resolver.ResolveOrRegister(ctx, "Madrid Open", entity.Sighting{Source: "bk1"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != resolver.StatusPending || out.CanonicalGuess != "Madrid Open" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}
