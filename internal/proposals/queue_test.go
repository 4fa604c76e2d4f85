package proposals_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
	"oddsmap/internal/proposals"
)

func newQueue(t *testing.T, d entity.Domain) (*proposals.Queue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unmapped.json")
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seq := 0
	q := proposals.New(d, path, 2, logging.NewNop(),
		proposals.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		proposals.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("p-%d", seq)
		}),
	)
	return q, path
}

func TestRegisterCreatesPlayerProposal(t *testing.T) {
	q, path := newQueue(t, entity.Players)
	ctx := context.Background()

	p, merged, err := q.Register(ctx, "Nadal, R.", entity.Sighting{Source: "bk1", Tournament: "Roland Garros"})
	if err != nil {
		t.Fatal(err)
	}
	if merged {
		t.Fatal("first registration should not merge")
	}
	if p.ID != "p-1" || p.Sightings != 1 || p.Status != entity.ProposalPending {
		t.Fatalf("unexpected proposal %+v", p)
	}
	if p.CanonicalGuess != "R Nadal" || p.FirstNameGuess != "R" || p.LastNameGuess != "Nadal" {
		t.Fatalf("unexpected guess %+v", p)
	}
	for _, want := range []string{"nadal, r", "R Nadal", "R. Nadal", "r nadal"} {
		if !slices.Contains(p.Aliases, want) {
			t.Fatalf("aliases %v missing %q", p.Aliases, want)
		}
	}
	if !slices.IsSorted(p.Aliases) {
		t.Fatalf("aliases not sorted: %v", p.Aliases)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Proposals []map[string]any `json:"proposals"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Proposals) != 1 || doc.Proposals[0]["proposal_id"] != "p-1" {
		t.Fatalf("unexpected document %s", data)
	}
	if doc.Proposals[0]["canonical_name_guess"] != "R Nadal" {
		t.Fatalf("unexpected document %s", data)
	}
}

func TestRegisterMergesOnSameGuessOrKey(t *testing.T) {
	q, _ := newQueue(t, entity.Players)
	ctx := context.Background()

	first, _, err := q.Register(ctx, "Jan-Lennard Struff", entity.Sighting{Source: "bk1"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		raw  string
	}{
		{name: "same key different case", raw: "JAN-LENNARD STRUFF"},
		{name: "same folded guess", raw: "Jan-Lennard Struff (GER)"},
		{name: "comma form same guess", raw: "Struff, Jan-Lennard"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, merged, err := q.Register(ctx, tt.raw, entity.Sighting{Source: "bk2"})
			if err != nil {
				t.Fatal(err)
			}
			if !merged || p.ID != first.ID {
				t.Fatalf("expected merge into %s, got %+v merged=%v", first.ID, p, merged)
			}
			if p.Sightings != i+2 {
				t.Fatalf("sightings = %d, want %d", p.Sightings, i+2)
			}
			if p.RawSamples[len(p.RawSamples)-1] != tt.raw {
				t.Fatalf("raw samples %v missing %q", p.RawSamples, tt.raw)
			}
			if len(p.Context) != i+2 {
				t.Fatalf("context length %d", len(p.Context))
			}
			if !p.LastSeen.After(p.CreatedAt) {
				t.Fatalf("last seen not bumped: %+v", p)
			}
		})
	}

	list, err := q.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one proposal, got %d", len(list))
	}
}

func TestRegisterRepeatedRawIsNotDuplicatedInSamples(t *testing.T) {
	q, _ := newQueue(t, entity.Players)
	ctx := context.Background()
	for range 3 {
		if _, _, err := q.Register(ctx, "Iga Swiatek", entity.Sighting{}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := q.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Sightings != 3 || len(list[0].RawSamples) != 1 {
		t.Fatalf("unexpected queue %+v", list)
	}
}

func TestRegisterTournament(t *testing.T) {
	q, _ := newQueue(t, entity.Tournaments)
	p, _, err := q.Register(context.Background(), "  roland garros ", entity.Sighting{Source: "bk1"})
	if err != nil {
		t.Fatal(err)
	}
	if p.CanonicalGuess != "Roland Garros" {
		t.Fatalf("guess = %q", p.CanonicalGuess)
	}
	if p.FirstNameGuess != "" || p.LastNameGuess != "" {
		t.Fatalf("tournaments carry no name split: %+v", p)
	}
	want := []string{"Roland Garros", "roland garros"}
	if !slices.Equal(p.Aliases, want) {
		t.Fatalf("aliases = %v, want %v", p.Aliases, want)
	}
}

func TestRegisterEmptyName(t *testing.T) {
	q, path := newQueue(t, entity.Players)
	if _, _, err := q.Register(context.Background(), " (Q) ", entity.Sighting{}); !errors.Is(err, proposals.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("queue file should not be written: %v", err)
	}
}

func TestGetAndRemove(t *testing.T) {
	q, _ := newQueue(t, entity.Players)
	ctx := context.Background()
	a, _, err := q.Register(ctx, "Tallon Griekspoor", entity.Sighting{})
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := q.Register(ctx, "Botic van de Zandschulp", entity.Sighting{})
	if err != nil {
		t.Fatal(err)
	}

	got, err := q.Get(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CanonicalGuess != "Botic van de Zandschulp" {
		t.Fatalf("unexpected proposal %+v", got)
	}
	if _, err := q.Get(ctx, "missing"); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := q.Remove(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := q.Remove(ctx, a.ID); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
	list, err := q.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("unexpected queue %+v", list)
	}
}

func TestListSkipsResolvedAndAcceptsMissingStatus(t *testing.T) {
	q, path := newQueue(t, entity.Players)
	doc := `{"proposals": [
  {"proposal_id": "a", "raw_samples": ["X Y"], "canonical_name_guess": "X Y", "aliases": ["x y"], "sightings": 1},
  {"proposal_id": "b", "status": "resolved", "raw_samples": ["Z W"], "canonical_name_guess": "Z W", "aliases": ["z w"], "sightings": 4}
]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	list, err := q.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "a" {
		t.Fatalf("unexpected pending list %+v", list)
	}
}
