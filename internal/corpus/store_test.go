package corpus_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"oddsmap/internal/corpus"
	"oddsmap/internal/entity"
	"oddsmap/internal/fileutil"
	"oddsmap/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMissingDocumentStartsEmpty(t *testing.T) {
	store := corpus.New(entity.Players, filepath.Join(t.TempDir(), "players.json"), 3, logging.NewNop())
	ctx := context.Background()

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	meta, err := store.Meta(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if meta.NextID != 1 || meta.SchemaVersion != 1 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestLegacyFlatDocumentIsRepaired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	writeFile(t, path, `{
  "7": {"first_name": "Rafael", "last_name": "Nadal"},
  "3": {"canonical_name": "Iga Swiatek", "first_name": "Iga", "last_name": "Swiatek", "gender": "F"}
}`)
	store := corpus.New(entity.Players, path, 3, nil)
	ctx := context.Background()

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ID != 3 || records[1].ID != 7 {
		t.Fatalf("unexpected records %+v", records)
	}
	if got := records[1].DisplayName(); got != "Rafael Nadal" {
		t.Fatalf("DisplayName fallback = %q", got)
	}
	meta, _ := store.Meta(ctx)
	if meta.NextID != 8 {
		t.Fatalf("next_id = %d, want 8", meta.NextID)
	}
}

func TestStaleNextIDIsRepaired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tournaments.json")
	writeFile(t, path, `{"meta": {"db_version": "tournaments-init", "next_id": 2}, "data": {"4": {"canonical_name": "Wimbledon"}}}`)
	store := corpus.New(entity.Tournaments, path, 3, nil)

	meta, err := store.Meta(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if meta.NextID != 5 {
		t.Fatalf("next_id = %d, want 5", meta.NextID)
	}
}

func TestCreateAllocatesIncreasingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	store := corpus.New(entity.Players, path, 0, nil)
	ctx := context.Background()

	first, err := store.Create(ctx, entity.Record{FirstName: "Jannik", LastName: "Sinner", CanonicalName: "Jannik Sinner"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Create(ctx, entity.Record{FirstName: "Carlos", LastName: "Alcaraz", CanonicalName: "Carlos Alcaraz"})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids = %d, %d; want 1, 2", first.ID, second.ID)
	}

	var onDisk struct {
		Meta corpus.Meta               `json:"meta"`
		Data map[string]map[string]any `json:"data"`
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatal(err)
	}
	if onDisk.Meta.NextID != 3 {
		t.Fatalf("persisted next_id = %d", onDisk.Meta.NextID)
	}
	if onDisk.Data["2"]["canonical_name"] != "Carlos Alcaraz" {
		t.Fatalf("persisted record = %v", onDisk.Data["2"])
	}
	if _, ok := onDisk.Data["2"]["level"]; ok {
		t.Fatal("empty tournament fields should be omitted")
	}

	backups, err := fileutil.Backups(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup of the first version, got %v", backups)
	}
}

func TestSetNextID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	store := corpus.New(entity.Players, path, 3, nil)
	ctx := context.Background()

	if _, err := store.Create(ctx, entity.Record{CanonicalName: "A B"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SetNextID(ctx, 500); err != nil {
		t.Fatalf("SetNextID: %v", err)
	}
	rec, err := store.Create(ctx, entity.Record{CanonicalName: "C D"})
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != 500 {
		t.Fatalf("id = %d, want 500", rec.ID)
	}

	_, err = store.SetNextID(ctx, 500)
	if !errors.Is(err, corpus.ErrNextIDRegression) {
		t.Fatalf("expected ErrNextIDRegression, got %v", err)
	}
	meta, _ := store.Meta(ctx)
	if meta.NextID != 501 {
		t.Fatalf("next_id changed by rejected override: %d", meta.NextID)
	}
}

func TestSetNextIDNeverMovesBackwards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	store := corpus.New(entity.Players, path, 3, nil)
	ctx := context.Background()

	if _, err := store.Create(ctx, entity.Record{CanonicalName: "A B"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SetNextID(ctx, 500); err != nil {
		t.Fatalf("SetNextID(500): %v", err)
	}
	for _, next := range []int64{2, 499} {
		if _, err := store.SetNextID(ctx, next); !errors.Is(err, corpus.ErrNextIDRegression) {
			t.Fatalf("SetNextID(%d): expected ErrNextIDRegression, got %v", next, err)
		}
	}
	meta, err := store.Meta(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if meta.NextID != 500 {
		t.Fatalf("next_id = %d, want 500", meta.NextID)
	}
	if meta, err = store.SetNextID(ctx, 500); err != nil || meta.NextID != 500 {
		t.Fatalf("SetNextID(current) = %+v, %v", meta, err)
	}
	if meta, err = store.SetNextID(ctx, 600); err != nil || meta.NextID != 600 {
		t.Fatalf("SetNextID(600) = %+v, %v", meta, err)
	}
}

func TestReloadSeesExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	writeFile(t, path, `{"meta": {"next_id": 2}, "data": {"1": {"canonical_name": "A B"}}}`)
	store := corpus.New(entity.Players, path, 3, nil)
	ctx := context.Background()

	if n, _ := store.Count(ctx); n != 1 {
		t.Fatalf("count = %d", n)
	}
	writeFile(t, path, `{"meta": {"next_id": 3}, "data": {"1": {"canonical_name": "A B"}, "2": {"canonical_name": "C D"}}}`)
	if n, _ := store.Count(ctx); n != 1 {
		t.Fatalf("cached count = %d, want 1 before reload", n)
	}
	store.Reload()
	if n, _ := store.Count(ctx); n != 2 {
		t.Fatalf("count after reload = %d", n)
	}
	if rec, ok, _ := store.Get(ctx, 2); !ok || rec.CanonicalName != "C D" {
		t.Fatalf("Get(2) = %+v, %v", rec, ok)
	}
}

func TestCorruptDocumentFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	writeFile(t, path, `{"data": {"abc": {}}}`)
	store := corpus.New(entity.Players, path, 3, nil)
	if _, err := store.Records(context.Background()); err == nil {
		t.Fatal("expected error for non-integer id")
	}
}
