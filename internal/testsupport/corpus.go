package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"oddsmap/internal/entity"
)

// WriteCorpus writes records as a wrapped corpus document at path with
// next_id one past the highest id.
func WriteCorpus(t testing.TB, path string, records ...entity.Record) {
	t.Helper()

	var highest int64
	data := make(map[string]entity.Record, len(records))
	for _, rec := range records {
		data[strconv.FormatInt(rec.ID, 10)] = rec
		highest = max(highest, rec.ID)
	}
	doc := map[string]any{
		"meta": map[string]any{"schema_version": 1, "next_id": highest + 1},
		"data": data,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("encode corpus: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Player builds a player record.
func Player(id int64, first, last string) entity.Record {
	return entity.Record{ID: id, FirstName: first, LastName: last}
}

// Tournament builds a tournament record.
func Tournament(id int64, name string) entity.Record {
	return entity.Record{ID: id, CanonicalName: name}
}
