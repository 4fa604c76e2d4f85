// Package index builds the in-memory fallback map from derived name keys to
// canonical ids.
//
// The map is built from the full corpus on first use and kept until Reset.
// When two records derive the same key, the record visited first (lowest
// id) keeps it.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
	"oddsmap/internal/names"
)

// RecordSource supplies canonical records in a stable order.
type RecordSource interface {
	Records(ctx context.Context) ([]entity.Record, error)
}

// KeysFunc derives the raw name forms a record should be reachable under.
type KeysFunc func(entity.Record) []string

// Index is a lazily built, read-only key to id map.
type Index struct {
	source RecordSource
	keysOf KeysFunc
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]int64

	lookups atomic.Int64
}

// New returns an index over source. keysOf defaults to PlayerKeys.
func New(source RecordSource, keysOf KeysFunc, logger *slog.Logger) *Index {
	if keysOf == nil {
		keysOf = PlayerKeys
	}
	return &Index{
		source: source,
		keysOf: keysOf,
		logger: logging.NewComponentLogger(logger, "index"),
	}
}

// Lookup returns the id whose derived keys include Key(name). The first call
// builds the index.
func (ix *Index) Lookup(ctx context.Context, name string) (int64, bool, error) {
	ix.lookups.Add(1)
	key := names.Key(name)
	if key == "" {
		return 0, false, nil
	}
	entries, err := ix.ensure(ctx)
	if err != nil {
		return 0, false, err
	}
	id, ok := entries[key]
	return id, ok, nil
}

// Lookups returns how many times Lookup has been called.
func (ix *Index) Lookups() int64 {
	return ix.lookups.Load()
}

// Size returns the number of keys, building the index if needed.
func (ix *Index) Size(ctx context.Context) (int, error) {
	entries, err := ix.ensure(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Reset discards the built map; the next Lookup rebuilds it.
func (ix *Index) Reset() {
	ix.mu.Lock()
	ix.entries = nil
	ix.mu.Unlock()
}

func (ix *Index) ensure(ctx context.Context) (map[string]int64, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.entries != nil {
		return ix.entries, nil
	}

	start := time.Now()
	records, err := ix.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	entries := make(map[string]int64, len(records)*8)
	for _, rec := range records {
		for _, raw := range ix.keysOf(rec) {
			key := names.Key(raw)
			if key == "" {
				continue
			}
			if _, taken := entries[key]; !taken {
				entries[key] = rec.ID
			}
		}
	}
	ix.entries = entries
	ix.logger.Debug("index built",
		logging.Int("records", len(records)),
		logging.Int("keys", len(entries)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return entries, nil
}

// PlayerKeys derives the canonical name, "first-token last" and every
// first-core by last-core pairing of a person record.
func PlayerKeys(rec entity.Record) []string {
	first := strings.TrimSpace(rec.FirstName)
	last := strings.TrimSpace(rec.LastName)
	canonical := rec.DisplayName()
	if first == "" && last == "" && canonical == "" {
		return nil
	}

	keys := []string{canonical}
	givenSource := first
	if givenSource == "" {
		givenSource = canonical
	}
	surnameSource := last
	if surnameSource == "" {
		if fields := strings.Fields(canonical); len(fields) > 0 {
			surnameSource = fields[len(fields)-1]
		}
	}
	if first != "" || last != "" {
		if fields := strings.Fields(givenSource); len(fields) > 0 {
			keys = append(keys, fields[0]+" "+surnameSource)
		}
	}
	for _, f := range names.FirstCores(givenSource) {
		for _, l := range names.LastCores(surnameSource) {
			keys = append(keys, f+" "+l)
		}
	}
	return keys
}

// CanonicalKeys derives only the canonical name. Tournaments use it.
func CanonicalKeys(rec entity.Record) []string {
	if name := rec.DisplayName(); name != "" {
		return []string{name}
	}
	return nil
}

// KeysFor returns the derivation used for a domain.
func KeysFor(d entity.Domain) KeysFunc {
	if d == entity.Tournaments {
		return CanonicalKeys
	}
	return PlayerKeys
}
