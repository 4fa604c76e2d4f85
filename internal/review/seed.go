package review

import (
	"context"
	"strings"
	"time"

	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
	"oddsmap/internal/names"
)

// SeedResult summarizes a seeding pass.
type SeedResult struct {
	Domain   entity.Domain `json:"domain"`
	Records  int           `json:"records"`
	Aliases  int           `json:"aliases_written"`
	Variants bool          `json:"variants"`
}

// SeedCanonicals binds every record's canonical name, in its cleaned and
// folded forms, to the record id. Existing bindings are overwritten.
func (s *Service) SeedCanonicals(ctx context.Context, d entity.Domain) (SeedResult, error) {
	return s.seed(ctx, d, false)
}

// SeedVariants seeds canonicals plus the bounded variant set of every player
// record. Tournaments have no variants and get canonicals only.
func (s *Service) SeedVariants(ctx context.Context, d entity.Domain) (SeedResult, error) {
	return s.seed(ctx, d, d == entity.Players)
}

func (s *Service) seed(ctx context.Context, d entity.Domain, variants bool) (SeedResult, error) {
	st, err := s.stores(d)
	if err != nil {
		return SeedResult{}, err
	}
	start := time.Now()
	records, err := st.Corpus.Records(ctx)
	if err != nil {
		return SeedResult{}, err
	}

	var pairs []entity.Pair
	for _, rec := range records {
		for _, form := range seedForms(rec, variants) {
			for _, key := range names.Keys(form) {
				pairs = append(pairs, entity.Pair{Key: key, ID: rec.ID})
			}
		}
	}
	written, err := s.aliases.UpsertMany(ctx, d, pairs)
	if err != nil {
		return SeedResult{}, err
	}

	s.domainLogger(ctx, d).Info("aliases seeded",
		logging.String(logging.FieldEventType, "alias_seed"),
		logging.Int("records", len(records)),
		logging.Int("aliases_written", written),
		logging.Bool("variants", variants),
		logging.Duration("elapsed", time.Since(start)),
	)
	return SeedResult{Domain: d, Records: len(records), Aliases: written, Variants: variants}, nil
}

func seedForms(rec entity.Record, variants bool) []string {
	canonical := rec.DisplayName()
	if canonical == "" {
		return nil
	}
	forms := []string{canonical}
	if !variants {
		return forms
	}
	first := strings.TrimSpace(rec.FirstName)
	last := strings.TrimSpace(rec.LastName)
	if first == "" && last == "" {
		guess := names.GuessName(canonical)
		first, last = guess.First, guess.Last
	}
	return append(forms, names.Variants(first, last)...)
}
