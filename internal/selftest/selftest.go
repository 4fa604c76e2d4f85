package selftest

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
	"oddsmap/internal/resolver"
)

const defaultProgressEvery = 2000

// RecordSource supplies the records under test in a stable order.
type RecordSource interface {
	Records(ctx context.Context) ([]entity.Record, error)
}

// Prober resolves a name without side effects.
type Prober interface {
	Probe(ctx context.Context, raw string) (resolver.Match, bool, error)
}

// Options select the slice of records and progress reporting. Count zero
// means every record from Start on.
type Options struct {
	Start         int
	Count         int
	ProgressEvery int
	OnProgress    func(Progress)
}

// Progress is reported every ProgressEvery tested records.
type Progress struct {
	Tested          int
	Total           int
	VariantsChecked int
	Misses          int
	Rate            float64
	ETA             time.Duration
}

// Failure is a variant that did not resolve.
type Failure struct {
	ID            int64
	CanonicalName string
	Variant       string
}

// Summary describes a completed run.
type Summary struct {
	Records         int           `json:"records_total"`
	Start           int           `json:"start"`
	End             int           `json:"end"`
	RecordsTested   int           `json:"records_tested"`
	VariantsChecked int           `json:"variants_checked"`
	Misses          int           `json:"misses"`
	HitRate         float64       `json:"hit_rate"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Run probes the bookmaker variants of records [Start, Start+Count).
func Run(ctx context.Context, source RecordSource, prober Prober, opts Options, logger *slog.Logger) (Summary, []Failure, error) {
	logger = logging.NewComponentLogger(logger, "selftest")
	records, err := source.Records(ctx)
	if err != nil {
		return Summary{}, nil, err
	}

	start := min(max(opts.Start, 0), len(records))
	end := len(records)
	if opts.Count > 0 {
		end = min(end, start+opts.Count)
	}
	work := records[start:end]
	every := opts.ProgressEvery
	if every <= 0 {
		every = defaultProgressEvery
	}

	summary := Summary{Records: len(records), Start: start, End: end}
	logger.Info("self test started",
		logging.Int("records_total", len(records)),
		logging.Int("start", start),
		logging.Int("end", end),
	)

	began := time.Now()
	sampler := logging.NewProgressSampler(10)
	var failures []Failure
	for i, rec := range work {
		if err := ctx.Err(); err != nil {
			return Summary{}, nil, err
		}
		variants := BookmakerVariants(rec.FirstName, rec.LastName)
		if len(variants) == 0 {
			continue
		}
		summary.RecordsTested++
		for _, v := range variants {
			summary.VariantsChecked++
			_, ok, err := prober.Probe(ctx, v)
			if err != nil {
				return Summary{}, nil, fmt.Errorf("probe %q: %w", v, err)
			}
			if !ok {
				failures = append(failures, Failure{ID: rec.ID, CanonicalName: rec.DisplayName(), Variant: v})
			}
		}

		if summary.RecordsTested%every == 0 {
			p := progress(summary.RecordsTested, len(work), summary.VariantsChecked, len(failures), time.Since(began))
			if opts.OnProgress != nil {
				opts.OnProgress(p)
			}
			if sampler.ShouldLog(i+1, len(work), "probe") {
				logger.Info("self test progress",
					logging.Int("tested", p.Tested),
					logging.Int("total", p.Total),
					logging.Int("variants", p.VariantsChecked),
					logging.Int("misses", p.Misses),
					logging.Duration("eta", p.ETA),
				)
			}
		}
	}

	summary.Misses = len(failures)
	summary.Elapsed = time.Since(began)
	if summary.VariantsChecked > 0 {
		summary.HitRate = 100 * (1 - float64(summary.Misses)/float64(summary.VariantsChecked))
	}
	logger.Info("self test finished",
		logging.Int("records_tested", summary.RecordsTested),
		logging.Int("variants_checked", summary.VariantsChecked),
		logging.Int("misses", summary.Misses),
		logging.Float64("hit_rate", summary.HitRate),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, failures, nil
}

func progress(tested, total, variants, misses int, elapsed time.Duration) Progress {
	p := Progress{Tested: tested, Total: total, VariantsChecked: variants, Misses: misses}
	if secs := elapsed.Seconds(); secs > 0 {
		p.Rate = float64(tested) / secs
	}
	if p.Rate > 0 {
		p.ETA = time.Duration(float64(total-tested) / p.Rate * float64(time.Second))
	}
	return p
}

// WriteFailuresCSV writes failures with a uid,canonical_name,variant header.
func WriteFailuresCSV(path string, failures []Failure) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create failures directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create failures csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"uid", "canonical_name", "variant"}); err != nil {
		return err
	}
	for _, fl := range failures {
		if err := w.Write([]string{strconv.FormatInt(fl.ID, 10), fl.CanonicalName, fl.Variant}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write failures csv: %w", err)
	}
	return f.Close()
}
