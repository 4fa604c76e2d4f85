package proposals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"oddsmap/internal/entity"
	"oddsmap/internal/fileutil"
	"oddsmap/internal/logging"
	"oddsmap/internal/names"
)

const lockRetryDelay = 25 * time.Millisecond

// ErrEmptyName is returned when a raw name normalizes to nothing.
var ErrEmptyName = errors.New("name is empty after normalization")

// Queue is the proposal queue of one domain.
type Queue struct {
	domain     entity.Domain
	path       string
	backupKeep int
	lock       *flock.Flock
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

type document struct {
	Proposals []entity.Proposal `json:"proposals"`
}

// Option customizes a Queue.
type Option func(*Queue)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// WithIDGenerator overrides proposal id generation.
func WithIDGenerator(newID func() string) Option {
	return func(q *Queue) { q.newID = newID }
}

// New returns the queue stored at path.
func New(d entity.Domain, path string, backupKeep int, logger *slog.Logger, opts ...Option) *Queue {
	q := &Queue{
		domain:     d,
		path:       path,
		backupKeep: backupKeep,
		lock:       flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "proposals").With(
			logging.String(logging.FieldDomain, d.String()),
		),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Domain reports which domain the queue holds.
func (q *Queue) Domain() entity.Domain { return q.domain }

// Register records a sighting of an unresolved raw name and returns the
// proposal it was merged into or appended as. merged reports which.
func (q *Queue) Register(ctx context.Context, raw string, sighting entity.Sighting) (entity.Proposal, bool, error) {
	rawKey := names.Key(raw)
	if rawKey == "" {
		return entity.Proposal{}, false, ErrEmptyName
	}
	draft := q.draft(raw)

	var (
		result entity.Proposal
		merged bool
	)
	err := q.update(ctx, func(doc *document) error {
		now := q.now().UTC()
		if i := findMatch(doc.Proposals, draft.CanonicalGuess, rawKey); i >= 0 {
			p := &doc.Proposals[i]
			p.Sightings++
			if !slices.Contains(p.RawSamples, raw) {
				p.RawSamples = append(p.RawSamples, raw)
			}
			p.Aliases = unionSorted(p.Aliases, draft.Aliases)
			p.Context = append(p.Context, sighting)
			p.LastSeen = now
			result = cloneProposal(*p)
			merged = true
			return nil
		}

		draft.ID = q.newID()
		draft.Status = entity.ProposalPending
		draft.Sightings = 1
		draft.CreatedAt = now
		draft.LastSeen = now
		draft.Context = []entity.Sighting{sighting}
		doc.Proposals = append(doc.Proposals, draft)
		result = cloneProposal(draft)
		return nil
	})
	if err != nil {
		return entity.Proposal{}, false, err
	}

	q.logger.Info("proposal_sighting",
		logging.String(logging.FieldEventType, "proposal_sighting"),
		logging.String(logging.FieldProposalID, result.ID),
		logging.String("raw_name", raw),
		logging.String("cleaned", names.Clean(raw)),
		logging.Bool("merged", merged),
		logging.Int("sightings", result.Sightings),
		logging.String("source_bookmaker", sighting.Source),
		logging.String("tournament", sighting.Tournament),
		logging.String("opponent_raw", sighting.Opponent),
		logging.String("event_time_utc", sighting.EventTime),
	)
	return result, merged, nil
}

// draft builds the guess and alias set for raw without touching the queue.
func (q *Queue) draft(raw string) entity.Proposal {
	p := entity.Proposal{RawSamples: []string{raw}}
	var aliases []string
	if q.domain == entity.Tournaments {
		p.CanonicalGuess = names.TitleName(raw)
		trimmed := strings.TrimSpace(raw)
		aliases = []string{trimmed, strings.ToLower(trimmed), p.CanonicalGuess, names.Fold(trimmed)}
	} else {
		guess := names.GuessName(raw)
		p.CanonicalGuess = guess.Canonical
		p.FirstNameGuess = guess.First
		p.LastNameGuess = guess.Last
		aliases = names.Variants(guess.First, guess.Last)
	}
	aliases = append(aliases, names.Keys(raw)...)
	p.Aliases = unionSorted(nil, aliases)
	return p
}

func findMatch(proposals []entity.Proposal, guess, rawKey string) int {
	foldedGuess := names.Fold(guess)
	for i, p := range proposals {
		if !p.Pending() {
			continue
		}
		if foldedGuess != "" && names.Fold(p.CanonicalGuess) == foldedGuess {
			return i
		}
		for _, sample := range p.RawSamples {
			if names.Key(sample) == rawKey {
				return i
			}
		}
	}
	return -1
}

// List returns the pending proposals in registration order.
func (q *Queue) List(ctx context.Context) ([]entity.Proposal, error) {
	doc, err := q.read()
	if err != nil {
		return nil, err
	}
	out := make([]entity.Proposal, 0, len(doc.Proposals))
	for _, p := range doc.Proposals {
		if p.Pending() {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns the proposal with id or an error wrapping entity.ErrNotFound.
func (q *Queue) Get(ctx context.Context, id string) (entity.Proposal, error) {
	doc, err := q.read()
	if err != nil {
		return entity.Proposal{}, err
	}
	for _, p := range doc.Proposals {
		if p.ID == id {
			return p, nil
		}
	}
	return entity.Proposal{}, fmt.Errorf("%s proposal %s: %w", q.domain, id, entity.ErrNotFound)
}

// Remove deletes the proposal with id.
func (q *Queue) Remove(ctx context.Context, id string) error {
	err := q.update(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Proposals, func(p entity.Proposal) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("%s proposal %s: %w", q.domain, id, entity.ErrNotFound)
		}
		doc.Proposals = slices.Delete(doc.Proposals, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	q.logger.Info("proposal removed", logging.String(logging.FieldProposalID, id))
	return nil
}

func (q *Queue) read() (*document, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("read %s proposals: %w", q.domain, err)
	}
	doc := &document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse %s proposals %s: %w", q.domain, q.path, err)
	}
	return doc, nil
}

func (q *Queue) update(ctx context.Context, fn func(*document) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("create proposals directory: %w", err)
	}
	locked, err := q.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s proposals: %w", q.domain, err)
	}
	if !locked {
		return fmt.Errorf("lock %s proposals: not acquired", q.domain)
	}
	defer func() { _ = q.lock.Unlock() }()

	doc, err := q.read()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	if doc.Proposals == nil {
		doc.Proposals = []entity.Proposal{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s proposals: %w", q.domain, err)
	}
	if err := fileutil.WriteAtomic(q.path, append(data, '\n'), q.backupKeep); err != nil {
		return fmt.Errorf("save %s proposals: %w", q.domain, err)
	}
	return nil
}

func unionSorted(existing, extra []string) []string {
	set := make(map[string]struct{}, len(existing)+len(extra))
	for _, v := range existing {
		set[v] = struct{}{}
	}
	for _, v := range extra {
		if strings.TrimSpace(v) != "" {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func cloneProposal(p entity.Proposal) entity.Proposal {
	p.RawSamples = slices.Clone(p.RawSamples)
	p.Aliases = slices.Clone(p.Aliases)
	p.Context = slices.Clone(p.Context)
	return p
}
