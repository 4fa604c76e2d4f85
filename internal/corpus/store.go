package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"oddsmap/internal/entity"
	"oddsmap/internal/fileutil"
	"oddsmap/internal/logging"
)

const lockRetryDelay = 25 * time.Millisecond

// ErrNextIDRegression is returned when an override would let next_id hand
// out an id that is already taken.
var ErrNextIDRegression = errors.New("next_id must exceed every existing id")

// Store is the canonical corpus of one domain.
type Store struct {
	domain     entity.Domain
	path       string
	backupKeep int
	lock       *flock.Flock
	logger     *slog.Logger
	now        func() time.Time

	mu  sync.Mutex
	doc *document
}

// New returns a store for the document at path. Nothing is read until the
// first access.
func New(d entity.Domain, path string, backupKeep int, logger *slog.Logger) *Store {
	return &Store{
		domain:     d,
		path:       path,
		backupKeep: backupKeep,
		lock:       flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "corpus").With(
			logging.String(logging.FieldDomain, d.String()),
		),
		now: time.Now,
	}
}

// Domain reports which domain the store holds.
func (s *Store) Domain() entity.Domain { return s.domain }

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Records returns every record ordered by ascending id.
func (s *Store) Records(ctx context.Context) ([]entity.Record, error) {
	doc, err := s.current()
	if err != nil {
		return nil, err
	}
	return doc.sorted(), nil
}

// Get returns the record with id.
func (s *Store) Get(ctx context.Context, id int64) (entity.Record, bool, error) {
	doc, err := s.current()
	if err != nil {
		return entity.Record{}, false, err
	}
	rec, ok := doc.Records[id]
	return rec, ok, nil
}

// Meta returns the document header with next_id already repaired.
func (s *Store) Meta(ctx context.Context) (Meta, error) {
	doc, err := s.current()
	if err != nil {
		return Meta{}, err
	}
	return doc.Meta, nil
}

// Count returns the number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	doc, err := s.current()
	if err != nil {
		return 0, err
	}
	return len(doc.Records), nil
}

// Reload drops the in-memory copy so the next access re-reads the file.
func (s *Store) Reload() {
	s.mu.Lock()
	s.doc = nil
	s.mu.Unlock()
}

// Create allocates the next id for rec, stores it, and returns it with the
// id set.
func (s *Store) Create(ctx context.Context, rec entity.Record) (entity.Record, error) {
	err := s.update(ctx, func(doc *document) error {
		rec.ID = doc.Meta.NextID
		if _, taken := doc.Records[rec.ID]; taken {
			return fmt.Errorf("allocate %s id %d: already in use", s.domain, rec.ID)
		}
		doc.Records[rec.ID] = rec
		doc.Meta.NextID = rec.ID + 1
		doc.Meta.DBVersion = s.domain.String() + "-" + s.now().UTC().Format("20060102")
		return nil
	})
	if err != nil {
		return entity.Record{}, err
	}
	s.logger.Info("canonical record created",
		logging.Int64(logging.FieldEntityID, rec.ID),
		logging.String("canonical_name", rec.DisplayName()),
	)
	return rec, nil
}

// SetNextID overrides the id counter. The counter only moves forward:
// values below the current next_id, or at or below the highest existing id,
// fail with ErrNextIDRegression.
func (s *Store) SetNextID(ctx context.Context, next int64) (Meta, error) {
	var meta Meta
	err := s.update(ctx, func(doc *document) error {
		if highest := doc.maxID(); next <= highest {
			return fmt.Errorf("%w: requested %d, highest %s id is %d", ErrNextIDRegression, next, s.domain, highest)
		}
		if next < doc.Meta.NextID {
			return fmt.Errorf("%w: requested %d, current %s next_id is %d", ErrNextIDRegression, next, s.domain, doc.Meta.NextID)
		}
		if next < 1 {
			return fmt.Errorf("%w: requested %d", ErrNextIDRegression, next)
		}
		doc.Meta.NextID = next
		meta = doc.Meta
		return nil
	})
	if err != nil {
		return Meta{}, err
	}
	s.logger.Info("next_id overridden", logging.Int64("next_id", next))
	return meta, nil
}

func (s *Store) current() (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil {
		return s.doc, nil
	}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	s.doc = doc
	s.logger.Debug("corpus loaded", logging.Int("records", len(doc.Records)), logging.String("path", s.path))
	return doc, nil
}

func (s *Store) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s corpus: %w", s.domain, err)
	}
	doc, err := decodeDocument(s.domain, data)
	if err != nil {
		return nil, fmt.Errorf("%s corpus %s: %w", s.domain, s.path, err)
	}
	return doc, nil
}

// update runs fn against a fresh copy of the on-disk document while holding
// the file lock, then persists the result.
func (s *Store) update(ctx context.Context, fn func(*document) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s corpus: %w", s.domain, err)
	}
	if !locked {
		return fmt.Errorf("lock %s corpus: not acquired", s.domain)
	}
	defer func() { _ = s.lock.Unlock() }()

	s.mu.Lock()
	defer s.mu.Unlock()

	fresh, err := s.read()
	if err != nil {
		return err
	}
	working := fresh.clone()
	if err := fn(working); err != nil {
		return err
	}
	data, err := working.encode()
	if err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(s.path, data, s.backupKeep); err != nil {
		return fmt.Errorf("save %s corpus: %w", s.domain, err)
	}
	s.doc = working
	return nil
}
