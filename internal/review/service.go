package review

import (
	"context"
	"fmt"
	"log/slog"

	"oddsmap/internal/corpus"
	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
)

// AliasStore is the subset of the alias cache used by review operations.
type AliasStore interface {
	Get(ctx context.Context, d entity.Domain, key string) (int64, bool, error)
	UpsertMany(ctx context.Context, d entity.Domain, pairs []entity.Pair) (int, error)
	Count(ctx context.Context, d entity.Domain) (int, error)
}

// Corpus is the canonical record store of one domain.
type Corpus interface {
	Records(ctx context.Context) ([]entity.Record, error)
	Get(ctx context.Context, id int64) (entity.Record, bool, error)
	Create(ctx context.Context, rec entity.Record) (entity.Record, error)
	Meta(ctx context.Context) (corpus.Meta, error)
	SetNextID(ctx context.Context, next int64) (corpus.Meta, error)
}

// Queue is the proposal queue of one domain.
type Queue interface {
	List(ctx context.Context) ([]entity.Proposal, error)
	Get(ctx context.Context, id string) (entity.Proposal, error)
	Remove(ctx context.Context, id string) error
}

// IndexResetter invalidates a built name index.
type IndexResetter interface {
	Reset()
}

// Stores groups the per-domain stores. Index may be nil.
type Stores struct {
	Corpus Corpus
	Queue  Queue
	Index  IndexResetter
}

// Service runs review operations across domains.
type Service struct {
	aliases AliasStore
	domains map[entity.Domain]Stores
	logger  *slog.Logger
}

// New returns a Service over the given stores.
func New(aliases AliasStore, domains map[entity.Domain]Stores, logger *slog.Logger) *Service {
	return &Service{
		aliases: aliases,
		domains: domains,
		logger:  logging.NewComponentLogger(logger, "review"),
	}
}

func (s *Service) stores(d entity.Domain) (Stores, error) {
	st, ok := s.domains[d]
	if !ok || st.Corpus == nil || st.Queue == nil {
		return Stores{}, fmt.Errorf("domain %q is not configured", d)
	}
	return st, nil
}

func (s *Service) domainLogger(ctx context.Context, d entity.Domain) *slog.Logger {
	return logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldDomain, d.String()))
}

// ListPending returns the pending proposals of d.
func (s *Service) ListPending(ctx context.Context, d entity.Domain) ([]entity.Proposal, error) {
	st, err := s.stores(d)
	if err != nil {
		return nil, err
	}
	return st.Queue.List(ctx)
}

// ShowPending returns one proposal or an error wrapping entity.ErrNotFound.
func (s *Service) ShowPending(ctx context.Context, d entity.Domain, id string) (entity.Proposal, error) {
	st, err := s.stores(d)
	if err != nil {
		return entity.Proposal{}, err
	}
	return st.Queue.Get(ctx, id)
}

// Meta returns the corpus header of d.
func (s *Service) Meta(ctx context.Context, d entity.Domain) (corpus.Meta, error) {
	st, err := s.stores(d)
	if err != nil {
		return corpus.Meta{}, err
	}
	return st.Corpus.Meta(ctx)
}

// SetNextID overrides the id counter of d.
func (s *Service) SetNextID(ctx context.Context, d entity.Domain, next int64) (corpus.Meta, error) {
	st, err := s.stores(d)
	if err != nil {
		return corpus.Meta{}, err
	}
	return st.Corpus.SetNextID(ctx, next)
}

// AliasCount is the number of cached aliases of one domain.
type AliasCount struct {
	Domain entity.Domain `json:"domain"`
	Rows   int           `json:"rows"`
}

// AliasCounts returns the row count of every domain's alias keyspace.
func (s *Service) AliasCounts(ctx context.Context) ([]AliasCount, error) {
	out := make([]AliasCount, 0, len(entity.Domains()))
	for _, d := range entity.Domains() {
		n, err := s.aliases.Count(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, AliasCount{Domain: d, Rows: n})
	}
	return out, nil
}
