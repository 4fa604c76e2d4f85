// Package workspace opens every store named by a configuration and wires the
// per-domain resolvers and the review service on top of them.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"

	"oddsmap/internal/aliascache"
	"oddsmap/internal/config"
	"oddsmap/internal/corpus"
	"oddsmap/internal/entity"
	"oddsmap/internal/index"
	"oddsmap/internal/logging"
	"oddsmap/internal/proposals"
	"oddsmap/internal/resolver"
	"oddsmap/internal/review"
)

// Domain holds the stores and resolver of one domain.
type Domain struct {
	Corpus   *corpus.Store
	Queue    *proposals.Queue
	Index    *index.Index
	Resolver *resolver.Resolver
}

// Workspace is an opened set of stores. Close releases the alias database.
type Workspace struct {
	Config  *config.Config
	Aliases *aliascache.Store

	domains map[entity.Domain]*Domain
	review  *review.Service
	base    *slog.Logger
	logger  *slog.Logger
}

// Open creates missing directories and opens the alias cache, corpora and
// queues named by cfg.
func Open(cfg *config.Config, logger *slog.Logger) (*Workspace, error) {
	if cfg == nil {
		return nil, errors.New("workspace: config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	aliases, err := aliascache.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open alias cache: %w", err)
	}

	ws := &Workspace{
		Config:  cfg,
		Aliases: aliases,
		domains: make(map[entity.Domain]*Domain, len(entity.Domains())),
		base:    logger,
		logger:  logging.NewComponentLogger(logger, "workspace"),
	}
	reviewStores := make(map[entity.Domain]review.Stores, len(entity.Domains()))
	for _, d := range entity.Domains() {
		store := corpus.New(d, cfg.CorpusPath(d), cfg.Storage.BackupKeep, logger)
		queue := proposals.New(d, cfg.QueuePath(d), cfg.Storage.BackupKeep, logger)
		idx := index.New(store, index.KeysFor(d), logger)
		ws.domains[d] = &Domain{
			Corpus: store,
			Queue:  queue,
			Index:  idx,
			Resolver: resolver.New(d, resolver.Deps{
				Aliases:   aliases,
				Index:     idx,
				Records:   store,
				Proposals: queue,
			}, logger),
		}
		reviewStores[d] = review.Stores{Corpus: store, Queue: queue, Index: idx}
	}
	ws.review = review.New(aliases, reviewStores, logger)

	ws.logger.Debug("workspace opened",
		logging.String("alias_db", cfg.Paths.AliasDB),
		logging.String("players_db", cfg.Paths.PlayersDB),
		logging.String("tournaments_db", cfg.Paths.TournamentsDB),
	)
	return ws, nil
}

// Domain returns the stores of d.
func (w *Workspace) Domain(d entity.Domain) (*Domain, error) {
	dom, ok := w.domains[d]
	if !ok {
		return nil, fmt.Errorf("domain %q is not configured", d)
	}
	return dom, nil
}

// Players returns the player domain.
func (w *Workspace) Players() *Domain { return w.domains[entity.Players] }

// Tournaments returns the tournament domain.
func (w *Workspace) Tournaments() *Domain { return w.domains[entity.Tournaments] }

// Review returns the review service over the workspace stores.
func (w *Workspace) Review() *review.Service { return w.review }

// Logger returns the logger the workspace was opened with.
func (w *Workspace) Logger() *slog.Logger { return w.base }

// Close closes the alias database.
func (w *Workspace) Close() error {
	if w == nil || w.Aliases == nil {
		return nil
	}
	return w.Aliases.Close()
}
