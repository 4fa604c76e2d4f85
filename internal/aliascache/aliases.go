package aliascache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
)

// Get returns the id bound to key. Empty keys are never found.
func (s *Store) Get(ctx context.Context, d entity.Domain, key string) (int64, bool, error) {
	if key == "" {
		return 0, false, nil
	}
	t, err := tableFor(d)
	if err != nil {
		return 0, false, err
	}
	ctx = ensureContext(ctx)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE alias = ?", t.idColumn, t.name)
	var id int64
	err = retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, query, key).Scan(&id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %s alias: %w", d, err)
	}
	return id, true, nil
}

// UpsertMany binds every pair in one transaction, overwriting existing
// bindings. Pairs with empty keys are skipped; when a key repeats within the
// batch the last pair wins. It returns the number of rows written.
func (s *Store) UpsertMany(ctx context.Context, d entity.Domain, pairs []entity.Pair) (int, error) {
	t, err := tableFor(d)
	if err != nil {
		return 0, err
	}
	batch := dedupePairs(pairs)
	if len(batch) == 0 {
		return 0, nil
	}
	ctx = ensureContext(ctx)

	query := fmt.Sprintf(
		"INSERT INTO %[1]s (alias, %[2]s) VALUES (?, ?) ON CONFLICT(alias) DO UPDATE SET %[2]s = excluded.%[2]s",
		t.name, t.idColumn,
	)
	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range batch {
			if _, err := stmt.ExecContext(ctx, p.Key, p.ID); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("upsert %s aliases: %w", d, err)
	}
	s.logger.Debug("aliases upserted",
		logging.String(logging.FieldDomain, d.String()),
		logging.Int("rows", len(batch)),
	)
	return len(batch), nil
}

// Count returns the number of alias rows in the domain's table.
func (s *Store) Count(ctx context.Context, d entity.Domain) (int, error) {
	t, err := tableFor(d)
	if err != nil {
		return 0, err
	}
	ctx = ensureContext(ctx)
	var n int
	err = retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+t.name).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count %s aliases: %w", d, err)
	}
	return n, nil
}

// Export returns every alias row ordered by key.
func (s *Store) Export(ctx context.Context, d entity.Domain) ([]entity.Pair, error) {
	t, err := tableFor(d)
	if err != nil {
		return nil, err
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT alias, %s FROM %s ORDER BY alias", t.idColumn, t.name))
	if err != nil {
		return nil, fmt.Errorf("export %s aliases: %w", d, err)
	}
	defer rows.Close()

	var out []entity.Pair
	for rows.Next() {
		var p entity.Pair
		if err := rows.Scan(&p.Key, &p.ID); err != nil {
			return nil, fmt.Errorf("scan %s alias: %w", d, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("export %s aliases: %w", d, err)
	}
	return out, nil
}

func dedupePairs(pairs []entity.Pair) []entity.Pair {
	index := make(map[string]int, len(pairs))
	out := make([]entity.Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.Key == "" {
			continue
		}
		if i, ok := index[p.Key]; ok {
			out[i].ID = p.ID
			continue
		}
		index[p.Key] = len(out)
		out = append(out, p)
	}
	return out
}
