package review

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"oddsmap/internal/entity"
	"oddsmap/internal/logging"
	"oddsmap/internal/names"
)

const unknownField = "Unknown"

// ApproveOutcome reports a proposal approved as a new entity.
type ApproveOutcome struct {
	Record         entity.Record `json:"record"`
	AliasesAdded   int           `json:"aliases_added"`
	AliasConflicts int           `json:"alias_conflicts"`
}

// DuplicateAction names what MarkDuplicate did with the proposal.
type DuplicateAction string

const DuplicateActionDuplicate DuplicateAction = "duplicate"

// DuplicateOutcome reports a proposal folded into an existing entity.
type DuplicateOutcome struct {
	Action         DuplicateAction `json:"action"`
	ExistingID     int64           `json:"existing_id"`
	MergedAliases  bool            `json:"merged_aliases"`
	AliasesAdded   int             `json:"aliases_added"`
	AliasConflicts int             `json:"alias_conflicts"`
}

// ApproveAsNew creates a canonical record from proposal id, filled from the
// proposal's guess wherever fields leaves a name empty, migrates the
// proposal's aliases to the new id and removes the proposal.
func (s *Service) ApproveAsNew(ctx context.Context, d entity.Domain, id string, fields entity.Record) (ApproveOutcome, error) {
	st, err := s.stores(d)
	if err != nil {
		return ApproveOutcome{}, err
	}
	p, err := st.Queue.Get(ctx, id)
	if err != nil {
		return ApproveOutcome{}, err
	}

	rec, err := st.Corpus.Create(ctx, recordFromProposal(d, p, fields))
	if err != nil {
		return ApproveOutcome{}, fmt.Errorf("create %s record: %w", d, err)
	}
	added, conflicts, err := s.migrateAliases(ctx, d, append(slices.Clone(p.Aliases), rec.DisplayName()), rec.ID)
	if err != nil {
		return ApproveOutcome{}, err
	}
	if err := st.Queue.Remove(ctx, id); err != nil {
		return ApproveOutcome{}, err
	}
	if st.Index != nil {
		st.Index.Reset()
	}

	s.domainLogger(ctx, d).Info("proposal approved",
		logging.String(logging.FieldEventType, "proposal_approved"),
		logging.String(logging.FieldProposalID, id),
		logging.Int64(logging.FieldEntityID, rec.ID),
		logging.String("canonical_name", rec.DisplayName()),
		logging.Int("aliases_added", added),
		logging.Int("alias_conflicts", conflicts),
	)
	return ApproveOutcome{Record: rec, AliasesAdded: added, AliasConflicts: conflicts}, nil
}

// MarkDuplicate removes proposal id as a duplicate of existingID. With
// mergeAliases the proposal's aliases are migrated to existingID first, which
// must then name an existing record.
func (s *Service) MarkDuplicate(ctx context.Context, d entity.Domain, id string, existingID int64, mergeAliases bool) (DuplicateOutcome, error) {
	st, err := s.stores(d)
	if err != nil {
		return DuplicateOutcome{}, err
	}
	p, err := st.Queue.Get(ctx, id)
	if err != nil {
		return DuplicateOutcome{}, err
	}

	out := DuplicateOutcome{Action: DuplicateActionDuplicate, ExistingID: existingID, MergedAliases: mergeAliases}
	if mergeAliases {
		if _, found, err := st.Corpus.Get(ctx, existingID); err != nil {
			return DuplicateOutcome{}, err
		} else if !found {
			return DuplicateOutcome{}, fmt.Errorf("%s record %d: %w", d, existingID, entity.ErrNotFound)
		}
		out.AliasesAdded, out.AliasConflicts, err = s.migrateAliases(ctx, d, p.Aliases, existingID)
		if err != nil {
			return DuplicateOutcome{}, err
		}
	}
	if err := st.Queue.Remove(ctx, id); err != nil {
		return DuplicateOutcome{}, err
	}

	s.domainLogger(ctx, d).Info("proposal marked duplicate",
		logging.String(logging.FieldEventType, "proposal_duplicate"),
		logging.String(logging.FieldProposalID, id),
		logging.Int64(logging.FieldEntityID, existingID),
		logging.Bool("merged_aliases", mergeAliases),
		logging.Int("aliases_added", out.AliasesAdded),
		logging.Int("alias_conflicts", out.AliasConflicts),
	)
	return out, nil
}

// migrateAliases binds each alias key that is unbound to target. Keys bound
// to target already are left as they are; keys bound elsewhere are counted
// as conflicts.
func (s *Service) migrateAliases(ctx context.Context, d entity.Domain, aliases []string, target int64) (int, int, error) {
	seen := make(map[string]struct{})
	var (
		pairs     []entity.Pair
		conflicts int
	)
	for _, alias := range aliases {
		for _, key := range names.Keys(alias) {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			existing, ok, err := s.aliases.Get(ctx, d, key)
			if err != nil {
				return 0, 0, err
			}
			switch {
			case !ok:
				pairs = append(pairs, entity.Pair{Key: key, ID: target})
			case existing != target:
				conflicts++
				logging.WarnWithContext(s.domainLogger(ctx, d), "alias bound to another entity", "alias_conflict",
					logging.String("alias", key),
					logging.Int64("bound_id", existing),
					logging.Int64(logging.FieldEntityID, target),
					logging.String(logging.FieldErrorHint, "resolve the conflicting binding manually if it is wrong"),
					logging.String(logging.FieldImpact, "alias kept on its existing entity"),
				)
			}
		}
	}
	if len(pairs) == 0 {
		return 0, conflicts, nil
	}
	written, err := s.aliases.UpsertMany(ctx, d, pairs)
	if err != nil {
		return 0, 0, fmt.Errorf("migrate %s aliases: %w", d, err)
	}
	return written, conflicts, nil
}

func recordFromProposal(d entity.Domain, p entity.Proposal, fields entity.Record) entity.Record {
	rec := fields
	rec.ID = 0
	if d == entity.Tournaments {
		rec.FirstName, rec.LastName = "", ""
		rec.Gender, rec.PreferredHand = "", ""
		if strings.TrimSpace(rec.CanonicalName) == "" {
			rec.CanonicalName = p.CanonicalGuess
		}
		rec.Level = defaultString(rec.Level, unknownField)
		rec.Surface = defaultString(rec.Surface, unknownField)
		return rec
	}

	rec.Level, rec.Country, rec.City, rec.Surface = "", "", "", ""
	nameGiven := strings.TrimSpace(rec.FirstName) != "" || strings.TrimSpace(rec.LastName) != ""
	if !nameGiven {
		rec.FirstName = p.FirstNameGuess
		rec.LastName = p.LastNameGuess
	}
	if strings.TrimSpace(rec.CanonicalName) == "" {
		if nameGiven {
			rec.CanonicalName = strings.TrimSpace(rec.FirstName + " " + rec.LastName)
		} else {
			rec.CanonicalName = p.CanonicalGuess
		}
	}
	rec.PreferredHand = defaultString(rec.PreferredHand, unknownField)
	return rec
}

func defaultString(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
