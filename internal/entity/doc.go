// Package entity defines the records shared by the resolver, its stores, and
// the review surface.
//
// Two domains exist, players and tournaments, and each owns a disjoint alias
// keyspace, a canonical corpus, and a proposal queue. Records decode from the
// corpus document with optional fields; DisplayName applies the canonical-name
// fallback so callers never repeat it.
package entity
