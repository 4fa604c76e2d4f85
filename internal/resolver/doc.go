// Package resolver turns a raw bookmaker name into a canonical id.
//
// Resolution is ordered: the alias cache on the cleaned and folded input,
// then the cache on each generated candidate, then the in-memory index on the
// input and on each candidate. A hit found past the first step heals the
// cache with the input and the winning spelling so the next identical lookup
// is a single cache read. The index is never consulted before every cache
// probe has missed.
//
// Tournaments take the short path: cache, then index on the name itself.
package resolver
