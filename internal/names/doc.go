// Package names turns raw bookmaker strings into display names, lookup keys,
// and ordered alternate spellings.
//
// Clean removes feed noise (seed markers, country codes, status tags, emoji)
// and is idempotent. Fold lowercases and strips diacritics. Key composes the
// two and is the only form written to the alias cache. Candidates derives
// the ordered spellings the resolver probes when a direct lookup misses:
// comma inversion, hyphenated given names, and particle-aware surname
// segmentation. Every function is total; degenerate input yields an empty
// result instead of an error.
package names
