// Package selftest measures how well the player resolver recognizes the
// spellings bookmakers typically print.
//
// For a slice of the corpus it generates a bounded set of realistic variants
// per record and probes each through the resolver without healing and
// without registering proposals, so a run never changes any store. Misses
// are collected and can be written as CSV.
package selftest
