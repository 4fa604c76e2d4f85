// Package proposals keeps the review queue of names that resolved to no
// known entity.
//
// A registration either merges into a pending proposal (same folded
// canonical guess, or a raw sample with the same lookup key) or appends a
// new one. Merging bumps the sighting count, unions raw samples in first-seen
// order, unions the alias set, and appends the sighting context. The alias
// set always contains the lookup keys of every raw sample so approval can
// bind them directly.
//
// The queue is a JSON document {proposals: [...]} written under an exclusive
// file lock with the same atomic replace-and-backup discipline as the corpus.
package proposals
