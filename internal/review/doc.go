// Package review implements the administrative operations around the
// resolver's stores: seeding the alias cache from the corpus, inspecting the
// proposal queue, and disposing of proposals.
//
// # Alias migration
//
// Approve and duplicate decisions migrate a proposal's aliases into the cache
// without clobbering. Each alias is written in its cleaned and folded forms,
// and only where the cache has no binding yet. A key already bound to a
// different id is left alone and counted as a conflict.
//
// # Ordering
//
// ApproveAsNew creates the record first, migrates aliases second and removes
// the proposal last, so an interrupted approval leaves the proposal visible
// for another attempt.
package review
