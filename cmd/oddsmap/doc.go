// Package main hosts the oddsmap CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the review surface over the alias
// cache, canonical corpora and proposal queues: seeding, listing and
// disposing of proposals, id counter maintenance, ad-hoc resolution, the
// resolver self test, and offline ingestion of match listings. Configuration
// resolution and logging setup live here so subcommands only wire flags to
// the internal services.
package main
