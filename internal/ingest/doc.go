// Package ingest maps bookmaker match listings onto canonical ids.
//
// Each match normalizes its tournament once and each competitor once, with
// per-run memos so a player listed in many markets reaches the stores a
// single time. Competitors that do not resolve are registered as proposals.
// Market selections are matched against the competitors first and otherwise
// looked up without registering, so selection text never opens review items.
//
// Fetching listings and exporting rows happen outside this package.
package ingest
