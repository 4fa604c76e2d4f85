// Package logging assembles structured slog loggers and formatting helpers used
// across oddsmap.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so a resolution run can tag its
// log lines with a run identifier. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits the same field names (component, domain, proposal_id, entity_id).
package logging
