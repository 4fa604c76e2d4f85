// Package corpus stores the canonical records of one domain as a JSON
// document of shape {meta: {schema_version, db_version, next_id}, data: {id: record}}.
//
// Reads are served from an in-memory copy loaded on first use. Every write
// takes an exclusive file lock, re-reads the document from disk, applies the
// change, and replaces the file atomically with a timestamped backup of the
// previous version. next_id only moves forward: it is repaired to max(id)+1
// when missing or stale, and administrative overrides below that bound are
// rejected.
package corpus
