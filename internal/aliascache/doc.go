// Package aliascache persists the exact-match alias tables in SQLite.
//
// Each domain owns one table mapping a normalized alias key to an entity id.
// Writes are idempotent upserts where the last write wins; healing and
// re-seeding rely on that. The database runs in WAL mode so readers never
// wait on a writer longer than a single statement, and batches commit in one
// transaction so a crash leaves either all or none of a batch.
//
// The table layout matches caches written by earlier tooling, so an existing
// aliases_kv.sqlite file opens without migration; the schema_version table
// is added on first open.
package aliascache
