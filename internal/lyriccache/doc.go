// Package lyriccache persists resolved reference text in SQLite so repeat jobs
// for the same song skip the provider chain.
//
// The store mirrors the queue database conventions used elsewhere: WAL
// journaling, a busy timeout, bounded retries on SQLITE_BUSY, and a
// schema_version table that must match the compiled-in version.
package lyriccache
