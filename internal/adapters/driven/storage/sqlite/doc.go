// Package sqlite provides a SQLite-backed implementation of driven.BlobCache.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// needs no CGO. Fetched payloads are keyed by their blob URL, which is
// content addressed, so entries never need invalidation.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.reposcope/cache.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. SQLite runs in WAL mode with a
// busy timeout so readers never block the writer.
package sqlite
