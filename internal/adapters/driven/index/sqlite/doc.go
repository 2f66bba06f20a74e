// Package sqlite provides a SQLite full-text implementation of driven.Index
// and driven.FilingCatalog.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunk text is indexed with FTS5 and
// ranked with BM25; the structured metadata columns back the sub-query filters.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.filings/data/filings.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
