// Package sqlite keeps the extraction history ledger in a SQLite file at
// <data_dir>/history.db, using the pure Go modernc.org/sqlite driver.
//
// Each finished subtype of an extraction run is one row. The schema is
// created by the embedded migrations in migrations/, applied in version
// order on open and tracked in a schema_migrations table.
//
// The database runs in WAL mode with a busy timeout, so "history" can read
// while an extraction is writing.
package sqlite
