// Package store provides the persistence layer for ShowcaseDB.
//
// The persistence layer is backed by DuckDB, an embedded analytical SQL
// engine, accessed through database/sql. A Store wraps one database
// handle with an explicit open/close lifecycle; there is no ambient
// global database state.
//
// # Memory Store
//
// For testing or ephemeral databases:
//
//	st, err := store.NewMemoryStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
// # File Store
//
// For persistent storage:
//
//	st, err := store.NewFileStore("/path/to/showcase.duckdb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
// # Schema
//
// Setup creates the full showcase schema (sequences, tables, indexes,
// views) idempotently; "already exists" conflicts are treated as no-ops
// so re-initialization is always safe.
//
// # Hooks
//
// DuckDB has no triggers, so the trigger-enforced invariants of the
// schema (audit on user update, stock decrement on line-item insert,
// order deletion guard) are application-level hooks: Go functions
// invoked at the same logical points, inside the same transaction as
// the mutation they accompany.
package store
