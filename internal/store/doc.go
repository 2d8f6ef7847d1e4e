// Package store provides SQLite-backed storage for scenario run reports.
//
// The store keeps three append-only tables:
//   - runs: one row per scenario run, keyed by a UUIDv7 id
//   - check_results: one row per evaluated check
//   - assertion_errors: one row per failed predicate
//
// # Ordering
//
// Runs carry a seq INTEGER assigned at write time. All queries order by seq
// (runs) or idx (checks and errors), never by wall time or id, so listings
// are identical across reads.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
