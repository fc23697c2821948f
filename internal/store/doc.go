// Package store provides SQLite-backed durable storage for primops run logs.
//
// The store implements an append-only log with:
//   - Invocations: one row per operation call (op, lhs, rhs)
//   - Completions: exactly one outcome per invocation
//
// # Ordering
//
// All ordering uses the seq INTEGER logical clock, never timestamps.
// Every multi-row query orders by seq ASC, id COLLATE BINARY ASC so that
// reads are identical across replays.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Record IDs are computed by internal/ir/hash.go and stored as given.
package store
