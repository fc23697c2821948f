// Package ir provides the canonical record types shared by the engine,
// store, compiler and harness.
//
// This package contains type definitions and serialization only. All other
// internal packages import ir; ir imports nothing internal, so it stays the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float values anywhere - integers are int64 in JSON, int32 in records
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
//   - Record IDs are content-addressed (SHA-256 over RFC 8785 canonical JSON)
package ir
