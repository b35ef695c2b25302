// Package store provides the SQLite-backed persistence core.
//
// The database is a single file opened with:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - a single open connection: SQLite serialises writers anyway, and
//     the undo history requires that commit order equals push order
//
// Every mutating service call runs inside a Scope created by Runner.
// The scope carries the driver transaction, the session identity, the
// per-call "now" (second granularity, constant through the call) and
// the pending change batch. On commit the batch is pushed onto the
// process-wide undo stack; on rollback it is discarded. The stack is
// never touched on failure.
package store
