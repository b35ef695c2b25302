// Package repo implements the per-table repositories.
//
// Every repository offers the same surface: Get, List, Insert, Update,
// Delete and Save. Insert/Update/Delete write the row verbatim and
// fail with NotFound when the driver reports zero affected rows; Save
// is the upsert primitive that populates audit fields under the
// change-window rule and suppresses writes for business-equal rows.
//
// Each successful mutation appends a before/after image pair to the
// scope's pending batch, which becomes one undo group on commit. The
// replayer in this package applies those groups inversely (undo) or
// forward (redo) inside a fresh silent scope.
package repo
