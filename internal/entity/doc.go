// Package entity defines the persisted row types of the homebook core.
//
// Every table shares the same shape: a composite primary key starting
// with the tenant number, typed payload columns, the audit quartet
// (created-by/at, modified-by/at) and, for replicated tables, an
// opaque replication UID.
//
// Two relations matter for the rest of the system:
//
//   - Business equality (BusinessEqual): payload-only comparison that
//     ignores audit fields and the replication UID. The repository
//     layer uses it to suppress no-op writes; the replication merger
//     uses it to detect identical rows.
//   - The audit capability (Revision): access to the audit quartet.
//     The repository layer populates it generically for any row type.
//
// Rows serialise losslessly to JSON images for the undo log. Decode
// recovers a typed row from a table tag plus image, forming the
// tagged union the undo engine dispatches on.
package entity
