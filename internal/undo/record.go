// Package undo holds the process-wide undo/redo stack.
//
// Each committed transaction contributes one Batch: the ordered list
// of before/after row images produced by its repository calls. The
// stack itself is pure bookkeeping; applying a batch against the
// database is the job of the repository layer's replayer.
package undo

import "encoding/json"

// Kind classifies a change record by which images it carries.
type Kind int

const (
	// KindInsert is (nil before, after).
	KindInsert Kind = iota
	// KindUpdate is (before, after).
	KindUpdate
	// KindDelete is (before, nil after).
	KindDelete
)

// String returns the kind as a string.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Record is one mutation inside a committed transaction. Images are
// serialised row snapshots; the table tag recovers the concrete type.
type Record struct {
	Table  string          `json:"table"`
	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`
}

// Kind derives the mutation kind from which images are present.
func (r Record) Kind() Kind {
	switch {
	case r.Before == nil:
		return KindInsert
	case r.After == nil:
		return KindDelete
	default:
		return KindUpdate
	}
}

// Batch is the ordered change list of one committed transaction.
// Order is the execution order of the repository calls (forward
// replay order).
type Batch struct {
	Records []Record
}

// Append adds a record to the batch.
func (b *Batch) Append(table string, before, after json.RawMessage) {
	b.Records = append(b.Records, Record{Table: table, Before: before, After: after})
}

// Empty reports whether the batch recorded no mutations.
func (b *Batch) Empty() bool { return len(b.Records) == 0 }

// Len returns the number of records.
func (b *Batch) Len() int { return len(b.Records) }
