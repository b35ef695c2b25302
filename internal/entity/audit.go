package entity

import "time"

// Audit is the quartet of revision columns shared by every table.
// All four are optional: a row inserted by replication may carry only
// the remote creation stamp, and a row that was never updated after
// insert has no modification stamp at all.
type Audit struct {
	CreatedBy  *string    `json:"created_by,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	ModifiedBy *string    `json:"modified_by,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// LastTouched returns the most recent of the two audit timestamps,
// or nil if the row carries neither.
func (a *Audit) LastTouched() *time.Time {
	switch {
	case a.ModifiedAt == nil:
		return a.CreatedAt
	case a.CreatedAt == nil:
		return a.ModifiedAt
	case a.ModifiedAt.After(*a.CreatedAt):
		return a.ModifiedAt
	default:
		return a.CreatedAt
	}
}

// SetCreated stamps the creation pair.
func (a *Audit) SetCreated(by string, at time.Time) {
	a.CreatedBy = &by
	a.CreatedAt = &at
}

// SetModified stamps the modification pair.
func (a *Audit) SetModified(by string, at time.Time) {
	a.ModifiedBy = &by
	a.ModifiedAt = &at
}

// CopyFrom takes over all four fields from another quartet.
func (a *Audit) CopyFrom(o Audit) {
	*a = o
}

// Revision is the audit capability. Any row wanting audit semantics
// exposes its quartet through it; the repository layer operates
// generically on the interface instead of per-type accessors.
type Revision interface {
	Revision() *Audit
}
