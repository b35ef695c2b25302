package entity

import "fmt"

// Table tags. These are the names used in the schema, in the undo log
// and on the replication wire, so they never change casing.
const (
	TableTenant    = "MA_Mandant"
	TableUser      = "Benutzer"
	TableParameter = "MA_Parameter"
	TableDiary     = "TB_Eintrag"
	TablePlace     = "TB_Ort"
	TablePerson    = "AD_Person"
)

// Row is implemented by every persisted record.
type Row interface {
	Revision
	// TableName returns the table tag the row belongs to.
	TableName() string
	// Key returns the primary-key tuple in a canonical textual form.
	Key() string
	// Tenant returns the owning tenant number.
	Tenant() int
	// BusinessEqual compares payload columns only; audit fields and
	// the replication UID are excluded.
	BusinessEqual(other Row) bool
	// Clone returns an independent owned copy.
	Clone() Row
}

// Tenant is a top-level partition of all domain data (MA_Mandant).
type Tenant struct {
	Nr           int    `json:"nr"`
	Beschreibung string `json:"beschreibung"`
	Audit
}

func (t *Tenant) TableName() string { return TableTenant }
func (t *Tenant) Key() string       { return fmt.Sprintf("%d", t.Nr) }
func (t *Tenant) Tenant() int       { return t.Nr }
func (t *Tenant) Revision() *Audit  { return &t.Audit }

func (t *Tenant) BusinessEqual(other Row) bool {
	o, ok := other.(*Tenant)
	if !ok {
		return false
	}
	return t.Nr == o.Nr && t.Beschreibung == o.Beschreibung
}

func (t *Tenant) Clone() Row {
	c := *t
	c.Audit = cloneAudit(t.Audit)
	return &c
}
