package entity

import "fmt"

// Gender codes for AD_Person rows.
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

// Person is an address-book person (AD_Person).
type Person struct {
	MandantNr      int     `json:"mandant_nr"`
	UID            string  `json:"uid"`
	Name           string  `json:"name"`
	Vorname        *string `json:"vorname,omitempty"`
	Geburt         *Date   `json:"geburt,omitempty"`
	Geschlecht     int     `json:"geschlecht"`
	Notiz          *string `json:"notiz,omitempty"`
	ReplikationUID *string `json:"replikation_uid,omitempty"`
	Audit
}

func (p *Person) TableName() string { return TablePerson }
func (p *Person) Key() string       { return fmt.Sprintf("%d|%s", p.MandantNr, p.UID) }
func (p *Person) Tenant() int       { return p.MandantNr }
func (p *Person) Revision() *Audit  { return &p.Audit }

func (p *Person) BusinessEqual(other Row) bool {
	o, ok := other.(*Person)
	if !ok {
		return false
	}
	return p.MandantNr == o.MandantNr &&
		p.UID == o.UID &&
		p.Name == o.Name &&
		equalString(p.Vorname, o.Vorname) &&
		equalDate(p.Geburt, o.Geburt) &&
		p.Geschlecht == o.Geschlecht &&
		equalString(p.Notiz, o.Notiz)
}

func (p *Person) Clone() Row {
	c := *p
	c.Vorname = cloneString(p.Vorname)
	c.Geburt = cloneDate(p.Geburt)
	c.Notiz = cloneString(p.Notiz)
	c.ReplikationUID = cloneString(p.ReplikationUID)
	c.Audit = cloneAudit(p.Audit)
	return &c
}
