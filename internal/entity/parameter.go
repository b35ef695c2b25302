package entity

import "fmt"

// Parameter is a per-tenant key/value row (MA_Parameter). Tenant 0
// holds values shared by all tenants.
type Parameter struct {
	MandantNr  int     `json:"mandant_nr"`
	Schluessel string  `json:"schluessel"`
	Wert       *string `json:"wert,omitempty"`
	Audit
}

func (p *Parameter) TableName() string { return TableParameter }
func (p *Parameter) Key() string       { return fmt.Sprintf("%d|%s", p.MandantNr, p.Schluessel) }
func (p *Parameter) Tenant() int       { return p.MandantNr }
func (p *Parameter) Revision() *Audit  { return &p.Audit }

func (p *Parameter) BusinessEqual(other Row) bool {
	o, ok := other.(*Parameter)
	if !ok {
		return false
	}
	return p.MandantNr == o.MandantNr &&
		p.Schluessel == o.Schluessel &&
		equalString(p.Wert, o.Wert)
}

func (p *Parameter) Clone() Row {
	c := *p
	c.Wert = cloneString(p.Wert)
	c.Audit = cloneAudit(p.Audit)
	return &c
}

// Value returns the stored value or "" when absent.
func (p *Parameter) Value() string {
	if p.Wert == nil {
		return ""
	}
	return *p.Wert
}
