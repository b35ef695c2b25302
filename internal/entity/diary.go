package entity

import "fmt"

// DiaryEntry is one diary day (TB_Eintrag), keyed by tenant and date.
// It carries a replication UID so replicas can correlate entries that
// were written on different devices.
type DiaryEntry struct {
	MandantNr      int     `json:"mandant_nr"`
	Datum          Date    `json:"datum"`
	Eintrag        string  `json:"eintrag"`
	ReplikationUID *string `json:"replikation_uid,omitempty"`
	Audit
}

func (e *DiaryEntry) TableName() string { return TableDiary }
func (e *DiaryEntry) Key() string       { return fmt.Sprintf("%d|%s", e.MandantNr, e.Datum) }
func (e *DiaryEntry) Tenant() int       { return e.MandantNr }
func (e *DiaryEntry) Revision() *Audit  { return &e.Audit }

func (e *DiaryEntry) BusinessEqual(other Row) bool {
	o, ok := other.(*DiaryEntry)
	if !ok {
		return false
	}
	return e.MandantNr == o.MandantNr &&
		e.Datum.Equal(o.Datum) &&
		e.Eintrag == o.Eintrag
}

func (e *DiaryEntry) Clone() Row {
	c := *e
	c.ReplikationUID = cloneString(e.ReplikationUID)
	c.Audit = cloneAudit(e.Audit)
	return &c
}

// Place is a geolocated diary place (TB_Ort).
type Place struct {
	MandantNr      int     `json:"mandant_nr"`
	UID            string  `json:"uid"`
	Bezeichnung    string  `json:"bezeichnung"`
	Breite         float64 `json:"breite"`
	Laenge         float64 `json:"laenge"`
	Hoehe          float64 `json:"hoehe"`
	Notiz          *string `json:"notiz,omitempty"`
	ReplikationUID *string `json:"replikation_uid,omitempty"`
	Audit
}

func (p *Place) TableName() string { return TablePlace }
func (p *Place) Key() string       { return fmt.Sprintf("%d|%s", p.MandantNr, p.UID) }
func (p *Place) Tenant() int       { return p.MandantNr }
func (p *Place) Revision() *Audit  { return &p.Audit }

func (p *Place) BusinessEqual(other Row) bool {
	o, ok := other.(*Place)
	if !ok {
		return false
	}
	return p.MandantNr == o.MandantNr &&
		p.UID == o.UID &&
		p.Bezeichnung == o.Bezeichnung &&
		p.Breite == o.Breite &&
		p.Laenge == o.Laenge &&
		p.Hoehe == o.Hoehe &&
		equalString(p.Notiz, o.Notiz)
}

func (p *Place) Clone() Row {
	c := *p
	c.Notiz = cloneString(p.Notiz)
	c.ReplikationUID = cloneString(p.ReplikationUID)
	c.Audit = cloneAudit(p.Audit)
	return &c
}
