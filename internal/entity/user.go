package entity

import "fmt"

// Permission is the per-user access level.
type Permission int

const (
	PermissionNone  Permission = -1
	PermissionUser  Permission = 0
	PermissionAdmin Permission = 1
	PermissionAll   Permission = 2
)

// BootstrapUserID is the sentinel user id a freshly initialised tenant
// carries. The first real login replaces it (case-insensitive match).
const BootstrapUserID = "Benutzer-ID"

// User is an account within a tenant (Benutzer). The stored password
// is a bcrypt hash; an absent value means login without password is
// permitted for this account.
type User struct {
	MandantNr    int        `json:"mandant_nr"`
	BenutzerID   string     `json:"benutzer_id"`
	Passwort     *string    `json:"passwort,omitempty"`
	Berechtigung Permission `json:"berechtigung"`
	AktPeriode   int        `json:"akt_periode"`
	PersonNr     int        `json:"person_nr"`
	Geburt       *Date      `json:"geburt,omitempty"`
	Audit
}

func (u *User) TableName() string { return TableUser }
func (u *User) Key() string       { return fmt.Sprintf("%d|%s", u.MandantNr, u.BenutzerID) }
func (u *User) Tenant() int       { return u.MandantNr }
func (u *User) Revision() *Audit  { return &u.Audit }

func (u *User) BusinessEqual(other Row) bool {
	o, ok := other.(*User)
	if !ok {
		return false
	}
	return u.MandantNr == o.MandantNr &&
		u.BenutzerID == o.BenutzerID &&
		equalString(u.Passwort, o.Passwort) &&
		u.Berechtigung == o.Berechtigung &&
		u.AktPeriode == o.AktPeriode &&
		u.PersonNr == o.PersonNr &&
		equalDate(u.Geburt, o.Geburt)
}

func (u *User) Clone() Row {
	c := *u
	c.Passwort = cloneString(u.Passwort)
	c.Geburt = cloneDate(u.Geburt)
	c.Audit = cloneAudit(u.Audit)
	return &c
}
