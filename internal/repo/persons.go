package repo

import (
	"database/sql"
	"errors"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/store"
)

const personCols = `mandant_nr, uid, name, vorname, geburt, geschlecht, notiz,
	angelegt_von, angelegt_am, geaendert_von, geaendert_am, replikation_uid`

// Persons persists AD_Person rows.
type Persons struct{}

// NewPersons creates the person repository.
func NewPersons() *Persons { return &Persons{} }

func scanPerson(s scanner) (*entity.Person, error) {
	var p entity.Person
	err := s.Scan(
		&p.MandantNr, &p.UID, &p.Name, &p.Vorname, &p.Geburt, &p.Geschlecht, &p.Notiz,
		&p.CreatedBy, &p.CreatedAt, &p.ModifiedBy, &p.ModifiedAt,
		&p.ReplikationUID,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get looks a person up by tenant and uid. Returns (nil, nil) when
// absent.
func (r *Persons) Get(sc *store.Scope, tenant int, uid string) (*entity.Person, error) {
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+personCols+` FROM ad_person WHERE mandant_nr = ? AND uid = ?`,
		tenant, uid)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Driver("get person", err)
	}
	return p, nil
}

// List enumerates one tenant's persons ordered by name.
func (r *Persons) List(sc *store.Scope, tenant int) ([]*entity.Person, error) {
	rows, err := sc.Tx().QueryContext(sc.Ctx(),
		`SELECT `+personCols+` FROM ad_person WHERE mandant_nr = ? ORDER BY name, vorname, uid`,
		tenant)
	if err != nil {
		return nil, apperr.Driver("list persons", err)
	}
	defer rows.Close()

	var list []*entity.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, apperr.Driver("scan person", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Driver("iterate persons", err)
	}
	return list, nil
}

// Insert inserts the row verbatim.
func (r *Persons) Insert(sc *store.Scope, p *entity.Person) error {
	return insertRow(sc, personOps{}, p)
}

// Update writes the row verbatim, constrained by its key.
func (r *Persons) Update(sc *store.Scope, p *entity.Person) error {
	return updateRow(sc, personOps{}, p)
}

// Delete removes the row.
func (r *Persons) Delete(sc *store.Scope, p *entity.Person) error {
	return deleteRow(sc, personOps{}, p)
}

// Save upserts under the audit discipline.
func (r *Persons) Save(sc *store.Scope, p *entity.Person, ov *AuditOverride) (*entity.Person, error) {
	saved, err := saveRow(sc, personOps{}, p, ov)
	if err != nil {
		return nil, err
	}
	return saved.(*entity.Person), nil
}

type personOps struct{}

func (personOps) get(sc *store.Scope, key entity.Row) (entity.Row, error) {
	p := key.(*entity.Person)
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+personCols+` FROM ad_person WHERE mandant_nr = ? AND uid = ?`,
		p.MandantNr, p.UID)
	got, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return got, nil
}

func (personOps) insert(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Person)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		INSERT INTO ad_person
		(mandant_nr, uid, name, vorname, geburt, geschlecht, notiz,
		 angelegt_von, angelegt_am, geaendert_von, geaendert_am, replikation_uid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.MandantNr, p.UID, p.Name, p.Vorname, p.Geburt, p.Geschlecht, p.Notiz,
		p.CreatedBy, p.CreatedAt, p.ModifiedBy, p.ModifiedAt,
		p.ReplikationUID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (personOps) update(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Person)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		UPDATE ad_person SET name = ?, vorname = ?, geburt = ?, geschlecht = ?, notiz = ?,
		angelegt_von = ?, angelegt_am = ?, geaendert_von = ?, geaendert_am = ?, replikation_uid = ?
		WHERE mandant_nr = ? AND uid = ?`,
		p.Name, p.Vorname, p.Geburt, p.Geschlecht, p.Notiz,
		p.CreatedBy, p.CreatedAt, p.ModifiedBy, p.ModifiedAt, p.ReplikationUID,
		p.MandantNr, p.UID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (personOps) remove(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Person)
	res, err := sc.Tx().ExecContext(sc.Ctx(),
		`DELETE FROM ad_person WHERE mandant_nr = ? AND uid = ?`,
		p.MandantNr, p.UID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
