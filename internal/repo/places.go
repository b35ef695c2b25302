package repo

import (
	"database/sql"
	"errors"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/store"
)

const placeCols = `mandant_nr, uid, bezeichnung, breite, laenge, hoehe, notiz,
	angelegt_von, angelegt_am, geaendert_von, geaendert_am, replikation_uid`

// Places persists TB_Ort rows.
type Places struct{}

// NewPlaces creates the place repository.
func NewPlaces() *Places { return &Places{} }

func scanPlace(s scanner) (*entity.Place, error) {
	var p entity.Place
	err := s.Scan(
		&p.MandantNr, &p.UID, &p.Bezeichnung, &p.Breite, &p.Laenge, &p.Hoehe, &p.Notiz,
		&p.CreatedBy, &p.CreatedAt, &p.ModifiedBy, &p.ModifiedAt,
		&p.ReplikationUID,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get looks a place up by tenant and uid. Returns (nil, nil) when
// absent.
func (r *Places) Get(sc *store.Scope, tenant int, uid string) (*entity.Place, error) {
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+placeCols+` FROM tb_ort WHERE mandant_nr = ? AND uid = ?`,
		tenant, uid)
	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Driver("get place", err)
	}
	return p, nil
}

// List enumerates one tenant's places ordered by designation.
func (r *Places) List(sc *store.Scope, tenant int) ([]*entity.Place, error) {
	rows, err := sc.Tx().QueryContext(sc.Ctx(),
		`SELECT `+placeCols+` FROM tb_ort WHERE mandant_nr = ? ORDER BY bezeichnung, uid`,
		tenant)
	if err != nil {
		return nil, apperr.Driver("list places", err)
	}
	defer rows.Close()

	var list []*entity.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, apperr.Driver("scan place", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Driver("iterate places", err)
	}
	return list, nil
}

// Insert inserts the row verbatim.
func (r *Places) Insert(sc *store.Scope, p *entity.Place) error {
	return insertRow(sc, placeOps{}, p)
}

// Update writes the row verbatim, constrained by its key.
func (r *Places) Update(sc *store.Scope, p *entity.Place) error {
	return updateRow(sc, placeOps{}, p)
}

// Delete removes the row.
func (r *Places) Delete(sc *store.Scope, p *entity.Place) error {
	return deleteRow(sc, placeOps{}, p)
}

// Save upserts under the audit discipline.
func (r *Places) Save(sc *store.Scope, p *entity.Place, ov *AuditOverride) (*entity.Place, error) {
	saved, err := saveRow(sc, placeOps{}, p, ov)
	if err != nil {
		return nil, err
	}
	return saved.(*entity.Place), nil
}

type placeOps struct{}

func (placeOps) get(sc *store.Scope, key entity.Row) (entity.Row, error) {
	p := key.(*entity.Place)
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+placeCols+` FROM tb_ort WHERE mandant_nr = ? AND uid = ?`,
		p.MandantNr, p.UID)
	got, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return got, nil
}

func (placeOps) insert(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Place)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		INSERT INTO tb_ort
		(mandant_nr, uid, bezeichnung, breite, laenge, hoehe, notiz,
		 angelegt_von, angelegt_am, geaendert_von, geaendert_am, replikation_uid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.MandantNr, p.UID, p.Bezeichnung, p.Breite, p.Laenge, p.Hoehe, p.Notiz,
		p.CreatedBy, p.CreatedAt, p.ModifiedBy, p.ModifiedAt,
		p.ReplikationUID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (placeOps) update(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Place)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		UPDATE tb_ort SET bezeichnung = ?, breite = ?, laenge = ?, hoehe = ?, notiz = ?,
		angelegt_von = ?, angelegt_am = ?, geaendert_von = ?, geaendert_am = ?, replikation_uid = ?
		WHERE mandant_nr = ? AND uid = ?`,
		p.Bezeichnung, p.Breite, p.Laenge, p.Hoehe, p.Notiz,
		p.CreatedBy, p.CreatedAt, p.ModifiedBy, p.ModifiedAt, p.ReplikationUID,
		p.MandantNr, p.UID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (placeOps) remove(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Place)
	res, err := sc.Tx().ExecContext(sc.Ctx(),
		`DELETE FROM tb_ort WHERE mandant_nr = ? AND uid = ?`,
		p.MandantNr, p.UID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
