package repo

import (
	"database/sql"
	"errors"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/store"
)

const paramCols = `mandant_nr, schluessel, wert,
	angelegt_von, angelegt_am, geaendert_von, geaendert_am`

// Parameters persists MA_Parameter rows.
type Parameters struct{}

// NewParameters creates the parameter repository.
func NewParameters() *Parameters { return &Parameters{} }

func scanParameter(s scanner) (*entity.Parameter, error) {
	var p entity.Parameter
	err := s.Scan(
		&p.MandantNr, &p.Schluessel, &p.Wert,
		&p.CreatedBy, &p.CreatedAt, &p.ModifiedBy, &p.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get looks a parameter up by tenant and key. Returns (nil, nil) when
// absent.
func (r *Parameters) Get(sc *store.Scope, tenant int, key string) (*entity.Parameter, error) {
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+paramCols+` FROM ma_parameter WHERE mandant_nr = ? AND schluessel = ?`,
		tenant, key)
	p, err := scanParameter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Driver("get parameter", err)
	}
	return p, nil
}

// List enumerates the parameters of one tenant ordered by key.
func (r *Parameters) List(sc *store.Scope, tenant int) ([]*entity.Parameter, error) {
	rows, err := sc.Tx().QueryContext(sc.Ctx(),
		`SELECT `+paramCols+` FROM ma_parameter WHERE mandant_nr = ? ORDER BY schluessel`,
		tenant)
	if err != nil {
		return nil, apperr.Driver("list parameters", err)
	}
	defer rows.Close()

	var list []*entity.Parameter
	for rows.Next() {
		p, err := scanParameter(rows)
		if err != nil {
			return nil, apperr.Driver("scan parameter", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Driver("iterate parameters", err)
	}
	return list, nil
}

// Insert inserts the row verbatim.
func (r *Parameters) Insert(sc *store.Scope, p *entity.Parameter) error {
	return insertRow(sc, paramOps{}, p)
}

// Update writes the row verbatim, constrained by its key.
func (r *Parameters) Update(sc *store.Scope, p *entity.Parameter) error {
	return updateRow(sc, paramOps{}, p)
}

// Delete removes the row.
func (r *Parameters) Delete(sc *store.Scope, p *entity.Parameter) error {
	return deleteRow(sc, paramOps{}, p)
}

// Save upserts under the audit discipline. Parameter writes decide
// insert vs update from current existence.
func (r *Parameters) Save(sc *store.Scope, p *entity.Parameter, ov *AuditOverride) (*entity.Parameter, error) {
	saved, err := saveRow(sc, paramOps{}, p, ov)
	if err != nil {
		return nil, err
	}
	return saved.(*entity.Parameter), nil
}

// SaveValue is the common upsert of a plain string value; an empty
// string is stored as NULL.
func (r *Parameters) SaveValue(sc *store.Scope, tenant int, key, value string) (*entity.Parameter, error) {
	p := &entity.Parameter{MandantNr: tenant, Schluessel: key}
	if value != "" {
		p.Wert = &value
	}
	return r.Save(sc, p, nil)
}

type paramOps struct{}

func (paramOps) get(sc *store.Scope, key entity.Row) (entity.Row, error) {
	p := key.(*entity.Parameter)
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+paramCols+` FROM ma_parameter WHERE mandant_nr = ? AND schluessel = ?`,
		p.MandantNr, p.Schluessel)
	got, err := scanParameter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return got, nil
}

func (paramOps) insert(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Parameter)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		INSERT INTO ma_parameter
		(mandant_nr, schluessel, wert, angelegt_von, angelegt_am, geaendert_von, geaendert_am)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.MandantNr, p.Schluessel, p.Wert,
		p.CreatedBy, p.CreatedAt, p.ModifiedBy, p.ModifiedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (paramOps) update(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Parameter)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		UPDATE ma_parameter SET wert = ?,
		angelegt_von = ?, angelegt_am = ?, geaendert_von = ?, geaendert_am = ?
		WHERE mandant_nr = ? AND schluessel = ?`,
		p.Wert,
		p.CreatedBy, p.CreatedAt, p.ModifiedBy, p.ModifiedAt,
		p.MandantNr, p.Schluessel,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (paramOps) remove(sc *store.Scope, row entity.Row) (int64, error) {
	p := row.(*entity.Parameter)
	res, err := sc.Tx().ExecContext(sc.Ctx(),
		`DELETE FROM ma_parameter WHERE mandant_nr = ? AND schluessel = ?`,
		p.MandantNr, p.Schluessel)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
