package repo

import (
	"database/sql"
	"errors"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/store"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const tenantCols = `nr, beschreibung, angelegt_von, angelegt_am, geaendert_von, geaendert_am`

// Tenants persists MA_Mandant rows.
type Tenants struct{}

// NewTenants creates the tenant repository.
func NewTenants() *Tenants { return &Tenants{} }

func scanTenant(s scanner) (*entity.Tenant, error) {
	var t entity.Tenant
	err := s.Scan(
		&t.Nr, &t.Beschreibung,
		&t.CreatedBy, &t.CreatedAt, &t.ModifiedBy, &t.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Get looks a tenant up by number. Returns (nil, nil) when absent.
func (r *Tenants) Get(sc *store.Scope, nr int) (*entity.Tenant, error) {
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+tenantCols+` FROM ma_mandant WHERE nr = ?`, nr)
	t, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Driver("get tenant", err)
	}
	return t, nil
}

// List enumerates all tenants ordered by number.
func (r *Tenants) List(sc *store.Scope) ([]*entity.Tenant, error) {
	rows, err := sc.Tx().QueryContext(sc.Ctx(),
		`SELECT `+tenantCols+` FROM ma_mandant ORDER BY nr`)
	if err != nil {
		return nil, apperr.Driver("list tenants", err)
	}
	defer rows.Close()

	var list []*entity.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, apperr.Driver("scan tenant", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Driver("iterate tenants", err)
	}
	return list, nil
}

// MaxNr returns the highest tenant number, 0 when no tenant exists.
// Used by the service layer to allocate the next number.
func (r *Tenants) MaxNr(sc *store.Scope) (int, error) {
	var max int
	err := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT COALESCE(MAX(nr), 0) FROM ma_mandant`).Scan(&max)
	if err != nil {
		return 0, apperr.Driver("max tenant nr", err)
	}
	return max, nil
}

// Insert inserts the row verbatim.
func (r *Tenants) Insert(sc *store.Scope, t *entity.Tenant) error {
	return insertRow(sc, tenantOps{}, t)
}

// Update writes the row verbatim, constrained by its number.
func (r *Tenants) Update(sc *store.Scope, t *entity.Tenant) error {
	return updateRow(sc, tenantOps{}, t)
}

// Delete removes the row.
func (r *Tenants) Delete(sc *store.Scope, t *entity.Tenant) error {
	return deleteRow(sc, tenantOps{}, t)
}

// Save upserts under the audit discipline.
func (r *Tenants) Save(sc *store.Scope, t *entity.Tenant, ov *AuditOverride) (*entity.Tenant, error) {
	saved, err := saveRow(sc, tenantOps{}, t, ov)
	if err != nil {
		return nil, err
	}
	return saved.(*entity.Tenant), nil
}

type tenantOps struct{}

func (tenantOps) get(sc *store.Scope, key entity.Row) (entity.Row, error) {
	t := key.(*entity.Tenant)
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+tenantCols+` FROM ma_mandant WHERE nr = ?`, t.Nr)
	got, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return got, nil
}

func (tenantOps) insert(sc *store.Scope, row entity.Row) (int64, error) {
	t := row.(*entity.Tenant)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		INSERT INTO ma_mandant
		(nr, beschreibung, angelegt_von, angelegt_am, geaendert_von, geaendert_am)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Nr, t.Beschreibung,
		t.CreatedBy, t.CreatedAt, t.ModifiedBy, t.ModifiedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (tenantOps) update(sc *store.Scope, row entity.Row) (int64, error) {
	t := row.(*entity.Tenant)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		UPDATE ma_mandant SET beschreibung = ?,
		angelegt_von = ?, angelegt_am = ?, geaendert_von = ?, geaendert_am = ?
		WHERE nr = ?`,
		t.Beschreibung,
		t.CreatedBy, t.CreatedAt, t.ModifiedBy, t.ModifiedAt,
		t.Nr,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (tenantOps) remove(sc *store.Scope, row entity.Row) (int64, error) {
	t := row.(*entity.Tenant)
	res, err := sc.Tx().ExecContext(sc.Ctx(),
		`DELETE FROM ma_mandant WHERE nr = ?`, t.Nr)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
