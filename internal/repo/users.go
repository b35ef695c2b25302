package repo

import (
	"database/sql"
	"errors"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/store"
)

const userCols = `mandant_nr, benutzer_id, passwort, berechtigung, akt_periode, person_nr, geburt,
	angelegt_von, angelegt_am, geaendert_von, geaendert_am`

// Users persists Benutzer rows.
type Users struct{}

// NewUsers creates the user repository.
func NewUsers() *Users { return &Users{} }

func scanUser(s scanner) (*entity.User, error) {
	var u entity.User
	err := s.Scan(
		&u.MandantNr, &u.BenutzerID, &u.Passwort, &u.Berechtigung,
		&u.AktPeriode, &u.PersonNr, &u.Geburt,
		&u.CreatedBy, &u.CreatedAt, &u.ModifiedBy, &u.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Get looks a user up by tenant and id. Returns (nil, nil) when absent.
func (r *Users) Get(sc *store.Scope, tenant int, userID string) (*entity.User, error) {
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+userCols+` FROM benutzer WHERE mandant_nr = ? AND benutzer_id = ?`,
		tenant, userID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Driver("get user", err)
	}
	return u, nil
}

// List enumerates the users of one tenant ordered by id.
func (r *Users) List(sc *store.Scope, tenant int) ([]*entity.User, error) {
	rows, err := sc.Tx().QueryContext(sc.Ctx(),
		`SELECT `+userCols+` FROM benutzer WHERE mandant_nr = ? ORDER BY benutzer_id`,
		tenant)
	if err != nil {
		return nil, apperr.Driver("list users", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperr.Driver("scan user", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Driver("iterate users", err)
	}
	return list, nil
}

// Insert inserts the row verbatim.
func (r *Users) Insert(sc *store.Scope, u *entity.User) error {
	return insertRow(sc, userOps{}, u)
}

// Update writes the row verbatim, constrained by its key.
func (r *Users) Update(sc *store.Scope, u *entity.User) error {
	return updateRow(sc, userOps{}, u)
}

// Delete removes the row.
func (r *Users) Delete(sc *store.Scope, u *entity.User) error {
	return deleteRow(sc, userOps{}, u)
}

// Save upserts under the audit discipline.
func (r *Users) Save(sc *store.Scope, u *entity.User, ov *AuditOverride) (*entity.User, error) {
	saved, err := saveRow(sc, userOps{}, u, ov)
	if err != nil {
		return nil, err
	}
	return saved.(*entity.User), nil
}

type userOps struct{}

func (userOps) get(sc *store.Scope, key entity.Row) (entity.Row, error) {
	u := key.(*entity.User)
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+userCols+` FROM benutzer WHERE mandant_nr = ? AND benutzer_id = ?`,
		u.MandantNr, u.BenutzerID)
	got, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return got, nil
}

func (userOps) insert(sc *store.Scope, row entity.Row) (int64, error) {
	u := row.(*entity.User)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		INSERT INTO benutzer
		(mandant_nr, benutzer_id, passwort, berechtigung, akt_periode, person_nr, geburt,
		 angelegt_von, angelegt_am, geaendert_von, geaendert_am)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.MandantNr, u.BenutzerID, u.Passwort, int(u.Berechtigung),
		u.AktPeriode, u.PersonNr, u.Geburt,
		u.CreatedBy, u.CreatedAt, u.ModifiedBy, u.ModifiedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (userOps) update(sc *store.Scope, row entity.Row) (int64, error) {
	u := row.(*entity.User)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		UPDATE benutzer SET passwort = ?, berechtigung = ?, akt_periode = ?, person_nr = ?, geburt = ?,
		angelegt_von = ?, angelegt_am = ?, geaendert_von = ?, geaendert_am = ?
		WHERE mandant_nr = ? AND benutzer_id = ?`,
		u.Passwort, int(u.Berechtigung), u.AktPeriode, u.PersonNr, u.Geburt,
		u.CreatedBy, u.CreatedAt, u.ModifiedBy, u.ModifiedAt,
		u.MandantNr, u.BenutzerID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (userOps) remove(sc *store.Scope, row entity.Row) (int64, error) {
	u := row.(*entity.User)
	res, err := sc.Tx().ExecContext(sc.Ctx(),
		`DELETE FROM benutzer WHERE mandant_nr = ? AND benutzer_id = ?`,
		u.MandantNr, u.BenutzerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
