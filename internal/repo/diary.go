package repo

import (
	"database/sql"
	"errors"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/store"
)

const diaryCols = `mandant_nr, datum, eintrag,
	angelegt_von, angelegt_am, geaendert_von, geaendert_am, replikation_uid`

// DiaryEntries persists TB_Eintrag rows.
type DiaryEntries struct{}

// NewDiaryEntries creates the diary repository.
func NewDiaryEntries() *DiaryEntries { return &DiaryEntries{} }

func scanDiaryEntry(s scanner) (*entity.DiaryEntry, error) {
	var e entity.DiaryEntry
	err := s.Scan(
		&e.MandantNr, &e.Datum, &e.Eintrag,
		&e.CreatedBy, &e.CreatedAt, &e.ModifiedBy, &e.ModifiedAt,
		&e.ReplikationUID,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get looks an entry up by tenant and day. Returns (nil, nil) when
// absent.
func (r *DiaryEntries) Get(sc *store.Scope, tenant int, day entity.Date) (*entity.DiaryEntry, error) {
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+diaryCols+` FROM tb_eintrag WHERE mandant_nr = ? AND datum = ?`,
		tenant, day)
	e, err := scanDiaryEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Driver("get diary entry", err)
	}
	return e, nil
}

// List enumerates one tenant's entries ordered by day.
func (r *DiaryEntries) List(sc *store.Scope, tenant int) ([]*entity.DiaryEntry, error) {
	rows, err := sc.Tx().QueryContext(sc.Ctx(),
		`SELECT `+diaryCols+` FROM tb_eintrag WHERE mandant_nr = ? ORDER BY datum`,
		tenant)
	if err != nil {
		return nil, apperr.Driver("list diary entries", err)
	}
	defer rows.Close()

	var list []*entity.DiaryEntry
	for rows.Next() {
		e, err := scanDiaryEntry(rows)
		if err != nil {
			return nil, apperr.Driver("scan diary entry", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Driver("iterate diary entries", err)
	}
	return list, nil
}

// Insert inserts the row verbatim.
func (r *DiaryEntries) Insert(sc *store.Scope, e *entity.DiaryEntry) error {
	return insertRow(sc, diaryOps{}, e)
}

// Update writes the row verbatim, constrained by its key.
func (r *DiaryEntries) Update(sc *store.Scope, e *entity.DiaryEntry) error {
	return updateRow(sc, diaryOps{}, e)
}

// Delete removes the row.
func (r *DiaryEntries) Delete(sc *store.Scope, e *entity.DiaryEntry) error {
	return deleteRow(sc, diaryOps{}, e)
}

// Save upserts under the audit discipline.
func (r *DiaryEntries) Save(sc *store.Scope, e *entity.DiaryEntry, ov *AuditOverride) (*entity.DiaryEntry, error) {
	saved, err := saveRow(sc, diaryOps{}, e, ov)
	if err != nil {
		return nil, err
	}
	return saved.(*entity.DiaryEntry), nil
}

type diaryOps struct{}

func (diaryOps) get(sc *store.Scope, key entity.Row) (entity.Row, error) {
	e := key.(*entity.DiaryEntry)
	row := sc.Tx().QueryRowContext(sc.Ctx(),
		`SELECT `+diaryCols+` FROM tb_eintrag WHERE mandant_nr = ? AND datum = ?`,
		e.MandantNr, e.Datum)
	got, err := scanDiaryEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return got, nil
}

func (diaryOps) insert(sc *store.Scope, row entity.Row) (int64, error) {
	e := row.(*entity.DiaryEntry)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		INSERT INTO tb_eintrag
		(mandant_nr, datum, eintrag,
		 angelegt_von, angelegt_am, geaendert_von, geaendert_am, replikation_uid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.MandantNr, e.Datum, e.Eintrag,
		e.CreatedBy, e.CreatedAt, e.ModifiedBy, e.ModifiedAt,
		e.ReplikationUID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (diaryOps) update(sc *store.Scope, row entity.Row) (int64, error) {
	e := row.(*entity.DiaryEntry)
	res, err := sc.Tx().ExecContext(sc.Ctx(), `
		UPDATE tb_eintrag SET eintrag = ?,
		angelegt_von = ?, angelegt_am = ?, geaendert_von = ?, geaendert_am = ?, replikation_uid = ?
		WHERE mandant_nr = ? AND datum = ?`,
		e.Eintrag,
		e.CreatedBy, e.CreatedAt, e.ModifiedBy, e.ModifiedAt, e.ReplikationUID,
		e.MandantNr, e.Datum,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (diaryOps) remove(sc *store.Scope, row entity.Row) (int64, error) {
	e := row.(*entity.DiaryEntry)
	res, err := sc.Tx().ExecContext(sc.Ctx(),
		`DELETE FROM tb_eintrag WHERE mandant_nr = ? AND datum = ?`,
		e.MandantNr, e.Datum)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
