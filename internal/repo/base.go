package repo

import (
	"time"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/store"
)

// ChangeWindow is the interval inside which repeated modifications
// coalesce under the same modification stamp.
const ChangeWindow = 60 * time.Second

// AuditOverride lets a caller force the creation pair, e.g. when the
// replication merger takes over the remote lineage.
type AuditOverride struct {
	CreatedBy *string
	CreatedAt *time.Time
}

// sqlOps is the raw SQL surface a table adapter supplies. get returns
// (nil, nil) when the primary key has no row.
type sqlOps interface {
	get(sc *store.Scope, key entity.Row) (entity.Row, error)
	insert(sc *store.Scope, row entity.Row) (int64, error)
	update(sc *store.Scope, row entity.Row) (int64, error)
	remove(sc *store.Scope, row entity.Row) (int64, error)
}

// capture serialises before/after images into the pending batch.
func capture(sc *store.Scope, table string, before, after entity.Row) error {
	var beforeImg, afterImg []byte
	var err error
	if before != nil {
		if beforeImg, err = entity.Encode(before); err != nil {
			return apperr.Driver("capture before image", err)
		}
	}
	if after != nil {
		if afterImg, err = entity.Encode(after); err != nil {
			return apperr.Driver("capture after image", err)
		}
	}
	sc.Batch().Append(table, beforeImg, afterImg)
	return nil
}

// insertRow inserts verbatim and records (nil, row).
func insertRow(sc *store.Scope, ops sqlOps, row entity.Row) error {
	affected, err := ops.insert(sc, row)
	if err != nil {
		return apperr.Driver("insert "+row.TableName(), err)
	}
	if affected == 0 {
		return apperr.NotFound("insert " + row.TableName())
	}
	return capture(sc, row.TableName(), nil, row)
}

// updateRow writes the row verbatim, constrained by its primary key,
// and records (old, row). Audit fields are written as given; only
// Save applies the change-window rule.
func updateRow(sc *store.Scope, ops sqlOps, row entity.Row) error {
	old, err := ops.get(sc, row)
	if err != nil {
		return apperr.Driver("read current "+row.TableName(), err)
	}
	if old == nil {
		return apperr.NotFound("update " + row.TableName())
	}
	affected, err := ops.update(sc, row)
	if err != nil {
		return apperr.Driver("update "+row.TableName(), err)
	}
	if affected == 0 {
		return apperr.NotFound("update " + row.TableName())
	}
	return capture(sc, row.TableName(), old, row)
}

// deleteRow removes the row and records (old, nil).
func deleteRow(sc *store.Scope, ops sqlOps, row entity.Row) error {
	old, err := ops.get(sc, row)
	if err != nil {
		return apperr.Driver("read current "+row.TableName(), err)
	}
	if old == nil {
		return apperr.NotFound("delete " + row.TableName())
	}
	affected, err := ops.remove(sc, row)
	if err != nil {
		return apperr.Driver("delete "+row.TableName(), err)
	}
	if affected == 0 {
		return apperr.NotFound("delete " + row.TableName())
	}
	return capture(sc, row.TableName(), old, nil)
}

// saveRow is the upsert primitive.
//
// A stored row that is business-equal to the payload causes no write
// at all. Otherwise the candidate inherits the stored audit quartet,
// the creation pair is initialised (or overridden), and the
// modification pair is refreshed only when the call happens outside
// the change window of the last audit stamp.
func saveRow(sc *store.Scope, ops sqlOps, payload entity.Row, ov *AuditOverride) (entity.Row, error) {
	stored, err := ops.get(sc, payload)
	if err != nil {
		return nil, apperr.Driver("read current "+payload.TableName(), err)
	}

	candidate := payload.Clone()
	rev := candidate.Revision()
	*rev = entity.Audit{}

	if stored != nil && candidate.BusinessEqual(stored) {
		return stored, nil
	}
	if stored != nil {
		rev.CopyFrom(*stored.Revision())
	}

	now := sc.Actor().Now
	if rev.CreatedBy == nil || (ov != nil && ov.CreatedBy != nil) {
		by, at := sc.Actor().User, now
		if ov != nil && ov.CreatedBy != nil {
			by = *ov.CreatedBy
			if ov.CreatedAt != nil {
				at = *ov.CreatedAt
			}
		}
		rev.SetCreated(by, at)
	}

	if last := rev.LastTouched(); last == nil || now.Sub(*last) > ChangeWindow {
		rev.SetModified(sc.Actor().User, now)
	}

	if stored == nil {
		if err := insertRow(sc, ops, candidate); err != nil {
			return nil, err
		}
	} else {
		if err := updateRow(sc, ops, candidate); err != nil {
			return nil, err
		}
	}
	return candidate, nil
}
