package repo

import (
	"context"
	"fmt"

	"homebook/internal/entity"
	"homebook/internal/metrics"
	"homebook/internal/store"
	"homebook/internal/undo"
)

// opsFor recovers the raw table adapter from a table tag. The tag set
// is closed; the undo log never contains anything else.
func opsFor(table string) (sqlOps, error) {
	switch table {
	case entity.TableTenant:
		return tenantOps{}, nil
	case entity.TableUser:
		return userOps{}, nil
	case entity.TableParameter:
		return paramOps{}, nil
	case entity.TableDiary:
		return diaryOps{}, nil
	case entity.TablePlace:
		return placeOps{}, nil
	case entity.TablePerson:
		return personOps{}, nil
	default:
		return nil, fmt.Errorf("unknown table %q in undo log", table)
	}
}

// Replayer applies undo groups against the live database. Each
// replay runs in a fresh silent scope: the batch produced while
// replaying is discarded, the original group just moves between the
// two sides of the history.
type Replayer struct {
	runner *store.Runner
}

// NewReplayer creates a replayer bound to the runner and its stack.
func NewReplayer(runner *store.Runner) *Replayer {
	return &Replayer{runner: runner}
}

// Undo reverts the most recent committed group. Returns false when
// the history is empty. On success the group becomes redoable.
func (rp *Replayer) Undo(ctx context.Context, actor store.Actor) (bool, error) {
	stack := rp.runner.Stack()
	batch := stack.PeekUndo()
	if batch == nil {
		return false, nil
	}

	err := rp.runner.InTxSilent(ctx, actor, func(sc *store.Scope) error {
		// Reverse order: inverses of later records first, so that
		// re-established rows exist before earlier inverses need them.
		for i := len(batch.Records) - 1; i >= 0; i-- {
			if err := applyInverse(sc, batch.Records[i]); err != nil {
				return fmt.Errorf("undo record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	stack.ShiftToRedo(batch)
	metrics.Undos.Inc()
	return true, nil
}

// Redo re-applies the most recently undone group. Returns false when
// nothing is redoable.
func (rp *Replayer) Redo(ctx context.Context, actor store.Actor) (bool, error) {
	stack := rp.runner.Stack()
	batch := stack.PeekRedo()
	if batch == nil {
		return false, nil
	}

	err := rp.runner.InTxSilent(ctx, actor, func(sc *store.Scope) error {
		for i, rec := range batch.Records {
			if err := applyForward(sc, rec); err != nil {
				return fmt.Errorf("redo record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	stack.ShiftToUndo(batch)
	metrics.Redos.Inc()
	return true, nil
}

// applyInverse reverts one record: an insert is deleted, an update is
// overwritten with its before image, a delete is re-inserted.
func applyInverse(sc *store.Scope, rec undo.Record) error {
	ops, err := opsFor(rec.Table)
	if err != nil {
		return err
	}
	switch rec.Kind() {
	case undo.KindInsert:
		after, err := entity.Decode(rec.Table, rec.After)
		if err != nil {
			return err
		}
		return deleteRow(sc, ops, after)
	case undo.KindUpdate:
		before, err := entity.Decode(rec.Table, rec.Before)
		if err != nil {
			return err
		}
		return updateRow(sc, ops, before)
	default:
		before, err := entity.Decode(rec.Table, rec.Before)
		if err != nil {
			return err
		}
		return insertRow(sc, ops, before)
	}
}

// applyForward replays one record as originally committed.
func applyForward(sc *store.Scope, rec undo.Record) error {
	ops, err := opsFor(rec.Table)
	if err != nil {
		return err
	}
	switch rec.Kind() {
	case undo.KindInsert:
		after, err := entity.Decode(rec.Table, rec.After)
		if err != nil {
			return err
		}
		return insertRow(sc, ops, after)
	case undo.KindUpdate:
		after, err := entity.Decode(rec.Table, rec.After)
		if err != nil {
			return err
		}
		return updateRow(sc, ops, after)
	default:
		before, err := entity.Decode(rec.Table, rec.Before)
		if err != nil {
			return err
		}
		return deleteRow(sc, ops, before)
	}
}
