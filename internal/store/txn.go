package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"homebook/internal/metrics"
	"homebook/internal/undo"
)

// Actor identifies who is mutating and at which instant. Now is
// captured once per service call (second granularity) so that every
// audit field produced by one call shares a timestamp.
type Actor struct {
	User string
	Now  time.Time
}

// NewActor builds an actor with the current wall time truncated to
// whole seconds.
func NewActor(user string) Actor {
	return Actor{User: user, Now: time.Now().Truncate(time.Second)}
}

// Scope is one transactional service call: a driver transaction, the
// acting identity, and the pending change batch the repositories
// append to. Scopes are created by Runner and never outlive the call.
type Scope struct {
	ctx   context.Context
	tx    *sql.Tx
	actor Actor
	batch *undo.Batch
}

// Ctx returns the context of the service call.
func (sc *Scope) Ctx() context.Context { return sc.ctx }

// Tx returns the driver transaction.
func (sc *Scope) Tx() *sql.Tx { return sc.tx }

// Actor returns the acting identity of the call.
func (sc *Scope) Actor() Actor { return sc.actor }

// Batch returns the pending change batch.
func (sc *Scope) Batch() *undo.Batch { return sc.batch }

// Runner opens scopes and owns the commit protocol: commit the driver
// transaction first, and only if that succeeds push the batch onto
// the undo stack. A failed call rolls back and discards the batch.
type Runner struct {
	store *Store
	stack *undo.Stack
	log   *zap.Logger
}

// NewRunner creates a runner bound to a store and the process-wide
// undo stack.
func NewRunner(s *Store, stack *undo.Stack, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{store: s, stack: stack, log: log}
}

// Stack exposes the undo stack for the replayer.
func (r *Runner) Stack() *undo.Stack { return r.stack }

// InTx runs fn inside a fresh scope. On success the transaction is
// committed and a non-empty batch becomes one undo group, clearing
// the redo side.
func (r *Runner) InTx(ctx context.Context, actor Actor, fn func(sc *Scope) error) error {
	return r.run(ctx, actor, true, fn)
}

// InTxSilent runs fn inside a fresh scope whose batch is discarded
// after commit. The undo/redo replayer uses it: applying an inverse
// batch must not itself become undoable, the original batch just
// moves between the two sides of the stack.
func (r *Runner) InTxSilent(ctx context.Context, actor Actor, fn func(sc *Scope) error) error {
	return r.run(ctx, actor, false, fn)
}

func (r *Runner) run(ctx context.Context, actor Actor, record bool, fn func(sc *Scope) error) error {
	if actor.Now.IsZero() {
		actor.Now = time.Now().Truncate(time.Second)
	}

	tx, err := r.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	sc := &Scope{ctx: ctx, tx: tx, actor: actor, batch: &undo.Batch{}}

	if err := fn(sc); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			r.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	if record && !sc.batch.Empty() {
		r.stack.Push(sc.batch)
		metrics.Commits.Inc()
		r.log.Debug("undo group pushed",
			zap.Int("records", sc.batch.Len()),
			zap.String("user", actor.User),
		)
	}
	return nil
}
