package service

import (
	"context"

	"go.uber.org/zap"

	"homebook/internal/auth"
	"homebook/internal/repo"
	"homebook/internal/store"
)

// UndoRedo exposes the history to callers under the session identity.
type UndoRedo struct {
	replayer *repo.Replayer
	session  *auth.Session
	log      *zap.Logger
}

// NewUndoRedo wires the history service.
func NewUndoRedo(runner *store.Runner, session *auth.Session, log *zap.Logger) *UndoRedo {
	if log == nil {
		log = zap.NewNop()
	}
	return &UndoRedo{replayer: repo.NewReplayer(runner), session: session, log: log}
}

// Undo reverts the most recent committed group; false when the
// history is empty.
func (s *UndoRedo) Undo(ctx context.Context) (bool, error) {
	return s.replayer.Undo(ctx, s.session.Actor())
}

// Redo re-applies the most recently undone group; false when nothing
// is redoable.
func (s *UndoRedo) Redo(ctx context.Context) (bool, error) {
	return s.replayer.Redo(ctx, s.session.Actor())
}
