package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"homebook/internal/apperr"
	"homebook/internal/auth"
	"homebook/internal/entity"
	"homebook/internal/repo"
	"homebook/internal/store"
	"homebook/internal/testutil"
	"homebook/internal/undo"
)

// TraceEntry is the recorded outcome of one flow step. Timestamps are
// deliberately absent so that traces stay byte-stable across runs.
type TraceEntry struct {
	Op      string `json:"op"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// Runner executes scenarios against a fresh in-process stack. Each
// step advances a deterministic clock by two minutes, so consecutive
// writes always fall outside the audit change window.
type Runner struct {
	runner   *store.Runner
	session  *auth.Session
	authn    *auth.Authenticator
	diary    *repo.DiaryEntries
	replayer *repo.Replayer
	clock    *testutil.Clock
}

// NewRunner opens a throwaway database seeded with tenant 1 and its
// bootstrap sentinel account.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "scenario.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	runner := store.NewRunner(s, undo.NewStack(), nil)
	session := auth.NewSession()
	r := &Runner{
		runner:   runner,
		session:  session,
		authn:    auth.NewAuthenticator(runner, session, nil),
		diary:    repo.NewDiaryEntries(),
		replayer: repo.NewReplayer(runner),
		clock:    testutil.NewClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), 2*time.Minute),
	}

	err = runner.InTxSilent(context.Background(), r.clock.Actor("fixture"), func(sc *store.Scope) error {
		if _, err := repo.NewTenants().Save(sc, &entity.Tenant{Nr: 1, Beschreibung: "Szenario"}, nil); err != nil {
			return err
		}
		_, err := repo.NewUsers().Save(sc, &entity.User{
			MandantNr:    1,
			BenutzerID:   entity.BootstrapUserID,
			Berechtigung: entity.PermissionAdmin,
		}, nil)
		return err
	})
	if err != nil {
		t.Fatalf("seed scenario fixture: %v", err)
	}
	return r
}

// Run executes the scenario. Setup steps must succeed; flow steps are
// traced, including their failures.
func (r *Runner) Run(s *Scenario) ([]TraceEntry, error) {
	ctx := context.Background()

	for i, st := range s.Setup {
		entry := r.step(ctx, &st)
		if entry.Outcome != "ok" {
			return nil, fmt.Errorf("setup[%d] %s: %s (%s)", i, st.Op, entry.Outcome, entry.Detail)
		}
	}

	trace := make([]TraceEntry, 0, len(s.Flow))
	for _, st := range s.Flow {
		trace = append(trace, r.step(ctx, &st))
	}
	return trace, nil
}

func (r *Runner) actor() store.Actor {
	return r.clock.Actor(r.session.User())
}

func (r *Runner) step(ctx context.Context, st *Step) TraceEntry {
	switch st.Op {
	case OpLogin:
		return r.login(ctx, st)
	case OpSaveEntry:
		return r.saveEntry(ctx, st)
	case OpDeleteEntry:
		return r.deleteEntry(ctx, st)
	case OpExpectEntry:
		return r.expectEntry(ctx, st)
	case OpUndo:
		done, err := r.replayer.Undo(ctx, r.actor())
		return historyEntry(st.Op, done, err)
	case OpRedo:
		done, err := r.replayer.Redo(ctx, r.actor())
		return historyEntry(st.Op, done, err)
	default:
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: "unknown op"}
	}
}

func historyEntry(op string, done bool, err error) TraceEntry {
	switch {
	case err != nil:
		return TraceEntry{Op: op, Outcome: "error", Detail: errDetail(err)}
	case !done:
		return TraceEntry{Op: op, Outcome: "empty"}
	default:
		return TraceEntry{Op: op, Outcome: "ok"}
	}
}

// errDetail prefers the localised user message so that traces match
// what the surface would show.
func errDetail(err error) string {
	if msgs := apperr.UserMessages(err); len(msgs) > 0 {
		return msgs[0]
	}
	return err.Error()
}

func (r *Runner) login(ctx context.Context, st *Step) TraceEntry {
	if err := r.authn.Login(ctx, st.Client, st.User, st.Password, false); err != nil {
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: errDetail(err)}
	}
	return TraceEntry{
		Op:      st.Op,
		Outcome: "ok",
		Detail:  fmt.Sprintf("%s@%d", r.session.User(), r.session.Tenant()),
	}
}

func (r *Runner) saveEntry(ctx context.Context, st *Step) TraceEntry {
	day, err := entity.ParseDate(st.Date)
	if err != nil {
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: err.Error()}
	}

	undoBefore, _ := r.runner.Stack().Depths()
	err = r.runner.InTx(ctx, r.actor(), func(sc *store.Scope) error {
		_, err := r.diary.Save(sc, &entity.DiaryEntry{
			MandantNr: r.session.Tenant(),
			Datum:     day,
			Eintrag:   st.Text,
		}, nil)
		return err
	})
	if err != nil {
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: errDetail(err)}
	}

	undoAfter, _ := r.runner.Stack().Depths()
	if undoAfter == undoBefore {
		return TraceEntry{Op: st.Op, Outcome: "unchanged", Detail: st.Text}
	}
	return TraceEntry{Op: st.Op, Outcome: "ok", Detail: st.Text}
}

func (r *Runner) deleteEntry(ctx context.Context, st *Step) TraceEntry {
	day, err := entity.ParseDate(st.Date)
	if err != nil {
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: err.Error()}
	}

	err = r.runner.InTx(ctx, r.actor(), func(sc *store.Scope) error {
		e, err := r.diary.Get(sc, r.session.Tenant(), day)
		if err != nil {
			return err
		}
		if e == nil {
			return apperr.NotFound("delete entry")
		}
		return r.diary.Delete(sc, e)
	})
	if apperr.IsNotFound(err) {
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: "not found"}
	}
	if err != nil {
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: errDetail(err)}
	}
	return TraceEntry{Op: st.Op, Outcome: "ok"}
}

func (r *Runner) expectEntry(ctx context.Context, st *Step) TraceEntry {
	day, err := entity.ParseDate(st.Date)
	if err != nil {
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: err.Error()}
	}

	var got *entity.DiaryEntry
	err = r.runner.InTxSilent(ctx, r.actor(), func(sc *store.Scope) error {
		var err error
		got, err = r.diary.Get(sc, r.session.Tenant(), day)
		return err
	})
	if err != nil {
		return TraceEntry{Op: st.Op, Outcome: "error", Detail: errDetail(err)}
	}

	switch {
	case st.Absent && got == nil:
		return TraceEntry{Op: st.Op, Outcome: "ok", Detail: "absent"}
	case st.Absent:
		return TraceEntry{Op: st.Op, Outcome: "mismatch", Detail: got.Eintrag}
	case got == nil:
		return TraceEntry{Op: st.Op, Outcome: "mismatch", Detail: "absent"}
	case got.Eintrag != st.Text:
		return TraceEntry{Op: st.Op, Outcome: "mismatch", Detail: got.Eintrag}
	default:
		return TraceEntry{Op: st.Op, Outcome: "ok", Detail: got.Eintrag}
	}
}
