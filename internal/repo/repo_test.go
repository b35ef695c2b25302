package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/store"
	"homebook/internal/undo"
)

func newTestRunner(t *testing.T) *store.Runner {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return store.NewRunner(s, undo.NewStack(), nil)
}

func actorAt(user string, at time.Time) store.Actor {
	return store.Actor{User: user, Now: at.Truncate(time.Second)}
}

// inTx runs fn in a recording scope and fails the test on error.
func inTx(t *testing.T, r *store.Runner, actor store.Actor, fn func(sc *store.Scope) error) {
	t.Helper()
	if err := r.InTx(context.Background(), actor, fn); err != nil {
		t.Fatalf("InTx failed: %v", err)
	}
}

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestSave_InsertSetsCreatedOnly(t *testing.T) {
	r := newTestRunner(t)
	diary := NewDiaryEntries()

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		saved, err := diary.Save(sc, &entity.DiaryEntry{
			MandantNr: 1, Datum: entity.NewDate(2024, 3, 1), Eintrag: "a",
		}, nil)
		if err != nil {
			return err
		}
		if saved.CreatedBy == nil || *saved.CreatedBy != "alice" {
			t.Errorf("created_by = %v, want alice", saved.CreatedBy)
		}
		if saved.CreatedAt == nil || !saved.CreatedAt.Equal(t0) {
			t.Errorf("created_at = %v, want %v", saved.CreatedAt, t0)
		}
		if saved.ModifiedBy != nil || saved.ModifiedAt != nil {
			t.Error("fresh insert must not carry a modification stamp")
		}
		return nil
	})
}

func TestSave_ChangeWindow(t *testing.T) {
	r := newTestRunner(t)
	diary := NewDiaryEntries()
	day := entity.NewDate(2024, 3, 1)

	// t=0: insert.
	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		_, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 1, Datum: day, Eintrag: "a"}, nil)
		return err
	})

	// t=10s: inside the window, modified stays unset.
	inTx(t, r, actorAt("alice", t0.Add(10*time.Second)), func(sc *store.Scope) error {
		saved, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 1, Datum: day, Eintrag: "b"}, nil)
		if err != nil {
			return err
		}
		if saved.ModifiedAt != nil {
			t.Errorf("modified_at inside change window = %v, want nil", saved.ModifiedAt)
		}
		return nil
	})

	// t=120s: outside the window, modified is stamped.
	at := t0.Add(120 * time.Second)
	inTx(t, r, actorAt("alice", at), func(sc *store.Scope) error {
		saved, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 1, Datum: day, Eintrag: "c"}, nil)
		if err != nil {
			return err
		}
		if saved.ModifiedAt == nil || !saved.ModifiedAt.Equal(at) {
			t.Errorf("modified_at = %v, want %v", saved.ModifiedAt, at)
		}
		if saved.ModifiedBy == nil || *saved.ModifiedBy != "alice" {
			t.Errorf("modified_by = %v, want alice", saved.ModifiedBy)
		}
		return nil
	})
}

func TestSave_AuditMonotonic(t *testing.T) {
	r := newTestRunner(t)
	diary := NewDiaryEntries()
	day := entity.NewDate(2024, 3, 1)

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		_, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 1, Datum: day, Eintrag: "a"}, nil)
		return err
	})
	inTx(t, r, actorAt("bob", t0.Add(2*time.Hour)), func(sc *store.Scope) error {
		saved, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 1, Datum: day, Eintrag: "b"}, nil)
		if err != nil {
			return err
		}
		if saved.ModifiedAt == nil || saved.CreatedAt == nil {
			t.Fatal("both stamps expected after a late update")
		}
		if saved.ModifiedAt.Before(*saved.CreatedAt) {
			t.Errorf("modified_at %v before created_at %v", saved.ModifiedAt, saved.CreatedAt)
		}
		return nil
	})
}

func TestSave_BusinessEqualNoOp(t *testing.T) {
	r := newTestRunner(t)
	diary := NewDiaryEntries()
	day := entity.NewDate(2024, 3, 1)

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		_, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 1, Datum: day, Eintrag: "same"}, nil)
		return err
	})

	// Second identical save: no physical write, no undo group.
	err := r.InTx(context.Background(), actorAt("alice", t0.Add(5*time.Minute)), func(sc *store.Scope) error {
		saved, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 1, Datum: day, Eintrag: "same"}, nil)
		if err != nil {
			return err
		}
		if saved.ModifiedAt != nil {
			t.Error("no-op save must not refresh modification stamp")
		}
		if !sc.Batch().Empty() {
			t.Errorf("no-op save captured %d records", sc.Batch().Len())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	if u, _ := r.Stack().Depths(); u != 1 {
		t.Errorf("undo depth = %d, want 1 (second save pushed no group)", u)
	}
}

func TestSave_CreatedOverride(t *testing.T) {
	r := newTestRunner(t)
	diary := NewDiaryEntries()
	remoteBy := "remote"
	remoteAt := t0.Add(-24 * time.Hour)

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		saved, err := diary.Save(sc,
			&entity.DiaryEntry{MandantNr: 1, Datum: entity.NewDate(2024, 2, 28), Eintrag: "r"},
			&AuditOverride{CreatedBy: &remoteBy, CreatedAt: &remoteAt},
		)
		if err != nil {
			return err
		}
		if saved.CreatedBy == nil || *saved.CreatedBy != "remote" {
			t.Errorf("created_by = %v, want remote", saved.CreatedBy)
		}
		if saved.CreatedAt == nil || !saved.CreatedAt.Equal(remoteAt) {
			t.Errorf("created_at = %v, want %v", saved.CreatedAt, remoteAt)
		}
		return nil
	})
}

func TestUpdate_MissingRowIsNotFound(t *testing.T) {
	r := newTestRunner(t)
	diary := NewDiaryEntries()

	err := r.InTx(context.Background(), actorAt("alice", t0), func(sc *store.Scope) error {
		return diary.Update(sc, &entity.DiaryEntry{MandantNr: 1, Datum: entity.NewDate(2030, 1, 1), Eintrag: "x"})
	})
	if !apperr.IsNotFound(err) {
		t.Errorf("Update on absent row = %v, want NotFound", err)
	}
	if u, _ := r.Stack().Depths(); u != 0 {
		t.Errorf("failed call must not push an undo group, depth = %d", u)
	}
}

func TestList_TenantIsolation(t *testing.T) {
	r := newTestRunner(t)
	diary := NewDiaryEntries()
	day := entity.NewDate(2024, 3, 1)

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		if _, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 1, Datum: day, Eintrag: "t1"}, nil); err != nil {
			return err
		}
		_, err := diary.Save(sc, &entity.DiaryEntry{MandantNr: 2, Datum: day, Eintrag: "t2"}, nil)
		return err
	})

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		list, err := diary.List(sc, 1)
		if err != nil {
			return err
		}
		if len(list) != 1 {
			t.Fatalf("List(1) returned %d rows, want 1", len(list))
		}
		if list[0].Eintrag != "t1" || list[0].MandantNr != 1 {
			t.Errorf("List(1) returned foreign row: %+v", list[0])
		}
		return nil
	})
}

func TestGet_AbsentRowIsNilNil(t *testing.T) {
	r := newTestRunner(t)
	users := NewUsers()

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		u, err := users.Get(sc, 1, "nobody")
		if err != nil {
			return err
		}
		if u != nil {
			t.Errorf("Get on empty table = %+v, want nil", u)
		}
		return nil
	})
}

func TestSave_RoundTripThroughDriver(t *testing.T) {
	r := newTestRunner(t)
	persons := NewPersons()
	vorname := "Ada"
	geburt := entity.NewDate(1815, 12, 10)
	payload := &entity.Person{
		MandantNr:  1,
		UID:        "p-1",
		Name:       "Lovelace",
		Vorname:    &vorname,
		Geburt:     &geburt,
		Geschlecht: entity.GenderFemale,
	}

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		_, err := persons.Save(sc, payload, nil)
		return err
	})

	inTx(t, r, actorAt("alice", t0), func(sc *store.Scope) error {
		got, err := persons.Get(sc, 1, "p-1")
		if err != nil {
			return err
		}
		if got == nil {
			t.Fatal("person not found after save")
		}
		if !got.BusinessEqual(payload) {
			t.Errorf("driver round trip changed payload: %+v", got)
		}
		return nil
	})
}
