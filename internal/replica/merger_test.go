package replica

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"homebook/internal/apperr"
	"homebook/internal/auth"
	"homebook/internal/entity"
	"homebook/internal/repo"
	"homebook/internal/store"
	"homebook/internal/undo"
)

func newTestMerger(t *testing.T) (*Merger, *store.Runner, *auth.Session) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	runner := store.NewRunner(s, undo.NewStack(), nil)
	session := auth.NewSession()

	// Log in through the regular bootstrap path.
	err = runner.InTx(context.Background(), store.NewActor("seed"), func(sc *store.Scope) error {
		_, err := repo.NewUsers().Save(sc, &entity.User{
			MandantNr: 1, BenutzerID: entity.BootstrapUserID,
		}, nil)
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	a := auth.NewAuthenticator(runner, session, nil)
	if err := a.Login(context.Background(), 1, "alice", "", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	return NewMerger(runner, session, nil), runner, session
}

func seedDiary(t *testing.T, r *store.Runner, entries ...*entity.DiaryEntry) {
	t.Helper()
	err := r.InTxSilent(context.Background(), store.NewActor("seed"), func(sc *store.Scope) error {
		diary := repo.NewDiaryEntries()
		for _, e := range entries {
			if err := diary.Insert(sc, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed diary: %v", err)
	}
}

func rawRows(t *testing.T, rows ...interface{}) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			t.Fatalf("marshal row: %v", err)
		}
		out = append(out, b)
	}
	return out
}

func ts(t time.Time) *time.Time { return &t }

// mergeTrace is the deterministic projection compared against the
// golden file.
type mergeTrace struct {
	Decision   string     `json:"decision"`
	Datum      string     `json:"datum"`
	Eintrag    string     `json:"eintrag"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

func TestMerge_DiaryThreeWay(t *testing.T) {
	m, runner, session := newTestMerger(t)
	ctx := context.Background()

	storedCreated := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	olderModified := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	newerModified := time.Date(2024, 4, 3, 10, 0, 0, 0, time.UTC)
	remoteCreated := time.Date(2024, 4, 5, 9, 0, 0, 0, time.UTC)

	day := func(d int) entity.Date { return entity.NewDate(2024, 5, d) }

	seedDiary(t, runner,
		&entity.DiaryEntry{MandantNr: 1, Datum: day(2), Eintrag: "Unverändert",
			Audit: entity.Audit{CreatedAt: ts(storedCreated)}},
		&entity.DiaryEntry{MandantNr: 1, Datum: day(3), Eintrag: "Lokaltext",
			Audit: entity.Audit{CreatedAt: ts(storedCreated)}},
		&entity.DiaryEntry{MandantNr: 1, Datum: day(4), Eintrag: "Lokal neuer",
			Audit: entity.Audit{CreatedAt: ts(storedCreated), ModifiedAt: ts(newerModified)}},
		&entity.DiaryEntry{MandantNr: 1, Datum: day(5), Eintrag: "Veraltet",
			Audit: entity.Audit{CreatedAt: ts(storedCreated), ModifiedAt: ts(olderModified)}},
	)

	req := &Request{
		Token: session.User(),
		Table: entity.TableDiary,
		Mode:  "read_30d",
		Data: map[string][]json.RawMessage{
			entity.TableDiary: rawRows(t,
				&entity.DiaryEntry{MandantNr: 1, Datum: day(1), Eintrag: "Erster Eintrag",
					Audit: entity.Audit{CreatedAt: ts(remoteCreated)}},
				&entity.DiaryEntry{MandantNr: 1, Datum: day(2), Eintrag: "Unverändert",
					Audit: entity.Audit{CreatedAt: ts(remoteCreated)}},
				&entity.DiaryEntry{MandantNr: 1, Datum: day(3), Eintrag: "Servertext",
					Audit: entity.Audit{CreatedAt: ts(remoteCreated)}},
				&entity.DiaryEntry{MandantNr: 1, Datum: day(4), Eintrag: "Remote älter",
					Audit: entity.Audit{CreatedAt: ts(storedCreated), ModifiedAt: ts(olderModified)}},
				&entity.DiaryEntry{MandantNr: 1, Datum: day(5), Eintrag: "Remote neuer",
					Audit: entity.Audit{CreatedAt: ts(storedCreated), ModifiedAt: ts(newerModified)}},
			),
		},
	}

	resp, err := m.Merge(ctx, req)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if resp.Rows != 5 {
		t.Errorf("rows = %d, want 5", resp.Rows)
	}
	want := map[Decision]int{
		DecisionInsert: 1, DecisionNoop: 1, DecisionMerge: 1,
		DecisionKeep: 1, DecisionOverwrite: 1,
	}
	for d, n := range want {
		if resp.Counts[d] != n {
			t.Errorf("count[%s] = %d, want %d", d, resp.Counts[d], n)
		}
	}

	decisions := []string{"insert", "noop", "merge", "keep", "overwrite"}
	var trace []mergeTrace
	err = runner.InTxSilent(ctx, session.Actor(), func(sc *store.Scope) error {
		diary := repo.NewDiaryEntries()
		for i := 1; i <= 5; i++ {
			e, err := diary.Get(sc, 1, day(i))
			if err != nil {
				return err
			}
			if e == nil {
				t.Fatalf("day %d missing after merge", i)
			}
			trace = append(trace, mergeTrace{
				Decision:   decisions[i-1],
				Datum:      e.Datum.String(),
				Eintrag:    e.Eintrag,
				CreatedAt:  e.CreatedAt,
				ModifiedAt: e.ModifiedAt,
			})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	traceJSON, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		t.Fatalf("marshal trace: %v", err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "merge_diary", traceJSON)
}

func TestMerge_DiaryBodiesKeepOriginLabels(t *testing.T) {
	m, runner, session := newTestMerger(t)
	ctx := context.Background()

	storedCreated := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	remoteCreated := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	day := entity.NewDate(2024, 6, 10)

	seedDiary(t, runner, &entity.DiaryEntry{
		MandantNr: 1, Datum: day, Eintrag: "L",
		Audit: entity.Audit{CreatedAt: ts(storedCreated)},
	})

	resp, err := m.Merge(ctx, &Request{
		Token: session.User(),
		Table: entity.TableDiary,
		Mode:  "read",
		Data: map[string][]json.RawMessage{
			entity.TableDiary: rawRows(t, &entity.DiaryEntry{
				MandantNr: 1, Datum: day, Eintrag: "R",
				Audit: entity.Audit{CreatedAt: ts(remoteCreated)},
			}),
		},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if resp.Counts[DecisionMerge] != 1 {
		t.Fatalf("counts = %v, want one merge", resp.Counts)
	}

	err = runner.InTxSilent(ctx, session.Actor(), func(sc *store.Scope) error {
		e, err := repo.NewDiaryEntries().Get(sc, 1, day)
		if err != nil {
			return err
		}
		// The inbound snapshot is the server's view of the day.
		if want := "Server: R\nLokal: L"; e.Eintrag != want {
			t.Errorf("merged body = %q, want %q", e.Eintrag, want)
		}
		if !entity.EqualTime(e.CreatedAt, ts(remoteCreated)) {
			t.Errorf("merged created_at = %v, want the inbound lineage", e.CreatedAt)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
}

func TestMerge_UnknownTableRejected(t *testing.T) {
	m, _, session := newTestMerger(t)

	_, err := m.Merge(context.Background(), &Request{
		Token: session.User(),
		Table: "FB_Konto",
		Mode:  "read",
	})
	if !apperr.IsService(err) {
		t.Fatalf("err = %v, want Service", err)
	}
	if msgs := apperr.UserMessages(err); len(msgs) == 0 {
		t.Error("unknown-table refusal carries no user message")
	}
}

func TestMerge_PlaceOverwritesInsteadOfMerging(t *testing.T) {
	m, runner, session := newTestMerger(t)
	ctx := context.Background()

	storedCreated := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	remoteCreated := time.Date(2024, 4, 5, 9, 0, 0, 0, time.UTC)

	err := runner.InTxSilent(ctx, store.NewActor("seed"), func(sc *store.Scope) error {
		return repo.NewPlaces().Insert(sc, &entity.Place{
			MandantNr: 1, UID: "ort-1", Bezeichnung: "Alter Name", Breite: 47.0,
			Audit: entity.Audit{CreatedAt: ts(storedCreated)},
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp, err := m.Merge(ctx, &Request{
		Token: session.User(),
		Table: entity.TablePlace,
		Mode:  "read",
		Data: map[string][]json.RawMessage{
			entity.TablePlace: rawRows(t, &entity.Place{
				MandantNr: 1, UID: "ort-1", Bezeichnung: "Neuer Name", Breite: 47.5,
				Audit: entity.Audit{CreatedAt: ts(remoteCreated)},
			}),
		},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if resp.Counts[DecisionOverwrite] != 1 {
		t.Errorf("counts = %v, want one overwrite (diverged lineage has no body to merge)", resp.Counts)
	}

	err = runner.InTxSilent(ctx, session.Actor(), func(sc *store.Scope) error {
		p, err := repo.NewPlaces().Get(sc, 1, "ort-1")
		if err != nil {
			return err
		}
		if p.Bezeichnung != "Neuer Name" || p.Breite != 47.5 {
			t.Errorf("stored place = %+v, want remote payload", p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in     string
		want   Mode
		wantOK bool
	}{
		{"read", Mode{}, true},
		{"read_30", Mode{Window: 30}, true},
		{"read_30d", Mode{Window: 30, Days: true}, true},
		{"write", Mode{}, false},
		{"read_", Mode{}, false},
		{"read_x", Mode{}, false},
	}
	for _, c := range cases {
		got, err := ParseMode(c.in)
		if c.wantOK && err != nil {
			t.Errorf("ParseMode(%q) failed: %v", c.in, err)
			continue
		}
		if !c.wantOK {
			if !apperr.IsService(err) {
				t.Errorf("ParseMode(%q) err = %v, want Service", c.in, err)
			}
			continue
		}
		if got != c.want {
			t.Errorf("ParseMode(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestValidateRequest(t *testing.T) {
	good := []byte(`{"token":"alice","table":"TB_Eintrag","mode":"read","data":{"TB_Eintrag":[]}}`)
	if err := ValidateRequest(good); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	bad := [][]byte{
		[]byte(`{"table":"TB_Eintrag","data":{}}`),          // token missing
		[]byte(`{"token":"","table":"TB_Eintrag","data":{}}`), // token empty
		[]byte(`{"token":"alice","table":"TB_Eintrag"}`),      // data missing
		[]byte(`{"token":"alice","table":"TB_Eintrag","data":{"TB_Eintrag":"x"}}`),
		[]byte(`not json`),
	}
	for _, body := range bad {
		if err := ValidateRequest(body); err == nil {
			t.Errorf("invalid request accepted: %s", body)
		}
	}
}
