package replica

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"homebook/internal/apperr"
	"homebook/internal/auth"
	"homebook/internal/entity"
	"homebook/internal/metrics"
	"homebook/internal/repo"
	"homebook/internal/store"
)

// Decision is the per-row outcome of the three-way merge.
type Decision string

const (
	DecisionInsert    Decision = "insert"
	DecisionNoop      Decision = "noop"
	DecisionMerge     Decision = "merge"
	DecisionKeep      Decision = "keep"
	DecisionOverwrite Decision = "overwrite"
)

// Request is the inbound replication document.
type Request struct {
	Token string                       `json:"token"`
	Table string                       `json:"table"`
	Mode  string                       `json:"mode"`
	Data  map[string][]json.RawMessage `json:"data"`
}

// Response summarises one merge run; it is returned verbatim as the
// endpoint's JSON body.
type Response struct {
	Table  string           `json:"table"`
	Mode   string           `json:"mode"`
	Rows   int              `json:"rows"`
	Counts map[Decision]int `json:"counts"`
}

// Merger applies inbound row batches to the local database. All rows
// of one request merge inside a single transactional scope, so a
// driver failure on any row rolls the whole batch back.
type Merger struct {
	runner  *store.Runner
	session *auth.Session
	diary   *repo.DiaryEntries
	places  *repo.Places
	persons *repo.Persons
	log     *zap.Logger
}

// NewMerger wires the merger.
func NewMerger(runner *store.Runner, session *auth.Session, log *zap.Logger) *Merger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{
		runner:  runner,
		session: session,
		diary:   repo.NewDiaryEntries(),
		places:  repo.NewPlaces(),
		persons: repo.NewPersons(),
		log:     log,
	}
}

// Merge runs the three-way merge for one request. The table must have
// a defined policy; only TB_Eintrag concatenates textual bodies, the
// other replicated tables overwrite instead.
func (m *Merger) Merge(ctx context.Context, req *Request) (*Response, error) {
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	var apply func(sc *store.Scope, raw json.RawMessage) (Decision, error)
	switch req.Table {
	case entity.TableDiary:
		apply = m.mergeDiary
	case entity.TablePlace:
		apply = m.mergePlace
	case entity.TablePerson:
		apply = m.mergePerson
	default:
		return nil, apperr.Service("merge", apperr.T("replica.table.unknown", req.Table))
	}

	rows := req.Data[req.Table]
	resp := &Response{
		Table:  req.Table,
		Mode:   req.Mode,
		Rows:   len(rows),
		Counts: make(map[Decision]int),
	}

	err = m.runner.InTx(ctx, m.session.Actor(), func(sc *store.Scope) error {
		for i, raw := range rows {
			decision, err := apply(sc, raw)
			if err != nil {
				return fmt.Errorf("merge row %d: %w", i, err)
			}
			resp.Counts[decision]++
			metrics.Merges.WithLabelValues(string(decision)).Inc()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("merge applied",
		zap.String("table", req.Table),
		zap.Int("rows", resp.Rows),
		zap.Int("window", mode.Window),
	)
	return resp, nil
}

// decide applies the timestamp rule to a stored/remote audit pair,
// assuming the rows were already found business-unequal.
func decide(stored, remote *entity.Audit) Decision {
	differentLineage := remote.CreatedAt != nil && !entity.EqualTime(remote.CreatedAt, stored.CreatedAt)
	if differentLineage {
		return DecisionMerge
	}
	localNewer := stored.ModifiedAt != nil &&
		(remote.ModifiedAt == nil || stored.ModifiedAt.After(*remote.ModifiedAt))
	if localNewer {
		return DecisionKeep
	}
	return DecisionOverwrite
}

func (m *Merger) mergeDiary(sc *store.Scope, raw json.RawMessage) (Decision, error) {
	var remote entity.DiaryEntry
	if err := json.Unmarshal(raw, &remote); err != nil {
		return "", apperr.Service("decode row", err.Error())
	}
	remote.MandantNr = m.session.Tenant()

	stored, err := m.diary.Get(sc, remote.MandantNr, remote.Datum)
	if err != nil {
		return "", err
	}
	if stored == nil {
		return DecisionInsert, m.diary.Insert(sc, &remote)
	}
	if stored.BusinessEqual(&remote) {
		return DecisionNoop, nil
	}

	switch d := decide(&stored.Audit, &remote.Audit); d {
	case DecisionMerge:
		// Both devices wrote this day independently: keep both bodies
		// and take over the remote lineage. The inbound snapshot is the
		// server's view, so it gets the Server label.
		merged := remote
		merged.Eintrag = "Server: " + remote.Eintrag + "\nLokal: " + stored.Eintrag
		return d, m.diary.Update(sc, &merged)
	case DecisionKeep:
		return d, nil
	default:
		return d, m.diary.Update(sc, &remote)
	}
}

func (m *Merger) mergePlace(sc *store.Scope, raw json.RawMessage) (Decision, error) {
	var remote entity.Place
	if err := json.Unmarshal(raw, &remote); err != nil {
		return "", apperr.Service("decode row", err.Error())
	}
	remote.MandantNr = m.session.Tenant()

	stored, err := m.places.Get(sc, remote.MandantNr, remote.UID)
	if err != nil {
		return "", err
	}
	if stored == nil {
		return DecisionInsert, m.places.Insert(sc, &remote)
	}
	if stored.BusinessEqual(&remote) {
		return DecisionNoop, nil
	}

	// No free-text body to concatenate: a diverged lineage overwrites.
	switch d := decide(&stored.Audit, &remote.Audit); d {
	case DecisionKeep:
		return d, nil
	case DecisionMerge:
		return DecisionOverwrite, m.places.Update(sc, &remote)
	default:
		return d, m.places.Update(sc, &remote)
	}
}

func (m *Merger) mergePerson(sc *store.Scope, raw json.RawMessage) (Decision, error) {
	var remote entity.Person
	if err := json.Unmarshal(raw, &remote); err != nil {
		return "", apperr.Service("decode row", err.Error())
	}
	remote.MandantNr = m.session.Tenant()

	stored, err := m.persons.Get(sc, remote.MandantNr, remote.UID)
	if err != nil {
		return "", err
	}
	if stored == nil {
		return DecisionInsert, m.persons.Insert(sc, &remote)
	}
	if stored.BusinessEqual(&remote) {
		return DecisionNoop, nil
	}

	switch d := decide(&stored.Audit, &remote.Audit); d {
	case DecisionKeep:
		return d, nil
	case DecisionMerge:
		return DecisionOverwrite, m.persons.Update(sc, &remote)
	default:
		return d, m.persons.Update(sc, &remote)
	}
}
