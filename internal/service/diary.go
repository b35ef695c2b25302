package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"homebook/internal/apperr"
	"homebook/internal/auth"
	"homebook/internal/entity"
	"homebook/internal/repo"
	"homebook/internal/store"
)

// Diary manages diary entries and geolocated places of the session's
// tenant.
type Diary struct {
	runner  *store.Runner
	session *auth.Session
	entries *repo.DiaryEntries
	places  *repo.Places
	log     *zap.Logger
}

// NewDiary wires the diary service.
func NewDiary(runner *store.Runner, session *auth.Session, log *zap.Logger) *Diary {
	if log == nil {
		log = zap.NewNop()
	}
	return &Diary{
		runner:  runner,
		session: session,
		entries: repo.NewDiaryEntries(),
		places:  repo.NewPlaces(),
		log:     log,
	}
}

// SaveEntry upserts the entry of one day.
func (s *Diary) SaveEntry(ctx context.Context, day entity.Date, text string) (*entity.DiaryEntry, error) {
	var saved *entity.DiaryEntry
	err := s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		saved, err = s.entries.Save(sc, &entity.DiaryEntry{
			MandantNr: s.session.Tenant(),
			Datum:     day,
			Eintrag:   text,
		}, nil)
		if err != nil {
			return fmt.Errorf("save entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetEntry reads the entry of one day; (nil, nil) when absent.
func (s *Diary) GetEntry(ctx context.Context, day entity.Date) (*entity.DiaryEntry, error) {
	var e *entity.DiaryEntry
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		e, err = s.entries.Get(sc, s.session.Tenant(), day)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntries enumerates the tenant's diary.
func (s *Diary) ListEntries(ctx context.Context) ([]*entity.DiaryEntry, error) {
	var list []*entity.DiaryEntry
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		list, err = s.entries.List(sc, s.session.Tenant())
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteEntry removes the entry of one day.
func (s *Diary) DeleteEntry(ctx context.Context, day entity.Date) error {
	return s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		e, err := s.entries.Get(sc, s.session.Tenant(), day)
		if err != nil {
			return fmt.Errorf("read entry: %w", err)
		}
		if e == nil {
			return apperr.NotFound("delete entry")
		}
		return s.entries.Delete(sc, e)
	})
}

// SavePlace upserts a place. An empty UID allocates a fresh one.
func (s *Diary) SavePlace(ctx context.Context, p *entity.Place) (*entity.Place, error) {
	if p.UID == "" {
		p.UID = auth.NewUID()
	}
	p.MandantNr = s.session.Tenant()

	var saved *entity.Place
	err := s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		saved, err = s.places.Save(sc, p, nil)
		if err != nil {
			return fmt.Errorf("save place: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ListPlaces enumerates the tenant's places.
func (s *Diary) ListPlaces(ctx context.Context) ([]*entity.Place, error) {
	var list []*entity.Place
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		list, err = s.places.List(sc, s.session.Tenant())
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeletePlace removes a place by UID.
func (s *Diary) DeletePlace(ctx context.Context, uid string) error {
	return s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		p, err := s.places.Get(sc, s.session.Tenant(), uid)
		if err != nil {
			return fmt.Errorf("read place: %w", err)
		}
		if p == nil {
			return apperr.NotFound("delete place")
		}
		return s.places.Delete(sc, p)
	})
}
