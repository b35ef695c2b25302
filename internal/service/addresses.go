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

// Addresses manages persons (AD_Person) of the session's tenant.
type Addresses struct {
	runner  *store.Runner
	session *auth.Session
	persons *repo.Persons
	log     *zap.Logger
}

// NewAddresses wires the address service.
func NewAddresses(runner *store.Runner, session *auth.Session, log *zap.Logger) *Addresses {
	if log == nil {
		log = zap.NewNop()
	}
	return &Addresses{runner: runner, session: session, persons: repo.NewPersons(), log: log}
}

// SavePerson upserts a person. An empty UID allocates a fresh one.
func (s *Addresses) SavePerson(ctx context.Context, p *entity.Person) (*entity.Person, error) {
	if p.UID == "" {
		p.UID = auth.NewUID()
	}
	p.MandantNr = s.session.Tenant()

	var saved *entity.Person
	err := s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		saved, err = s.persons.Save(sc, p, nil)
		if err != nil {
			return fmt.Errorf("save person: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetPerson reads one person; (nil, nil) when absent.
func (s *Addresses) GetPerson(ctx context.Context, uid string) (*entity.Person, error) {
	var p *entity.Person
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		p, err = s.persons.Get(sc, s.session.Tenant(), uid)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPersons enumerates the tenant's persons.
func (s *Addresses) ListPersons(ctx context.Context) ([]*entity.Person, error) {
	var list []*entity.Person
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		list, err = s.persons.List(sc, s.session.Tenant())
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeletePerson removes a person by UID.
func (s *Addresses) DeletePerson(ctx context.Context, uid string) error {
	return s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		p, err := s.persons.Get(sc, s.session.Tenant(), uid)
		if err != nil {
			return fmt.Errorf("read person: %w", err)
		}
		if p == nil {
			return apperr.NotFound("delete person")
		}
		return s.persons.Delete(sc, p)
	})
}
