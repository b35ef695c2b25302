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

// Clients manages tenants (MA_Mandant) and their bootstrap accounts.
type Clients struct {
	runner  *store.Runner
	session *auth.Session
	tenants *repo.Tenants
	users   *repo.Users
	params  *repo.Parameters
	diary   *repo.DiaryEntries
	places  *repo.Places
	persons *repo.Persons
	log     *zap.Logger
}

// NewClients wires the tenant service.
func NewClients(runner *store.Runner, session *auth.Session, log *zap.Logger) *Clients {
	if log == nil {
		log = zap.NewNop()
	}
	return &Clients{
		runner:  runner,
		session: session,
		tenants: repo.NewTenants(),
		users:   repo.NewUsers(),
		params:  repo.NewParameters(),
		diary:   repo.NewDiaryEntries(),
		places:  repo.NewPlaces(),
		persons: repo.NewPersons(),
		log:     log,
	}
}

// SaveClient upserts a tenant. Nr 0 allocates the next free number. A
// newly created tenant is initialised with the bootstrap sentinel
// account so that the first login can claim it.
func (s *Clients) SaveClient(ctx context.Context, t *entity.Tenant) (*entity.Tenant, error) {
	var saved *entity.Tenant
	err := s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		if t.Nr == 0 {
			max, err := s.tenants.MaxNr(sc)
			if err != nil {
				return fmt.Errorf("allocate tenant nr: %w", err)
			}
			t.Nr = max + 1
		}

		existing, err := s.tenants.Get(sc, t.Nr)
		if err != nil {
			return fmt.Errorf("read tenant: %w", err)
		}

		saved, err = s.tenants.Save(sc, t, nil)
		if err != nil {
			return fmt.Errorf("save tenant: %w", err)
		}

		if existing == nil {
			sentinel := &entity.User{
				MandantNr:    saved.Nr,
				BenutzerID:   entity.BootstrapUserID,
				Berechtigung: entity.PermissionAdmin,
			}
			if _, err := s.users.Save(sc, sentinel, nil); err != nil {
				return fmt.Errorf("init tenant account: %w", err)
			}
			s.log.Info("tenant initialised", zap.Int("nr", saved.Nr))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetClient reads one tenant; (nil, nil) when absent.
func (s *Clients) GetClient(ctx context.Context, nr int) (*entity.Tenant, error) {
	var t *entity.Tenant
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		t, err = s.tenants.Get(sc, nr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListClients enumerates all tenants.
func (s *Clients) ListClients(ctx context.Context) ([]*entity.Tenant, error) {
	var list []*entity.Tenant
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		list, err = s.tenants.List(sc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteClient removes a tenant with all of its rows. The tenant the
// session is logged into is refused.
func (s *Clients) DeleteClient(ctx context.Context, nr int) error {
	if nr == s.session.Tenant() {
		return apperr.Service("delete client", apperr.T("client.delete.current"))
	}

	return s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		t, err := s.tenants.Get(sc, nr)
		if err != nil {
			return fmt.Errorf("read tenant: %w", err)
		}
		if t == nil {
			return apperr.NotFound("delete client")
		}

		// All dependents first, each through its repository so the
		// whole removal forms one undo group.
		users, err := s.users.List(sc, nr)
		if err != nil {
			return err
		}
		for _, u := range users {
			if err := s.users.Delete(sc, u); err != nil {
				return err
			}
		}
		parameters, err := s.params.List(sc, nr)
		if err != nil {
			return err
		}
		for _, p := range parameters {
			if err := s.params.Delete(sc, p); err != nil {
				return err
			}
		}
		entries, err := s.diary.List(sc, nr)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.diary.Delete(sc, e); err != nil {
				return err
			}
		}
		places, err := s.places.List(sc, nr)
		if err != nil {
			return err
		}
		for _, p := range places {
			if err := s.places.Delete(sc, p); err != nil {
				return err
			}
		}
		persons, err := s.persons.List(sc, nr)
		if err != nil {
			return err
		}
		for _, p := range persons {
			if err := s.persons.Delete(sc, p); err != nil {
				return err
			}
		}

		return s.tenants.Delete(sc, t)
	})
}
