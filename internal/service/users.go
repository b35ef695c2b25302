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

// Users manages the accounts of the session's tenant.
type Users struct {
	runner  *store.Runner
	session *auth.Session
	users   *repo.Users
	log     *zap.Logger
}

// NewUsers wires the account service.
func NewUsers(runner *store.Runner, session *auth.Session, log *zap.Logger) *Users {
	if log == nil {
		log = zap.NewNop()
	}
	return &Users{runner: runner, session: session, users: repo.NewUsers(), log: log}
}

// SaveUser upserts an account on the session's tenant. Granting a
// permission above the caller's own is refused. A non-empty
// plainPassword replaces the stored password; an empty one keeps
// whatever the payload carries.
func (s *Users) SaveUser(ctx context.Context, u *entity.User, plainPassword string) (*entity.User, error) {
	if u.Berechtigung > s.session.Permission() {
		return nil, apperr.Service("save user", apperr.T("user.permission.exceeds"))
	}
	u.MandantNr = s.session.Tenant()

	if plainPassword != "" {
		hash, err := auth.HashPassword(plainPassword)
		if err != nil {
			return nil, err
		}
		u.Passwort = hash
	}

	var saved *entity.User
	err := s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		saved, err = s.users.Save(sc, u, nil)
		if err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// GetUser reads one account of the session's tenant; (nil, nil) when
// absent.
func (s *Users) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	var u *entity.User
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		u, err = s.users.Get(sc, s.session.Tenant(), userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers enumerates the accounts of the session's tenant.
func (s *Users) ListUsers(ctx context.Context) ([]*entity.User, error) {
	var list []*entity.User
	err := s.runner.InTxSilent(ctx, s.session.Actor(), func(sc *store.Scope) error {
		var err error
		list, err = s.users.List(sc, s.session.Tenant())
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteUser removes an account of the session's tenant. The logged-in
// account itself is refused.
func (s *Users) DeleteUser(ctx context.Context, userID string) error {
	if userID == s.session.User() {
		return apperr.Service("delete user", apperr.T("user.delete.self"))
	}

	return s.runner.InTx(ctx, s.session.Actor(), func(sc *store.Scope) error {
		u, err := s.users.Get(sc, s.session.Tenant(), userID)
		if err != nil {
			return fmt.Errorf("read user: %w", err)
		}
		if u == nil {
			return apperr.NotFound("delete user")
		}
		return s.users.Delete(sc, u)
	})
}
