package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/metrics"
	"homebook/internal/params"
	"homebook/internal/repo"
	"homebook/internal/store"
)

// Authenticator runs the login protocol against the database and
// mutates the session on acceptance.
type Authenticator struct {
	runner  *store.Runner
	session *Session
	users   *repo.Users
	params  *repo.Parameters
	log     *zap.Logger
}

// NewAuthenticator wires the login protocol.
func NewAuthenticator(runner *store.Runner, session *Session, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{
		runner:  runner,
		session: session,
		users:   repo.NewUsers(),
		params:  repo.NewParameters(),
		log:     log,
	}
}

func invalidLogin() error {
	return apperr.Service("login", apperr.T("login.invalid"))
}

// HashPassword derives the stored form of a password. Empty stays
// empty: an absent stored value means login without password.
func HashPassword(plain string) (*string, error) {
	if plain == "" {
		return nil, nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	s := string(h)
	return &s, nil
}

// passwordMatches checks a supplied password against the stored value.
// Stored values are bcrypt hashes; plain equality is kept as a
// fallback for rows imported from older databases.
func passwordMatches(stored, supplied string) bool {
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil {
		return true
	}
	return stored == supplied
}

// Login runs the acceptance algorithm for (tenant, userID, password)
// and, on success, binds the session to the account.
//
// Acceptance, in order: the tenant's OHNE_ANMELDUNG parameter names
// this user (case-insensitive); both stored and supplied passwords are
// empty; the supplied password verifies against the stored hash. When
// no such user row exists and the tenant still carries only the
// bootstrap sentinel account, the sentinel is renamed to userID with
// the supplied password and the login is accepted.
//
// persist controls whether OHNE_ANMELDUNG is set to (or cleared of)
// this user. The tenant's REPLIKATION_UID parameter is initialised on
// first accepted login.
func (a *Authenticator) Login(ctx context.Context, tenant int, userID, password string, persist bool) error {
	if tenant <= 0 || userID == "" {
		return invalidLogin()
	}

	var account *entity.User
	err := a.runner.InTx(ctx, store.NewActor(userID), func(sc *store.Scope) error {
		u, err := a.users.Get(sc, tenant, userID)
		if err != nil {
			return fmt.Errorf("login lookup: %w", err)
		}

		switch {
		case u != nil:
			if !a.accepts(sc, tenant, u, userID, password) {
				return invalidLogin()
			}
		default:
			u, err = a.bootstrap(sc, tenant, userID, password)
			if err != nil {
				return err
			}
			if u == nil {
				return invalidLogin()
			}
		}

		if err := a.applyPersist(sc, tenant, userID, persist); err != nil {
			return err
		}
		if err := a.ensureReplicationUID(sc, tenant); err != nil {
			return err
		}
		account = u
		return nil
	})
	if err != nil {
		return err
	}

	a.session.set(tenant, account.BenutzerID, account.Berechtigung)
	// A login is a tenant switch: replaying history recorded under the
	// previous identity would violate tenant isolation. The login's own
	// bootstrap writes are not undoable either.
	a.runner.Stack().Clear()
	metrics.Logins.Inc()
	a.log.Info("login accepted",
		zap.Int("tenant", tenant),
		zap.String("user", account.BenutzerID),
	)
	return nil
}

// accepts applies the three acceptance rules to an existing user row.
func (a *Authenticator) accepts(sc *store.Scope, tenant int, u *entity.User, userID, password string) bool {
	if p, err := a.params.Get(sc, tenant, params.KeyNoLogin); err == nil && p != nil {
		if v := p.Value(); v != "" && strings.EqualFold(v, userID) {
			return true
		}
	}
	stored := ""
	if u.Passwort != nil {
		stored = *u.Passwort
	}
	if stored == "" && password == "" {
		return true
	}
	return stored != "" && password != "" && passwordMatches(stored, password)
}

// bootstrap renames the sentinel account of a freshly initialised
// tenant. It applies only when the tenant holds exactly one user and
// that user is the sentinel; otherwise (nil, nil) is returned and the
// login is rejected.
func (a *Authenticator) bootstrap(sc *store.Scope, tenant int, userID, password string) (*entity.User, error) {
	list, err := a.users.List(sc, tenant)
	if err != nil {
		return nil, fmt.Errorf("bootstrap list: %w", err)
	}
	if len(list) != 1 || !strings.EqualFold(list[0].BenutzerID, entity.BootstrapUserID) {
		return nil, nil
	}

	sentinel := list[0]
	if err := a.users.Delete(sc, sentinel); err != nil {
		return nil, fmt.Errorf("bootstrap delete sentinel: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	replacement := &entity.User{
		MandantNr:    tenant,
		BenutzerID:   userID,
		Passwort:     hash,
		Berechtigung: sentinel.Berechtigung,
		AktPeriode:   sentinel.AktPeriode,
		PersonNr:     sentinel.PersonNr,
	}
	saved, err := a.users.Save(sc, replacement, nil)
	if err != nil {
		return nil, fmt.Errorf("bootstrap save: %w", err)
	}
	a.log.Info("bootstrap account renamed",
		zap.Int("tenant", tenant),
		zap.String("user", userID),
	)
	return saved, nil
}

// applyPersist reconciles OHNE_ANMELDUNG with the persist flag.
func (a *Authenticator) applyPersist(sc *store.Scope, tenant int, userID string, persist bool) error {
	p, err := a.params.Get(sc, tenant, params.KeyNoLogin)
	if err != nil {
		return fmt.Errorf("read no-login parameter: %w", err)
	}
	current := ""
	if p != nil {
		current = p.Value()
	}
	names := current != "" && strings.EqualFold(current, userID)

	switch {
	case !persist && names:
		_, err = a.params.SaveValue(sc, tenant, params.KeyNoLogin, "")
	case persist && !names:
		_, err = a.params.SaveValue(sc, tenant, params.KeyNoLogin, userID)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("update no-login parameter: %w", err)
	}
	return nil
}

// ensureReplicationUID initialises the tenant's replication uid once.
func (a *Authenticator) ensureReplicationUID(sc *store.Scope, tenant int) error {
	p, err := a.params.Get(sc, tenant, params.KeyReplicationUID)
	if err != nil {
		return fmt.Errorf("read replication uid: %w", err)
	}
	if p != nil && p.Value() != "" {
		return nil
	}
	if _, err := a.params.SaveValue(sc, tenant, params.KeyReplicationUID, NewUID()); err != nil {
		return fmt.Errorf("init replication uid: %w", err)
	}
	return nil
}

// ChangePassword verifies the current credentials of the logged-in
// user and replaces the stored password. persist carries the same
// OHNE_ANMELDUNG side effect as login.
func (a *Authenticator) ChangePassword(ctx context.Context, oldPassword, newPassword string, persist bool) error {
	if !a.session.LoggedIn() {
		return apperr.Service("change password", apperr.T("login.required"))
	}
	tenant := a.session.Tenant()
	userID := a.session.User()

	return a.runner.InTx(ctx, a.session.Actor(), func(sc *store.Scope) error {
		u, err := a.users.Get(sc, tenant, userID)
		if err != nil {
			return fmt.Errorf("change password lookup: %w", err)
		}
		if u == nil {
			return invalidLogin()
		}

		stored := ""
		if u.Passwort != nil {
			stored = *u.Passwort
		}
		ok := (stored == "" && oldPassword == "") ||
			(stored != "" && oldPassword != "" && passwordMatches(stored, oldPassword))
		if !ok {
			return apperr.Service("change password", apperr.T("password.invalid"))
		}

		hash, err := HashPassword(newPassword)
		if err != nil {
			return err
		}
		u.Passwort = hash
		if _, err := a.users.Save(sc, u, nil); err != nil {
			return fmt.Errorf("change password save: %w", err)
		}
		return a.applyPersist(sc, tenant, userID, persist)
	})
}
