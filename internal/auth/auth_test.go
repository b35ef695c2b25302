package auth

import (
	"context"
	"path/filepath"
	"testing"

	"homebook/internal/apperr"
	"homebook/internal/entity"
	"homebook/internal/params"
	"homebook/internal/repo"
	"homebook/internal/store"
	"homebook/internal/undo"
)

func newTestAuth(t *testing.T) (*Authenticator, *store.Runner, *Session) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	runner := store.NewRunner(s, undo.NewStack(), nil)
	session := NewSession()
	return NewAuthenticator(runner, session, nil), runner, session
}

func seedUser(t *testing.T, r *store.Runner, u *entity.User) {
	t.Helper()
	err := r.InTx(context.Background(), store.NewActor("seed"), func(sc *store.Scope) error {
		_, err := repo.NewUsers().Save(sc, u, nil)
		return err
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func paramValue(t *testing.T, r *store.Runner, tenant int, key string) string {
	t.Helper()
	var value string
	err := r.InTxSilent(context.Background(), store.NewActor("test"), func(sc *store.Scope) error {
		p, err := repo.NewParameters().Get(sc, tenant, key)
		if err != nil {
			return err
		}
		if p != nil {
			value = p.Value()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read parameter %s: %v", key, err)
	}
	return value
}

func TestLogin_RejectsBadArguments(t *testing.T) {
	a, _, session := newTestAuth(t)
	ctx := context.Background()

	if err := a.Login(ctx, 0, "martin", "", false); !apperr.IsService(err) {
		t.Errorf("tenant 0: err = %v, want Service", err)
	}
	if err := a.Login(ctx, 1, "", "", false); !apperr.IsService(err) {
		t.Errorf("empty user: err = %v, want Service", err)
	}
	if session.LoggedIn() {
		t.Error("rejected login must not bind the session")
	}
}

func TestLogin_PasswordVerification(t *testing.T) {
	a, r, session := newTestAuth(t)
	ctx := context.Background()

	hash, err := HashPassword("geheim")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	seedUser(t, r, &entity.User{MandantNr: 1, BenutzerID: "martin", Passwort: hash})

	if err := a.Login(ctx, 1, "martin", "falsch", false); !apperr.IsService(err) {
		t.Fatalf("wrong password: err = %v, want Service", err)
	}
	if err := a.Login(ctx, 1, "martin", "", false); !apperr.IsService(err) {
		t.Fatalf("empty password against stored hash: err = %v, want Service", err)
	}
	if err := a.Login(ctx, 1, "martin", "geheim", false); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if session.Tenant() != 1 || session.User() != "martin" {
		t.Errorf("session = (%d, %q), want (1, martin)", session.Tenant(), session.User())
	}
}

func TestLogin_EmptyBothAccepted(t *testing.T) {
	a, r, session := newTestAuth(t)
	seedUser(t, r, &entity.User{MandantNr: 1, BenutzerID: "gast"})

	if err := a.Login(context.Background(), 1, "gast", "", false); err != nil {
		t.Fatalf("empty/empty login rejected: %v", err)
	}
	if !session.LoggedIn() {
		t.Error("session not bound")
	}
}

func TestLogin_NoLoginParameterBypassesPassword(t *testing.T) {
	a, r, _ := newTestAuth(t)
	ctx := context.Background()

	hash, _ := HashPassword("geheim")
	seedUser(t, r, &entity.User{MandantNr: 1, BenutzerID: "Martin", Passwort: hash})
	err := r.InTx(ctx, store.NewActor("seed"), func(sc *store.Scope) error {
		// Case differs from the stored id on purpose.
		_, err := repo.NewParameters().SaveValue(sc, 1, params.KeyNoLogin, "martin")
		return err
	})
	if err != nil {
		t.Fatalf("seed parameter: %v", err)
	}

	if err := a.Login(ctx, 1, "Martin", "", true); err != nil {
		t.Fatalf("no-login user rejected: %v", err)
	}
}

func TestLogin_BootstrapRenamesSentinel(t *testing.T) {
	a, r, session := newTestAuth(t)
	ctx := context.Background()

	seedUser(t, r, &entity.User{
		MandantNr:    1,
		BenutzerID:   entity.BootstrapUserID,
		Berechtigung: entity.PermissionAdmin,
		AktPeriode:   2024,
		PersonNr:     7,
	})

	if err := a.Login(ctx, 1, "martin", "geheim", false); err != nil {
		t.Fatalf("bootstrap login rejected: %v", err)
	}
	if session.Permission() != entity.PermissionAdmin {
		t.Errorf("permission = %v, want Admin (copied from sentinel)", session.Permission())
	}

	err := r.InTxSilent(ctx, session.Actor(), func(sc *store.Scope) error {
		users := repo.NewUsers()
		if old, err := users.Get(sc, 1, entity.BootstrapUserID); err != nil || old != nil {
			t.Errorf("sentinel still present: (%v, %v)", old, err)
		}
		u, err := users.Get(sc, 1, "martin")
		if err != nil {
			return err
		}
		if u == nil {
			t.Fatal("renamed account missing")
		}
		if u.AktPeriode != 2024 || u.PersonNr != 7 {
			t.Errorf("period/person = (%d, %d), want (2024, 7)", u.AktPeriode, u.PersonNr)
		}
		if u.Passwort == nil || !passwordMatches(*u.Passwort, "geheim") {
			t.Error("supplied password not stored on the renamed account")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	// The login must not be repeatable through the bootstrap path.
	session.Logout()
	if err := a.Login(ctx, 1, "other", "x", false); !apperr.IsService(err) {
		t.Errorf("second bootstrap attempt: err = %v, want Service", err)
	}
}

func TestLogin_ReplicationUIDInitialisedOnce(t *testing.T) {
	a, r, _ := newTestAuth(t)
	ctx := context.Background()
	seedUser(t, r, &entity.User{MandantNr: 1, BenutzerID: "martin"})

	if err := a.Login(ctx, 1, "martin", "", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	uid := paramValue(t, r, 1, params.KeyReplicationUID)
	if len(uid) != 36 {
		t.Fatalf("replication uid = %q, want 36-char uuid", uid)
	}

	if err := a.Login(ctx, 1, "martin", "", false); err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again := paramValue(t, r, 1, params.KeyReplicationUID); again != uid {
		t.Errorf("replication uid changed on second login: %q -> %q", uid, again)
	}
}

func TestLogin_PersistSideEffects(t *testing.T) {
	a, r, _ := newTestAuth(t)
	ctx := context.Background()
	seedUser(t, r, &entity.User{MandantNr: 1, BenutzerID: "martin"})

	if err := a.Login(ctx, 1, "martin", "", true); err != nil {
		t.Fatalf("persist login: %v", err)
	}
	if got := paramValue(t, r, 1, params.KeyNoLogin); got != "martin" {
		t.Errorf("no-login after persist = %q, want martin", got)
	}

	if err := a.Login(ctx, 1, "martin", "", false); err != nil {
		t.Fatalf("non-persist login: %v", err)
	}
	if got := paramValue(t, r, 1, params.KeyNoLogin); got != "" {
		t.Errorf("no-login after clear = %q, want empty", got)
	}
}

func TestChangePassword(t *testing.T) {
	a, r, _ := newTestAuth(t)
	ctx := context.Background()
	seedUser(t, r, &entity.User{MandantNr: 1, BenutzerID: "martin"})

	if err := a.ChangePassword(ctx, "", "neu", false); !apperr.IsService(err) {
		t.Fatalf("change without login: err = %v, want Service", err)
	}

	if err := a.Login(ctx, 1, "martin", "", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := a.ChangePassword(ctx, "falsch", "neu", false); !apperr.IsService(err) {
		t.Fatalf("wrong old password: err = %v, want Service", err)
	}
	if err := a.ChangePassword(ctx, "", "neu", false); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if err := a.Login(ctx, 1, "martin", "", false); !apperr.IsService(err) {
		t.Errorf("old empty password still accepted: %v", err)
	}
	if err := a.Login(ctx, 1, "martin", "neu", false); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}
