package cli

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"homebook/internal/auth"
	"homebook/internal/params"
	"homebook/internal/repo"
	"homebook/internal/store"
	"homebook/internal/undo"
)

// App is the wired process: settings document, database, session and
// the login protocol. Commands build one App, use it, close it.
type App struct {
	Settings *params.Store
	Store    *store.Store
	Runner   *store.Runner
	Session  *auth.Session
	Auth     *auth.Authenticator
	Log      *zap.Logger
}

// newApp loads the settings document and opens the database. Both
// paths fall back to the defaults under the user's home.
func newApp(settingsPath, dbPath string, log *zap.Logger) (*App, error) {
	if settingsPath == "" {
		settingsPath = params.DefaultSettingsPath()
	}
	settings := params.NewStore(settingsPath)
	if err := settings.Load(); err != nil {
		return nil, WrapExitError(ExitParameterError, "load settings", err)
	}

	if dbPath == "" {
		dbPath = params.DefaultDatabasePath()
	}
	st, err := store.Open(dbPath, log)
	if err != nil {
		return nil, WrapExitError(ExitParameterError, "open database", err)
	}

	runner := store.NewRunner(st, undo.NewStack(), log)
	session := auth.NewSession()
	return &App{
		Settings: settings,
		Store:    st,
		Runner:   runner,
		Session:  session,
		Auth:     auth.NewAuthenticator(runner, session, log),
		Log:      log,
	}, nil
}

// Close releases the database.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Log.Warn("close database", zap.Error(err))
	}
}

// login resolves tenant and user from flags or the remembered
// settings, runs the login protocol and persists the memory of it.
func (a *App) login(ctx context.Context, tenant int, user, password string, persist bool) error {
	if tenant == 0 {
		remembered := a.Settings.Get(params.KeyLoginClient)
		n, err := strconv.Atoi(remembered)
		if err != nil {
			return WrapExitError(ExitParameterError,
				fmt.Sprintf("remembered login client %q is not a number", remembered), err)
		}
		tenant = n
	}
	if user == "" {
		user = a.Settings.Get(params.KeyLoginUser)
	}

	if err := a.Auth.Login(ctx, tenant, user, password, persist); err != nil {
		return err
	}

	a.Settings.Put(params.KeyLoginClient, strconv.Itoa(tenant))
	a.Settings.Put(params.KeyLoginUser, user)
	if err := a.Settings.SaveFile(); err != nil {
		return err
	}
	return a.Runner.InTx(ctx, a.Session.Actor(), func(sc *store.Scope) error {
		return a.Settings.SaveDB(sc, repo.NewParameters(), tenant)
	})
}
