// ABOUTME: Application shell that builds every client component from configuration
// ABOUTME: Owns the credential backend, optional tsnet node, and shutdown ordering

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"tailscale.com/tsnet"

	"github.com/2389/bookdesk/internal/admin"
	"github.com/2389/bookdesk/internal/config"
	"github.com/2389/bookdesk/internal/consumer"
	"github.com/2389/bookdesk/internal/credstore"
	"github.com/2389/bookdesk/internal/guard"
	"github.com/2389/bookdesk/internal/resource"
	"github.com/2389/bookdesk/internal/session"
	"github.com/2389/bookdesk/internal/transport"
)

// App holds the assembled client.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Creds   credstore.Store
	API     *transport.Client
	Session *session.Session[admin.Business]
	Guard   *guard.Guard

	Services  *admin.Services
	Employees *admin.Employees
	Bookings  *admin.Bookings
	Hours     *admin.BusinessHours
	Business  *admin.Profile
	Me        *consumer.Profile

	sqlite      *credstore.SQLite
	tsnetServer *tsnet.Server
	unbind      func()
}

// New builds an App from cfg. With Tailscale enabled it starts a tsnet node, which
// blocks until the node is up or ctx ends.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	creds, err := a.openCredentials()
	if err != nil {
		return nil, err
	}
	a.Creds = creds

	httpClient, err := a.httpClient(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.API = transport.New(cfg.API.BaseURL, creds, transport.Options{
		HTTPClient: httpClient,
		Logger:     logger,
	})
	a.Session = session.New[admin.Business](a.API, session.Options{Logger: logger})
	a.Guard = &guard.Guard{
		Login:  LoginRoute(cfg.Routes),
		Home:   HomeRoute(cfg.Routes),
		Auth:   a.Session,
		Logger: logger.With("component", "guard"),
	}

	opts := resource.Options{Logger: logger}
	a.Services = admin.NewServices(a.API, opts)
	a.Employees = admin.NewEmployees(a.API, opts)
	a.Bookings = admin.NewBookings(a.API, opts)
	a.Hours = admin.NewBusinessHours(a.API, opts)
	a.Business = admin.NewProfile(a.API, opts)
	a.Me = consumer.NewProfile(a.API, opts)

	return a, nil
}

// LoginRoute is the unguarded route named by routes.Login.
func LoginRoute(routes config.RoutesConfig) guard.Route {
	return guard.Route{Name: routes.Login, Path: "/" + routes.Login}
}

// HomeRoute is the guarded route named by routes.Home.
func HomeRoute(routes config.RoutesConfig) guard.Route {
	return guard.Route{Name: routes.Home, Path: "/" + routes.Home, RequiresAuth: true}
}

// Start loads a stored session and sends n to the login route whenever the session
// is invalidated. Calling Start again replaces the previous navigator.
func (a *App) Start(ctx context.Context, n guard.Navigator) {
	if a.unbind != nil {
		a.unbind()
	}
	a.unbind = a.API.OnSessionInvalidated(a.Guard.BindInvalidation(n))
	a.Session.Init(ctx)
}

// Close releases everything New acquired. It is safe to call more than once.
func (a *App) Close() error {
	if a.unbind != nil {
		a.unbind()
		a.unbind = nil
	}
	if a.Session != nil {
		a.Session.Teardown()
	}
	if a.API != nil {
		a.API.Close()
		a.API = nil
	}

	var errs []error
	if a.sqlite != nil {
		if err := a.sqlite.Close(); err != nil {
			errs = append(errs, fmt.Errorf("credential store close: %w", err))
		}
		a.sqlite = nil
	}
	if a.tsnetServer != nil {
		if err := a.tsnetServer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("tailscale shutdown: %w", err))
		}
		a.tsnetServer = nil
	}
	return errors.Join(errs...)
}

func (a *App) openCredentials() (credstore.Store, error) {
	cc := a.Config.Credentials

	var store credstore.Store
	switch cc.Backend {
	case config.BackendMemory:
		store = credstore.NewMemory(cc.Namespace)
	case config.BackendFile:
		path := cc.Path
		if path == "" {
			p, err := credstore.DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		store = credstore.OpenFile(path, cc.Namespace, a.Logger)
	case config.BackendSQLite:
		path := cc.Path
		if path == "" {
			dir := config.ConfigDir()
			if dir == "" {
				return nil, errors.New("cannot determine config directory for credentials (set credentials.path explicitly)")
			}
			path = filepath.Join(dir, "credentials.db")
		}
		db, err := credstore.OpenSQLite(path, cc.Namespace, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("opening credential store: %w", err)
		}
		a.sqlite = db
		store = db
	default:
		return nil, fmt.Errorf("unknown credentials backend %q", cc.Backend)
	}

	if cc.EncryptionKey == "" {
		return store, nil
	}
	key, err := credstore.ParseKey(cc.EncryptionKey)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("credentials.encryption_key: %w", err)
	}
	return credstore.NewSealed(store, key, a.Logger), nil
}

func (a *App) httpClient(ctx context.Context) (*http.Client, error) {
	timeout := a.Config.API.Timeout
	tsCfg := a.Config.Tailscale
	if !tsCfg.Enabled {
		return &http.Client{Timeout: timeout}, nil
	}

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}

	authKey, err := resolveTailscaleAuthKey(tsCfg.AuthKey)
	if err != nil {
		return nil, err
	}

	a.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   authKey,
		Logf:      func(string, ...any) {},
	}

	a.Logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	if _, err := a.tsnetServer.Up(ctx); err != nil {
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}

	client := a.tsnetServer.HTTPClient()
	client.Timeout = timeout
	return client, nil
}

// resolveTailscaleStateDir returns the state directory, using default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "bookdesk", "tailscale"), nil
}

// resolveTailscaleAuthKey returns the auth key from config or environment.
func resolveTailscaleAuthKey(configured string) (string, error) {
	authKey := configured
	if authKey == "" {
		authKey = os.Getenv("TS_AUTHKEY")
	}
	if authKey == "" {
		return "", errors.New("tailscale auth key required: set auth_key in config or TS_AUTHKEY environment variable")
	}
	return authKey, nil
}
