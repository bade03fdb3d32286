// Package app assembles the server: store, services, scheduler and HTTP.
package app

import (
	"context"
	"fmt"
	"net/http"

	"foliodb/pkg/auth"
	"foliodb/pkg/backup"
	"foliodb/pkg/config"
	"foliodb/pkg/kv"
	"foliodb/pkg/logger"
	"foliodb/pkg/logs"
	"foliodb/pkg/store"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	client  kv.Client
	store   *store.Store
	logs    *logs.Service
	backups *backup.Orchestrator
	auth    *auth.Service

	srv *http.Server
}

// New opens the store and builds the services. A missing store path is not
// fatal: the server starts degraded and every repository call reports the
// store as unconfigured. Call Run to start the HTTP server and block until
// shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	client := kv.FromConfig(eff.StorePath)
	st := store.New(client)

	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		client:    client,
		store:     st,
		logs:      logs.NewService(client),
		backups:   backup.New(st, eff.Config.BackupMaxBytes()),
		auth:      auth.NewService(client),
	}

	if email, pass := eff.Config.Auth.AdminEmail, eff.Config.Auth.AdminPassword; email != "" && pass != "" {
		if err := a.auth.EnsureUser(email, pass, "admin"); err != nil {
			logger.Warn("admin_bootstrap_failed", "email", email, "error", err)
		}
	}
	return a, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or a fatal
// server error occurs.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()
	a.logs.Log("info", "server starting", "system")

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdownHTTP()
		a.closeStore()
		return nil
	case err := <-errCh:
		a.closeStore()
		return err
	}
}

// Backups exposes the orchestrator for the snapshot scheduler.
func (a *App) Backups() *backup.Orchestrator { return a.backups }

func (a *App) closeStore() {
	if a.client == nil {
		return
	}
	if err := a.client.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
}

// validateConfig rejects configurations the server cannot start with.
func validateConfig(eff config.EffectiveConfigResult) error {
	if eff.Config == nil {
		return fmt.Errorf("no effective configuration")
	}
	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert == "") != (key == "") {
		return fmt.Errorf("TLS requires both cert_file and key_file")
	}
	if eff.Addr == "" {
		return fmt.Errorf("no listen address resolved")
	}
	return nil
}
