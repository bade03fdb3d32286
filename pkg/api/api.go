// Package api wires the HTTP surface: public content reads, admin-gated
// mutations, log ingest, backups and site settings. Handlers stay thin;
// index maintenance and filtering live in the store.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/auth"
	"foliodb/pkg/backup"
	"foliodb/pkg/logger"
	"foliodb/pkg/logs"
	"foliodb/pkg/store"
)

// API holds the services the handlers dispatch to.
type API struct {
	Store   *store.Store
	Logs    *logs.Service
	Backups *backup.Orchestrator
	Auth    *auth.Service
	Limiter auth.LimiterConfig
}

// Router assembles the full route table.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", a.health).Methods(http.MethodGet)

	pool := auth.NewLimiterPool(a.Limiter)
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.Handle("/auth/login", a.Auth.RateLimit(pool, http.HandlerFunc(a.login))).Methods(http.MethodPost)
	v1.Handle("/auth/logout", a.admin(a.logout)).Methods(http.MethodPost)
	v1.Handle("/auth/me", a.admin(a.whoami)).Methods(http.MethodGet)

	a.registerPosts(v1)
	a.registerProjects(v1)
	a.registerSkills(v1)
	a.registerAchievements(v1)
	a.registerMedia(v1)
	a.registerTemplates(v1)
	a.registerContact(v1)
	a.registerChat(v1)
	// Ingest tolerates much more traffic than login before throttling.
	ingestCfg := a.Limiter
	if ingestCfg.RPS <= 0 {
		ingestCfg.RPS = 5
	}
	if ingestCfg.Burst <= 0 {
		ingestCfg.Burst = 10
	}
	ingestCfg.RPS *= 10
	ingestCfg.Burst *= 10
	a.registerLogs(v1, auth.NewLimiterPool(ingestCfg))
	a.registerBackups(v1)
	a.registerSettings(v1)

	logger.Info("routes_registered")
	return r
}

// admin wraps a handler with session authentication.
func (a *API) admin(h http.HandlerFunc) http.Handler {
	return a.Auth.RequireSession(h)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !a.Store.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"degraded","store":"unavailable"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok","service":"foliodb"}`))
}
