package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"foliodb/pkg/api"
	"foliodb/pkg/auth"
	"foliodb/pkg/banner"
	"foliodb/pkg/kv"
	"foliodb/pkg/telemetry"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" && a.commit != "" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" && a.buildDate != "" {
		verStr += " @ " + a.buildDate
	}
	banner.PrintWithEff(a.eff, verStr)
}

// handler assembles the full HTTP surface: API routes, readiness, docs and
// metrics, wrapped in the telemetry middleware.
func (a *App) handler() http.Handler {
	srv := &api.API{
		Store:   a.store,
		Logs:    a.logs,
		Backups: a.backups,
		Auth:    a.auth,
		Limiter: auth.LimiterConfig{
			RPS:   a.eff.Config.Auth.RateLimit.RPS,
			Burst: a.eff.Config.Auth.RateLimit.Burst,
		},
	}
	r := srv.Router()
	r.HandleFunc("/readyz", a.readyzHandler).Methods(http.MethodGet)
	r.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	r.Path("/openapi.yaml").Handler(http.FileServer(http.Dir("./docs")))
	r.Path("/metrics").Handler(promhttp.Handler())
	return telemetry.Middleware(r)
}

// readyzHandler probes the store with the bounded ping so a wedged backend
// cannot hang the health check.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if a.client == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready","store":"unconfigured"}`))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), kv.PingTimeout)
	defer cancel()
	if err := a.client.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready","store":"unreachable"}`))
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	_, _ = w.Write([]byte(`{"status":"ok","version":"` + ver + `"}`))
}

// startHTTP starts the HTTP server in a goroutine and returns a channel
// that will carry any server error.
func (a *App) startHTTP(_ context.Context) <-chan error {
	a.srv = &http.Server{Addr: a.eff.Addr, Handler: a.handler()}

	errCh := make(chan error, 1)
	go func() {
		cert := a.eff.Config.Server.TLS.CertFile
		key := a.eff.Config.Server.TLS.KeyFile
		if cert != "" && key != "" {
			errCh <- a.srv.ListenAndServeTLS(cert, key)
		} else {
			errCh <- a.srv.ListenAndServe()
		}
	}()
	return errCh
}

func (a *App) shutdownHTTP() {
	if a.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.srv.Shutdown(ctx)
}
