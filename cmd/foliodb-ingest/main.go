// foliodb-ingest is a standalone high-throughput log ingest daemon. It
// accepts the same POST body as the server's /v1/logs endpoint but serves
// it over fasthttp, for deployments where client event volume would crowd
// the main API. It writes to the same store, so run it against a separate
// store path or behind the main server's lifecycle.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/valyala/fasthttp"

	"foliodb/pkg/config"
	"foliodb/pkg/kv"
	"foliodb/pkg/logger"
	"foliodb/pkg/logs"
)

func main() {
	config.LoadDotenv()
	addr := flag.String("addr", ":8082", "listen address")
	store := flag.String("store", "", "store path (defaults to FOLIODB_STORE_PATH)")
	flag.Parse()
	logger.Init()

	path := *store
	if path == "" {
		path = os.Getenv("FOLIODB_STORE_PATH")
	}
	if v := os.Getenv("FOLIODB_INGEST_ADDR"); v != "" && *addr == ":8082" {
		*addr = v
	}

	client := kv.FromConfig(path)
	svc := logs.NewService(client)

	h := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/healthz":
			ctx.Response.Header.Set("Content-Type", "application/json")
			ctx.SetStatusCode(fasthttp.StatusOK)
			_, _ = ctx.WriteString(`{"status":"ok"}`)
		case "/v1/logs":
			if !ctx.IsPost() {
				ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
				return
			}
			var req struct {
				Level     string `json:"level"`
				Message   string `json:"message"`
				Source    string `json:"source"`
				UserEmail string `json:"user_email"`
				Details   string `json:"details"`
			}
			if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Message == "" {
				ctx.SetStatusCode(fasthttp.StatusBadRequest)
				return
			}
			if req.Level == "" {
				req.Level = "info"
			}
			if req.Source == "" {
				req.Source = "site"
			}
			entry := svc.LogDetailed(req.Level, req.Message, req.Source, req.UserEmail, req.Details)
			ctx.Response.Header.Set("Content-Type", "application/json")
			ctx.SetStatusCode(fasthttp.StatusAccepted)
			_, _ = ctx.WriteString(`{"id":"` + entry.ID + `"}`)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}

	fmt.Printf("foliodb-ingest listening on %s\n", *addr)
	srv := &fasthttp.Server{
		Handler:            h,
		Name:               "foliodb-ingest",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "server exit: %v\n", err)
		os.Exit(1)
	}
}
