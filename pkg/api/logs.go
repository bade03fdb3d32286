package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/auth"
	"foliodb/pkg/logs"
	"foliodb/pkg/utils"
)

func (a *API) registerLogs(r *mux.Router, pool *auth.LimiterPool) {
	// Ingest is open so the public site can report client-side events,
	// throttled per client IP.
	r.Handle("/logs", a.Auth.RateLimit(pool, http.HandlerFunc(a.ingestLog))).Methods(http.MethodPost)
	r.Handle("/logs", a.admin(a.listLogs)).Methods(http.MethodGet)
	r.Handle("/logs", a.admin(a.clearLogs)).Methods(http.MethodDelete)
}

// ingestLog accepts a log event and returns 202 immediately. Persistence is
// best-effort; the memory buffer always records the entry.
func (a *API) ingestLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level     string `json:"level"`
		Message   string `json:"message"`
		Source    string `json:"source"`
		UserEmail string `json:"user_email"`
		Details   string `json:"details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Message == "" {
		utils.JSONError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.Level == "" {
		req.Level = "info"
	}
	if req.Source == "" {
		req.Source = "site"
	}
	entry := a.Logs.LogDetailed(req.Level, req.Message, req.Source, req.UserEmail, req.Details)
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"id": entry.ID})
}

func (a *API) listLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries := a.Logs.GetLogs(logs.Filter{
		Level:  q.Get("level"),
		Source: q.Get("source"),
		Search: q.Get("search"),
		Window: q.Get("window"),
	})
	_ = utils.JSONWrite(w, http.StatusOK, entries)
}

// clearLogs wipes remote and buffered entries, then records the clear as
// the first entry of the fresh history.
func (a *API) clearLogs(w http.ResponseWriter, r *http.Request) {
	a.Logs.ClearLogs()
	a.Logs.Log("warning", "log history cleared", "admin")
	w.WriteHeader(http.StatusNoContent)
}
