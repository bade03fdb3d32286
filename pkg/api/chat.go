package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/utils"
)

func (a *API) registerChat(r *mux.Router) {
	// Visitors open sessions and append their own messages; listing and
	// deletion are admin-only.
	r.HandleFunc("/chat/sessions", a.createChatSession).Methods(http.MethodPost)
	r.Handle("/chat/sessions", a.admin(a.listChatSessions)).Methods(http.MethodGet)
	r.HandleFunc("/chat/sessions/{id}", a.getChatSession).Methods(http.MethodGet)
	r.HandleFunc("/chat/sessions/{id}/messages", a.appendChatMessage).Methods(http.MethodPost)
	r.Handle("/chat/sessions/{id}", a.admin(a.deleteChatSession)).Methods(http.MethodDelete)
}

func (a *API) createChatSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visitor string `json:"visitor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sess, err := a.Store.CreateChatSession(req.Visitor)
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, sess)
}

func (a *API) listChatSessions(w http.ResponseWriter, r *http.Request) {
	out, err := a.Store.ListChatSessions()
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

func (a *API) getChatSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Store.GetChatSession(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if sess == nil {
		utils.JSONError(w, http.StatusNotFound, "session not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, sess)
}

func (a *API) appendChatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == "" {
		utils.JSONError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}
	msg, err := a.Store.AppendChatMessage(mux.Vars(r)["id"], req.Role, req.Content)
	if err != nil {
		storeError(w, err)
		return
	}
	if msg == nil {
		utils.JSONError(w, http.StatusNotFound, "session not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, msg)
}

func (a *API) deleteChatSession(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Store.DeleteChatSession(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
