package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/store"
	"foliodb/pkg/utils"
)

func (a *API) registerContact(r *mux.Router) {
	// Submission is the one public write on the whole surface.
	r.HandleFunc("/contact", a.submitContact).Methods(http.MethodPost)
	r.Handle("/contact", a.admin(a.listContact)).Methods(http.MethodGet)
	r.Handle("/contact/{id}", a.admin(a.getContact)).Methods(http.MethodGet)
	r.Handle("/contact/{id}", a.admin(a.updateContact)).Methods(http.MethodPut)
	r.Handle("/contact/{id}", a.admin(a.deleteContact)).Methods(http.MethodDelete)
}

func (a *API) submitContact(w http.ResponseWriter, r *http.Request) {
	var in store.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Email == "" || in.Message == "" {
		utils.JSONError(w, http.StatusBadRequest, "email and message are required")
		return
	}
	m, err := a.Store.CreateContactMessage(in)
	if err != nil {
		storeError(w, err)
		return
	}
	a.Logs.Log("info", "contact message from "+m.Email, "contact")
	_ = utils.JSONWrite(w, http.StatusCreated, m)
}

func (a *API) listContact(w http.ResponseWriter, r *http.Request) {
	out, err := a.Store.ListContactMessages(r.URL.Query().Get("unread") == "true")
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

func (a *API) getContact(w http.ResponseWriter, r *http.Request) {
	m, err := a.Store.GetContactMessage(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if m == nil {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, m)
}

func (a *API) updateContact(w http.ResponseWriter, r *http.Request) {
	var patch store.ContactPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	m, err := a.Store.UpdateContactMessage(mux.Vars(r)["id"], patch)
	if err != nil {
		storeError(w, err)
		return
	}
	if m == nil {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, m)
}

func (a *API) deleteContact(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Store.DeleteContactMessage(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "message not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
