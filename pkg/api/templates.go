package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/store"
	"foliodb/pkg/utils"
)

func (a *API) registerTemplates(r *mux.Router) {
	r.Handle("/templates", a.admin(a.listTemplates)).Methods(http.MethodGet)
	r.Handle("/templates/{id}", a.admin(a.getTemplate)).Methods(http.MethodGet)
	r.Handle("/templates", a.admin(a.createTemplate)).Methods(http.MethodPost)
	r.Handle("/templates/{id}", a.admin(a.updateTemplate)).Methods(http.MethodPut)
	r.Handle("/templates/{id}", a.admin(a.deleteTemplate)).Methods(http.MethodDelete)
}

func (a *API) listTemplates(w http.ResponseWriter, r *http.Request) {
	out, err := a.Store.ListTemplates(r.URL.Query().Get("category"))
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

func (a *API) getTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := a.Store.GetTemplate(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if t == nil {
		utils.JSONError(w, http.StatusNotFound, "template not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, t)
}

func (a *API) createTemplate(w http.ResponseWriter, r *http.Request) {
	var in store.TemplateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Name == "" {
		utils.JSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	t, err := a.Store.CreateTemplate(in)
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, t)
}

func (a *API) updateTemplate(w http.ResponseWriter, r *http.Request) {
	var patch store.TemplatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := a.Store.UpdateTemplate(mux.Vars(r)["id"], patch)
	if err != nil {
		storeError(w, err)
		return
	}
	if t == nil {
		utils.JSONError(w, http.StatusNotFound, "template not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, t)
}

func (a *API) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Store.DeleteTemplate(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "template not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
