package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/store"
	"foliodb/pkg/utils"
)

func (a *API) registerProjects(r *mux.Router) {
	r.HandleFunc("/projects", a.listProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}", a.getProject).Methods(http.MethodGet)
	r.Handle("/projects", a.admin(a.createProject)).Methods(http.MethodPost)
	r.Handle("/projects/{id}", a.admin(a.updateProject)).Methods(http.MethodPut)
	r.Handle("/projects/{id}", a.admin(a.deleteProject)).Methods(http.MethodDelete)
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.Store.ListProjects(r.URL.Query().Get("featured") == "true")
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, projects)
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.Store.GetProject(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if p == nil {
		utils.JSONError(w, http.StatusNotFound, "project not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	var in store.ProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	p, err := a.Store.CreateProject(in)
	if err != nil {
		storeError(w, err)
		return
	}
	a.Logs.Log("success", "project created: "+p.Title, "projects")
	_ = utils.JSONWrite(w, http.StatusCreated, p)
}

func (a *API) updateProject(w http.ResponseWriter, r *http.Request) {
	var patch store.ProjectPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := a.Store.UpdateProject(mux.Vars(r)["id"], patch)
	if err != nil {
		storeError(w, err)
		return
	}
	if p == nil {
		utils.JSONError(w, http.StatusNotFound, "project not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}

func (a *API) deleteProject(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Store.DeleteProject(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "project not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
