package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/store"
	"foliodb/pkg/utils"
)

func (a *API) registerSkills(r *mux.Router) {
	r.HandleFunc("/skills", a.listSkills).Methods(http.MethodGet)
	r.HandleFunc("/skills/{id}", a.getSkill).Methods(http.MethodGet)
	r.Handle("/skills", a.admin(a.createSkill)).Methods(http.MethodPost)
	r.Handle("/skills/{id}", a.admin(a.updateSkill)).Methods(http.MethodPut)
	r.Handle("/skills/{id}", a.admin(a.deleteSkill)).Methods(http.MethodDelete)
}

func (a *API) listSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := a.Store.ListSkills(r.URL.Query().Get("category"))
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, skills)
}

func (a *API) getSkill(w http.ResponseWriter, r *http.Request) {
	sk, err := a.Store.GetSkill(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if sk == nil {
		utils.JSONError(w, http.StatusNotFound, "skill not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, sk)
}

func (a *API) createSkill(w http.ResponseWriter, r *http.Request) {
	var in store.SkillInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Name == "" {
		utils.JSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	sk, err := a.Store.CreateSkill(in)
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, sk)
}

func (a *API) updateSkill(w http.ResponseWriter, r *http.Request) {
	var patch store.SkillPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	sk, err := a.Store.UpdateSkill(mux.Vars(r)["id"], patch)
	if err != nil {
		storeError(w, err)
		return
	}
	if sk == nil {
		utils.JSONError(w, http.StatusNotFound, "skill not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, sk)
}

func (a *API) deleteSkill(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Store.DeleteSkill(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "skill not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
