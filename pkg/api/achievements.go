package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/store"
	"foliodb/pkg/utils"
)

func (a *API) registerAchievements(r *mux.Router) {
	r.HandleFunc("/achievements", a.listAchievements).Methods(http.MethodGet)
	r.HandleFunc("/achievements/{id}", a.getAchievement).Methods(http.MethodGet)
	r.Handle("/achievements", a.admin(a.createAchievement)).Methods(http.MethodPost)
	r.Handle("/achievements/{id}", a.admin(a.updateAchievement)).Methods(http.MethodPut)
	r.Handle("/achievements/{id}", a.admin(a.deleteAchievement)).Methods(http.MethodDelete)
	r.HandleFunc("/achievements/{id}/unlock", a.unlockAchievement).Methods(http.MethodPost)
	r.HandleFunc("/users/{email}/achievements", a.userAchievements).Methods(http.MethodGet)
}

func (a *API) listAchievements(w http.ResponseWriter, r *http.Request) {
	out, err := a.Store.ListAchievements()
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

func (a *API) getAchievement(w http.ResponseWriter, r *http.Request) {
	ach, err := a.Store.GetAchievement(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if ach == nil {
		utils.JSONError(w, http.StatusNotFound, "achievement not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ach)
}

func (a *API) createAchievement(w http.ResponseWriter, r *http.Request) {
	var in store.AchievementInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	ach, err := a.Store.CreateAchievement(in)
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, ach)
}

func (a *API) updateAchievement(w http.ResponseWriter, r *http.Request) {
	var patch store.AchievementPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ach, err := a.Store.UpdateAchievement(mux.Vars(r)["id"], patch)
	if err != nil {
		storeError(w, err)
		return
	}
	if ach == nil {
		utils.JSONError(w, http.StatusNotFound, "achievement not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ach)
}

func (a *API) deleteAchievement(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Store.DeleteAchievement(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "achievement not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// unlockAchievement records a per-visitor unlock. The endpoint is public:
// unlocks are triggered by site interactions, not admin actions.
func (a *API) unlockAchievement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		utils.JSONError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := a.Store.UnlockForUser(req.Email, mux.Vars(r)["id"]); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) userAchievements(w http.ResponseWriter, r *http.Request) {
	ids, err := a.Store.UserAchievements(mux.Vars(r)["email"])
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string][]string{"achievements": ids})
}
