package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

func (a *API) registerSettings(r *mux.Router) {
	r.HandleFunc("/settings", a.getSettings).Methods(http.MethodGet)
	r.Handle("/settings", a.admin(a.updateSettings)).Methods(http.MethodPut)
}

// getSettings is public: the site shell needs theme and SEO values before
// anyone logs in. Defaults are served when the store is down.
func (a *API) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.Store.GetSettings()
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, s)
}

func (a *API) updateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	s, err := a.Store.UpdateSettings(patch)
	if err != nil {
		storeError(w, err)
		return
	}
	a.Logs.Log("info", "site settings updated", "settings")
	_ = utils.JSONWrite(w, http.StatusOK, s)
}
