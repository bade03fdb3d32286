package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

func (a *API) registerBackups(r *mux.Router) {
	r.Handle("/backups", a.admin(a.createBackup)).Methods(http.MethodPost)
	r.Handle("/backups", a.admin(a.listBackups)).Methods(http.MethodGet)
	r.Handle("/backups/{id}", a.admin(a.getBackup)).Methods(http.MethodGet)
	r.Handle("/backups/{id}/restore", a.admin(a.restoreBackup)).Methods(http.MethodPost)
	r.Handle("/backups/{id}/download", a.admin(a.downloadBackup)).Methods(http.MethodGet)
	r.Handle("/backups/{id}", a.admin(a.deleteBackup)).Methods(http.MethodDelete)
}

func (a *API) createBackup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		utils.JSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	b := a.Backups.CreateBackup(req.Name, req.Type, req.Description)
	a.Logs.Log("info", "backup "+b.Status+": "+b.Name, "backup")
	status := http.StatusCreated
	if b.Status == models.BackupFailed {
		status = http.StatusOK
	}
	_ = utils.JSONWrite(w, status, b.Meta())
}

func (a *API) listBackups(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, a.Backups.ListBackups())
}

func (a *API) getBackup(w http.ResponseWriter, r *http.Request) {
	b, err := a.Backups.GetBackup(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if b == nil {
		utils.JSONError(w, http.StatusNotFound, "backup not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, b.Meta())
}

func (a *API) restoreBackup(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.Backups.RestoreBackup(id); err != nil {
		a.Logs.LogDetailed("error", "restore failed: "+id, "backup", "", err.Error())
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.Logs.Log("warning", "data restored from backup "+id, "backup")
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "restored"})
}

// downloadBackup serves the full record, blob included, as an attachment.
func (a *API) downloadBackup(w http.ResponseWriter, r *http.Request) {
	b, err := a.Backups.GetBackup(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if b == nil {
		utils.JSONError(w, http.StatusNotFound, "backup not found")
		return
	}
	_ = utils.JSONDownload(w, "backup-"+b.ID+".json", b)
}

func (a *API) deleteBackup(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Backups.DeleteBackup(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "backup not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
