package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/store"
	"foliodb/pkg/utils"
)

func (a *API) registerMedia(r *mux.Router) {
	r.Handle("/media", a.admin(a.listMedia)).Methods(http.MethodGet)
	r.Handle("/media/tags", a.admin(a.mediaTags)).Methods(http.MethodGet)
	r.Handle("/media/{id}", a.admin(a.getMedia)).Methods(http.MethodGet)
	r.Handle("/media", a.admin(a.createMedia)).Methods(http.MethodPost)
	r.Handle("/media/{id}", a.admin(a.updateMedia)).Methods(http.MethodPut)
	r.Handle("/media/{id}", a.admin(a.deleteMedia)).Methods(http.MethodDelete)
}

func (a *API) listMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := a.Store.ListMedia(store.MediaFilter{
		Tag:    q.Get("tag"),
		Type:   q.Get("type"),
		Search: q.Get("search"),
	})
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, items)
}

func (a *API) mediaTags(w http.ResponseWriter, r *http.Request) {
	tags, err := a.Store.MediaTags()
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string][]string{"tags": tags})
}

func (a *API) getMedia(w http.ResponseWriter, r *http.Request) {
	m, err := a.Store.GetMedia(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if m == nil {
		utils.JSONError(w, http.StatusNotFound, "media not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, m)
}

func (a *API) createMedia(w http.ResponseWriter, r *http.Request) {
	var in store.MediaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Filename == "" || in.URL == "" {
		utils.JSONError(w, http.StatusBadRequest, "filename and url are required")
		return
	}
	m, err := a.Store.CreateMedia(in)
	if err != nil {
		storeError(w, err)
		return
	}
	a.Logs.Log("info", "media uploaded: "+m.Filename, "media")
	_ = utils.JSONWrite(w, http.StatusCreated, m)
}

func (a *API) updateMedia(w http.ResponseWriter, r *http.Request) {
	var patch store.MediaPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	m, err := a.Store.UpdateMedia(mux.Vars(r)["id"], patch)
	if err != nil {
		storeError(w, err)
		return
	}
	if m == nil {
		utils.JSONError(w, http.StatusNotFound, "media not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, m)
}

func (a *API) deleteMedia(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Store.DeleteMedia(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "media not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
