package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"foliodb/pkg/store"
	"foliodb/pkg/utils"
)

func (a *API) registerPosts(r *mux.Router) {
	r.HandleFunc("/posts", a.listPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/slug/{slug}", a.getPostBySlug).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}", a.getPost).Methods(http.MethodGet)
	r.Handle("/posts", a.admin(a.createPost)).Methods(http.MethodPost)
	r.Handle("/posts/{id}", a.admin(a.updatePost)).Methods(http.MethodPut)
	r.Handle("/posts/{id}", a.admin(a.deletePost)).Methods(http.MethodDelete)
}

// listPosts serves both public and admin listings. Without an explicit
// published=false the endpoint only returns published posts; drafts are
// admin territory and gated on a valid session.
func (a *API) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.PostFilter{
		OnlyPublished: true,
		Tag:           q.Get("tag"),
		Search:        q.Get("search"),
	}
	if q.Get("published") == "false" {
		u, _ := a.Auth.ValidateSession(bearerOrCookie(r))
		if u == nil {
			utils.JSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		f.OnlyPublished = false
	}
	posts, err := a.Store.ListPosts(f)
	if err != nil {
		storeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, posts)
}

func (a *API) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := a.Store.GetPost(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if post == nil {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, post)
}

func (a *API) getPostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := a.Store.GetPostBySlug(mux.Vars(r)["slug"])
	if err != nil {
		storeError(w, err)
		return
	}
	if post == nil {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, post)
}

func (a *API) createPost(w http.ResponseWriter, r *http.Request) {
	var in store.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Title == "" {
		utils.JSONError(w, http.StatusBadRequest, "title is required")
		return
	}
	post, err := a.Store.CreatePost(in)
	if err != nil {
		storeError(w, err)
		return
	}
	a.Logs.Log("success", "blog post created: "+post.Title, "blog")
	_ = utils.JSONWrite(w, http.StatusCreated, post)
}

func (a *API) updatePost(w http.ResponseWriter, r *http.Request) {
	var patch store.PostPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	post, err := a.Store.UpdatePost(mux.Vars(r)["id"], patch)
	if err != nil {
		storeError(w, err)
		return
	}
	if post == nil {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, post)
}

func (a *API) deletePost(w http.ResponseWriter, r *http.Request) {
	ok, err := a.Store.DeletePost(mux.Vars(r)["id"])
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
