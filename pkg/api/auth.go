package api

import (
	"encoding/json"
	"net/http"

	"foliodb/pkg/auth"
	"foliodb/pkg/logger"
	"foliodb/pkg/utils"
)

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := a.Auth.Authenticate(req.Email, req.Password)
	if err != nil {
		utils.JSONError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	if u == nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := a.Auth.CreateSession(u.Email)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "session creation failed")
		return
	}
	a.Logs.LogDetailed("info", "admin login", "auth", u.Email, "")
	http.SetCookie(w, &http.Cookie{
		Name:     "foliodb_session",
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{
		"token": token,
		"email": u.Email,
		"role":  u.Role,
	})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		token = h[7:]
	} else if c, err := r.Cookie("foliodb_session"); err == nil {
		token = c.Value
	}
	if err := a.Auth.DestroySession(token); err != nil {
		logger.Warn("logout_destroy_failed", "error", err)
	}
	http.SetCookie(w, &http.Cookie{Name: "foliodb_session", Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) whoami(w http.ResponseWriter, r *http.Request) {
	email := auth.UserFromContext(r.Context())
	u, _ := a.Auth.GetUser(email)
	if u == nil {
		utils.JSONError(w, http.StatusUnauthorized, "session expired")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]interface{}{
		"email":      u.Email,
		"role":       u.Role,
		"last_login": u.LastLogin,
	})
}
