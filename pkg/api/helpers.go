package api

import (
	"errors"
	"net/http"
	"strings"

	"foliodb/pkg/kv"
	"foliodb/pkg/utils"
)

// storeError maps storage failures onto HTTP statuses. An unconfigured
// store is a 503, anything else a 500.
func storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, kv.ErrNotConfigured) {
		utils.JSONError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	utils.JSONError(w, http.StatusInternalServerError, err.Error())
}

// bearerOrCookie extracts the session token for handlers that do their own
// optional authentication instead of sitting behind the middleware.
func bearerOrCookie(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie("foliodb_session"); err == nil {
		return c.Value
	}
	return ""
}
