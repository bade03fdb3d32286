package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"foliodb/pkg/auth"
	"foliodb/pkg/backup"
	"foliodb/pkg/kv"
	"foliodb/pkg/logs"
	"foliodb/pkg/models"
	"foliodb/pkg/store"
)

func testServer(t *testing.T) (*httptest.Server, *API) {
	t.Helper()
	m := kv.NewMemory()
	st := store.New(m)
	as := auth.NewService(m)
	if _, err := as.CreateUser("admin@example.com", "secret", ""); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	a := &API{
		Store:   st,
		Logs:    logs.NewService(m),
		Backups: backup.New(st, 0),
		Auth:    as,
		Limiter: auth.LimiterConfig{RPS: 1000, Burst: 1000},
	}
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)
	return srv, a
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func loginToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if out.Token == "" {
		t.Fatalf("empty token")
	}
	return out.Token
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %d", resp.StatusCode)
	}
}

func TestLoginFlow(t *testing.T) {
	srv, _ := testServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "wrong",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", resp.StatusCode)
	}

	token := loginToken(t, srv)

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/auth/me", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("whoami: %d", resp.StatusCode)
	}
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode whoami: %v", err)
	}
	if me.Email != "admin@example.com" || me.Role != "admin" {
		t.Fatalf("whoami: %+v", me)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/logout", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	// The token is dead after logout.
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/auth/me", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("post-logout whoami: %d", resp.StatusCode)
	}
}

func TestPostsEndpoints(t *testing.T) {
	srv, _ := testServer(t)
	token := loginToken(t, srv)

	// Mutations are admin-gated.
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/posts", "", store.PostInput{Title: "Nope"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/posts", token, store.PostInput{
		Title: "Hello", Content: "world", Published: true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d", resp.StatusCode)
	}
	var created models.BlogPost
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/posts", token, store.PostInput{Title: "Draft"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create draft: %d", resp.StatusCode)
	}

	// Missing title is a 400.
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/posts", token, store.PostInput{Content: "no title"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing title: %d", resp.StatusCode)
	}

	// Public listing hides drafts.
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/posts", "", nil)
	var listed []models.BlogPost
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("public list: %v", listed)
	}

	// Drafts require a session.
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/posts?published=false", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous drafts: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/posts?published=false", token, nil)
	listed = nil
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode admin list: %v", err)
	}
	resp.Body.Close()
	if len(listed) != 2 {
		t.Fatalf("admin list: %v", listed)
	}

	// Slug lookup.
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/posts/slug/hello", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("slug lookup: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/posts/slug/unknown", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown slug: %d", resp.StatusCode)
	}

	// Update and delete.
	resp = doJSON(t, http.MethodPut, srv.URL+"/v1/posts/"+created.ID, token, map[string]interface{}{
		"title": "Hello Again",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, srv.URL+"/v1/posts/"+created.ID, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, srv.URL+"/v1/posts/"+created.ID, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("repeat delete: %d", resp.StatusCode)
	}
}

func TestLogsEndpoints(t *testing.T) {
	srv, _ := testServer(t)
	token := loginToken(t, srv)

	// Ingest is public and answers 202.
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/logs", "", map[string]string{
		"message": "page viewed", "source": "site",
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("ingest: %d", resp.StatusCode)
	}
	var accepted struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode ingest: %v", err)
	}
	resp.Body.Close()
	if accepted.ID == "" {
		t.Fatalf("ingest returned no id")
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/logs", "", map[string]string{"level": "info"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("ingest without message: %d", resp.StatusCode)
	}

	// Reading is admin-only.
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/logs", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous read: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/logs", token, nil)
	var entries []models.LogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	resp.Body.Close()
	if len(entries) == 0 {
		t.Fatalf("no entries after ingest")
	}

	// Clearing leaves a single fresh entry about the clear.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/v1/logs", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/logs", token, nil)
	entries = nil
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode after clear: %v", err)
	}
	resp.Body.Close()
	if len(entries) != 1 || entries[0].Message != "log history cleared" {
		t.Fatalf("after clear: %v", entries)
	}
}

func TestBackupEndpoints(t *testing.T) {
	srv, a := testServer(t)
	token := loginToken(t, srv)

	if _, err := a.Store.CreatePost(store.PostInput{Title: "Snapshot Me", Published: true}); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/backups", "", map[string]string{"name": "x"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/backups", token, map[string]string{"name": "nightly"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d", resp.StatusCode)
	}
	var meta models.BackupMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	resp.Body.Close()
	if meta.Status != models.BackupCompleted {
		t.Fatalf("status: %+v", meta)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/backups", token, map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("nameless create: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/backups", token, nil)
	var metas []models.BackupMeta
	if err := json.NewDecoder(resp.Body).Decode(&metas); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if len(metas) != 1 {
		t.Fatalf("list: %v", metas)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/backups/"+meta.ID+"/restore", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restore: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/backups/backup_missing/restore", token, nil)
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("restore of missing backup succeeded")
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/v1/backups/"+meta.ID, token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := testServer(t)
	token := loginToken(t, srv)

	resp := doJSON(t, http.MethodGet, srv.URL+"/v1/settings", "", nil)
	var settings models.SiteSettings
	if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	resp.Body.Close()
	if settings.SiteName != "Portfolio" {
		t.Fatalf("defaults: %+v", settings)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/v1/settings", "", map[string]string{"site_name": "Hack"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous update: %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/v1/settings", token, map[string]interface{}{
		"site_name": "Mine",
		"theme":     map[string]string{"accent_color": "#00ff00"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: %d", resp.StatusCode)
	}
	settings = models.SiteSettings{}
	if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	resp.Body.Close()
	if settings.SiteName != "Mine" || settings.Theme.AccentColor != "#00ff00" {
		t.Fatalf("updated: %+v", settings)
	}
	if settings.Theme.Mode != "system" {
		t.Fatalf("merge dropped sibling: %+v", settings.Theme)
	}
}

func TestContactAndChatEndpoints(t *testing.T) {
	srv, _ := testServer(t)
	token := loginToken(t, srv)

	// Contact intake is public.
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/contact", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "message": "hello",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("contact create: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/contact", "", map[string]string{"name": "Ada"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("contact without message: %d", resp.StatusCode)
	}
	// Reading the inbox is not.
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/contact", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous inbox: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/contact", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("inbox: %d", resp.StatusCode)
	}

	// Chat: visitors create sessions and append messages.
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/chat/sessions", "", map[string]string{"visitor": "v-1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("chat create: %d", resp.StatusCode)
	}
	var sess models.ChatSession
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/chat/sessions/"+sess.ID+"/messages", "", map[string]string{
		"content": "anyone there?",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("append: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/chat/sessions/chat_missing/messages", "", map[string]string{
		"content": "void",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("append to missing session: %d", resp.StatusCode)
	}

	// Session listing is admin-only; a single session read is public.
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/chat/sessions", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous session list: %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/chat/sessions/"+sess.ID, "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session read: %d", resp.StatusCode)
	}
}
