package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notekeeper-be/internal/bootstrap"
	"notekeeper-be/internal/config"
	"notekeeper-be/internal/notetest"
	"notekeeper-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Port:               "0",
			Environment:        "test",
			CorsAllowedOrigins: "*",
			ActivityTopic:      "activity-test",
		},
		Auth: config.AuthConfig{
			AccessTokenSecret: "test-secret",
			AccessTokenTTL:    time.Hour,
			BcryptCost:        bcrypt.MinCost,
			TokenCacheTTL:     time.Minute,
		},
	}
}

func newTestServer(t *testing.T) (*fiber.App, *notetest.Store) {
	t.Helper()
	store := notetest.NewStore()
	container, err := bootstrap.Build(context.Background(), store.Factory(), testConfig(), logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	return New(testConfig(), container).GetApp(), store
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestNotesScenario(t *testing.T) {
	app, _ := newTestServer(t)

	status, body := call(t, app, http.MethodPost, "/create-user", "", fiber.Map{
		"email": "a@x.com", "fullName": "A", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["error"])
	assert.NotEmpty(t, body["accessToken"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotContains(t, user, "password")

	status, body = call(t, app, http.MethodPost, "/login", "", fiber.Map{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "a@x.com", body["email"])
	token := body["accessToken"].(string)
	require.NotEmpty(t, token)

	status, body = call(t, app, http.MethodPost, "/add-note", token, fiber.Map{"title": "T", "content": "C"})
	require.Equal(t, http.StatusOK, status, body)
	note := body["note"].(map[string]interface{})
	assert.Equal(t, false, note["isPinned"])
	assert.Equal(t, []interface{}{}, note["tags"])
	assert.Equal(t, user["id"], note["userId"])
	assert.Equal(t, user["id"], body["user"])
	noteID := note["id"].(string)

	status, body = call(t, app, http.MethodPut, "/isPinned/"+noteID, token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["note"].(map[string]interface{})["isPinned"])

	status, body = call(t, app, http.MethodGet, "/fetch-all-notes", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	notes := body["notes"].([]interface{})
	require.Len(t, notes, 1)
	assert.Equal(t, noteID, notes[0].(map[string]interface{})["id"])

	status, body = call(t, app, http.MethodDelete, "/delete-note/"+noteID, token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["error"])

	status, body = call(t, app, http.MethodGet, "/fetch-all-notes", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, []interface{}{}, body["notes"])
}

func register(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/create-user", "", fiber.Map{
		"email": email, "fullName": "User", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["accessToken"].(string)
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	app, store := newTestServer(t)
	alice := register(t, app, "alice@x.com")
	bob := register(t, app, "bob@x.com")

	_, body := call(t, app, http.MethodPost, "/add-note", alice, fiber.Map{"title": "secret", "content": "plans"})
	noteID := body["note"].(map[string]interface{})["id"].(string)

	status, body := call(t, app, http.MethodPut, "/edit-note/"+noteID, bob, fiber.Map{"title": "mine now"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Note not found", body["message"])

	status, _ = call(t, app, http.MethodPut, "/isPinned/"+noteID, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodDelete, "/delete-note/"+noteID, bob, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, store.NoteCount())

	_, body = call(t, app, http.MethodGet, "/fetch-all-notes", bob, nil)
	assert.Equal(t, []interface{}{}, body["notes"])

	_, body = call(t, app, http.MethodGet, "/fetch-all-notes", alice, nil)
	require.Len(t, body["notes"], 1)
	assert.Equal(t, "secret", body["notes"].([]interface{})[0].(map[string]interface{})["title"])
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	app, _ := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/get-user"},
		{http.MethodPost, "/add-note"},
		{http.MethodPut, "/edit-note/x"},
		{http.MethodGet, "/fetch-all-notes"},
		{http.MethodDelete, "/delete-note/x"},
		{http.MethodPut, "/isPinned/x"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			status, body := call(t, app, r.method, r.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "Access token is missing", body["message"])

			status, body = call(t, app, r.method, r.path, "not-a-jwt", nil)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, "Invalid or expired token", body["message"])
		})
	}
}

func TestLivenessAndMetrics(t *testing.T) {
	app, _ := newTestServer(t)

	status, body := call(t, app, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Notes API is running", body["message"])

	call(t, app, http.MethodGet, "/get-user", "", nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `notes_auth_failures_total{reason="missing_token"} 1`)
	assert.Contains(t, string(raw), `notes_http_requests_total{method="GET",route="/",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestServer(t)

	status, body := call(t, app, http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, true, body["error"])
}
