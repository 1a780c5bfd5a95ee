package sessions

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachloop/reachloop/internal/shared"
)

func newSessionServer(t *testing.T, p *shared.Principal) (*httptest.Server, *Service, *mockRepository) {
	t.Helper()
	repo := newMockRepository()
	svc := NewService(repo, time.Hour, nil)
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, nil)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), p)))
		})
	})
	router.Route("/sessions", func(r chi.Router) {
		handler.MountRoutes(r)
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, svc, repo
}

func TestListSessionsEndpoint(t *testing.T) {
	principal := &shared.Principal{ID: "u1", Role: "user"}
	server, svc, _ := newSessionServer(t, principal)

	created, err := svc.Create(context.Background(), "u1", Metadata{DeviceInfo: "mobile"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "u2", Metadata{})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Sessions   []Session         `json:"sessions"`
		Pagination shared.Pagination `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Sessions, 1, "only the caller's sessions are visible")
	assert.Equal(t, created.ID, body.Sessions[0].ID)
	assert.Equal(t, MaskToken(created.Token), body.Sessions[0].Token)
	assert.Equal(t, 1, body.Pagination.Total)
}

func TestCountEndpoint(t *testing.T) {
	principal := &shared.Principal{ID: "u1", Role: "user"}
	server, svc, _ := newSessionServer(t, principal)

	for i := 0; i < 2; i++ {
		_, err := svc.Create(context.Background(), "u1", Metadata{})
		require.NoError(t, err)
	}

	resp, err := http.Get(server.URL + "/sessions/count")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body["active"])
}

func TestGetSessionEndpoint(t *testing.T) {
	principal := &shared.Principal{ID: "u1", Role: "user"}
	server, svc, _ := newSessionServer(t, principal)

	mine, err := svc.Create(context.Background(), "u1", Metadata{})
	require.NoError(t, err)
	theirs, err := svc.Create(context.Background(), "u2", Metadata{})
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/sessions/" + mine.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, MaskToken(mine.Token), got.Token)

	// Someone else's session looks exactly like a missing one.
	resp, err = http.Get(server.URL + "/sessions/" + theirs.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRevokeSessionEndpoint(t *testing.T) {
	principal := &shared.Principal{ID: "u1", Role: "user"}
	server, svc, repo := newSessionServer(t, principal)

	sess, err := svc.Create(context.Background(), "u1", Metadata{})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/sessions/"+sess.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, StatusRevoked, repo.sessions[sess.ID].Status)

	// A second delete has nothing left to revoke.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRevokeAllEndpointKeepCurrent(t *testing.T) {
	var current *Session
	principal := &shared.Principal{ID: "u1", Role: "user"}
	server, svc, _ := newSessionServer(t, principal)

	for i := 0; i < 3; i++ {
		sess, err := svc.Create(context.Background(), "u1", Metadata{})
		require.NoError(t, err)
		current = sess
	}
	principal.SessionID = current.ID

	resp, err := http.Post(server.URL+"/sessions/revoke-all", "application/json",
		strings.NewReader(`{"keep_current":true}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 2, body["revoked"])

	count, err := svc.CountActive(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRevokeByTypeEndpoint(t *testing.T) {
	principal := &shared.Principal{ID: "u1", Role: "user"}
	server, svc, _ := newSessionServer(t, principal)

	_, err := svc.Create(context.Background(), "u1", Metadata{DeviceInfo: "mobile"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "u1", Metadata{DeviceInfo: "desktop"})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/sessions/revoke-by-type", "application/json",
		strings.NewReader(`{"device_type":"mobile"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 1, body["revoked"])

	// Missing device_type is a validation error.
	resp, err = http.Post(server.URL+"/sessions/revoke-by-type", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
