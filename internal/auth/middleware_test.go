package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/sessions"
	"github.com/reachloop/reachloop/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthenticator(t *testing.T) (Authenticator, *sessions.Service) {
	t.Helper()
	svc := sessions.NewService(newMemSessionRepo(), time.Hour, nil)
	return Authenticator{Logger: discardLogger(), Sessions: svc}, svc
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		httpx.JSON(w, http.StatusOK, p)
	})
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	authn, _ := newAuthenticator(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	authn.Middleware(echoPrincipal()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, httpx.CodeAuthentication, problem.Code)
}

func TestMiddlewareAcceptsBearerToken(t *testing.T) {
	authn, svc := newAuthenticator(t)
	sess, err := svc.Create(context.Background(), "u1", sessions.Metadata{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	authn.Middleware(echoPrincipal()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var p shared.Principal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "admin", p.Role)
	assert.Equal(t, sess.ID, p.SessionID)
}

func TestMiddlewareAcceptsSessionCookie(t *testing.T) {
	authn, svc := newAuthenticator(t)
	sess, err := svc.Create(context.Background(), "u1", sessions.Metadata{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sess.Token})
	rec := httptest.NewRecorder()
	authn.Middleware(echoPrincipal()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRejectsRevokedSession(t *testing.T) {
	authn, svc := newAuthenticator(t)
	sess, err := svc.Create(context.Background(), "u1", sessions.Metadata{})
	require.NoError(t, err)
	_, err = svc.Revoke(context.Background(), sess.ID, "u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	authn.Middleware(echoPrincipal()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareIgnoresMalformedAuthorizationHeader(t *testing.T) {
	authn, _ := newAuthenticator(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	authn.Middleware(echoPrincipal()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
