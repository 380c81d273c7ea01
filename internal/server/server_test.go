package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planner/internal/apitest"
	"planner/internal/config"
	"planner/internal/repository"
	"planner/internal/session"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		APIURL:         apiURL,
		ServerPort:     "0",
		StorageDriver:  config.StorageMemory,
		LogLevel:       "debug",
		AllowedOrigins: []string{"http://localhost:3001"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		HTTPTimeout:    5 * time.Second,
	}
}

// newTestServer wires a server against a fresh fake API. token picks the
// persisted token, if any.
func newTestServer(t *testing.T, token func(*apitest.Fake) string) (*Server, *apitest.Fake) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fake := apitest.New()
	srv := fake.Start()
	t.Cleanup(srv.Close)

	storage := repository.NewMemoryStorage()
	if token != nil {
		require.NoError(t, storage.SetItem(context.Background(), repository.TokenKey, token(fake)))
	}
	logger, _ := logtest.NewNullLogger()
	return New(testConfig(srv.URL), storage, logger), fake
}

func adminToken(f *apitest.Fake) string { return f.TokenFor(apitest.AdminID) }

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	return resp
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, nil)

	resp := serve(s, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "unauthenticated", body["session"])
}

func TestBootstrap_RestoresPersistedSession(t *testing.T) {
	s, fake := newTestServer(t, adminToken)

	require.NoError(t, s.Bootstrap(context.Background()))

	assert.Equal(t, session.Authenticated, s.Session.State())
	require.NotNil(t, s.Store.CurrentBoard())
	assert.Equal(t, apitest.BoardID, s.Store.CurrentBoard().ID)
	require.NotNil(t, s.Store.CurrentTeam())
	assert.Equal(t, apitest.TeamID, s.Store.CurrentTeam().ID)

	resp := serve(s, http.MethodGet, "/view")
	assert.Equal(t, http.StatusOK, resp.Code)

	// The persisted token is what went upstream
	reqs := fake.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "Bearer "+s.Session.Token(), reqs[0].Authorization)
	assert.Equal(t, "/auth/me", reqs[0].Route)
}

func TestBootstrap_RejectedTokenIsCleared(t *testing.T) {
	s, fake := newTestServer(t, adminToken)
	fake.RotateSecret()

	require.NoError(t, s.Bootstrap(context.Background()))

	assert.Equal(t, session.Unauthenticated, s.Session.State())
	assert.False(t, s.Session.HasToken())
	assert.Empty(t, s.Store.Boards())
	assert.Equal(t, http.StatusUnauthorized, serve(s, http.MethodGet, "/view").Code)
}

func TestBootstrap_NoToken(t *testing.T) {
	s, fake := newTestServer(t, nil)

	require.NoError(t, s.Bootstrap(context.Background()))

	assert.Equal(t, session.Unauthenticated, s.Session.State())
	assert.Empty(t, fake.Requests())
}

func TestRoutes_CORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3001")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "http://localhost:3001", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_UpstreamRejectionEndsSession(t *testing.T) {
	s, fake := newTestServer(t, adminToken)
	require.NoError(t, s.Bootstrap(context.Background()))
	fake.RotateSecret()

	resp := serve(s, http.MethodGet, "/tasks")

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.False(t, s.Session.HasToken())
	assert.Equal(t, http.StatusUnauthorized, serve(s, http.MethodGet, "/tasks").Code)
}
