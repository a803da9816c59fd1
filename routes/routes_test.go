package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yasn/config"
	"yasn/handlers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(cfg config.Config) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupRouter(cfg, handlers.New(nil, logger, time.Second), logger, prometheus.NewRegistry())
}

func testConfig() config.Config {
	return config.Config{
		NodeEnv:        "test",
		SessionSecret:  "session-secret",
		AllowedOrigins: []string{"*"},
	}
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newRouter(testConfig()), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestNoRoute(t *testing.T) {
	w := serve(newRouter(testConfig()), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Endpoint not found","path":"/nope"}`, w.Body.String())
}

func TestSessionEchoSetsCookie(t *testing.T) {
	w := serve(newRouter(testConfig()), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, sessionCookieName+"="))
	assert.Contains(t, cookie, "HttpOnly")
	assert.NotContains(t, cookie, "Secure")
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(testConfig())
	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `yasn_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		origin      string
		allowOrigin string
		credentials string
	}{
		{"open", []string{"*"}, "http://anywhere.test", "*", ""},
		{"allow-listed", []string{"http://app.test"}, "http://app.test", "http://app.test", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.AllowedOrigins = tt.allowed

			req := httptest.NewRequest(http.MethodOptions, "/adduser", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := serve(newRouter(cfg), req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.allowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.credentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestSpacedOriginListFromEnv(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://yasn.now.sh")
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.SessionSecret = "session-secret"

	var r *gin.Engine
	require.NotPanics(t, func() { r = newRouter(cfg) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://yasn.now.sh")
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://yasn.now.sh", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"http://app.test"}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.test")
	w := serve(newRouter(cfg), req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionStoreOptions(t *testing.T) {
	cfg := testConfig()
	cfg.NodeEnv = "production"

	w := serve(newRouter(cfg), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, w.Header().Get("Set-Cookie"), "Secure")
}
