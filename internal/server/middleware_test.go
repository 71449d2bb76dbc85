package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_CORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		corsOrigin     string
		method         string
		expectedStatus int
		shouldCallNext bool
	}{
		{name: "GET request with CORS headers", corsOrigin: "*", method: http.MethodGet, expectedStatus: http.StatusOK, shouldCallNext: true},
		{name: "POST request with specific origin", corsOrigin: "https://example.com", method: http.MethodPost, expectedStatus: http.StatusOK, shouldCallNext: true},
		{name: "OPTIONS request (preflight)", corsOrigin: "*", method: http.MethodOptions, expectedStatus: http.StatusOK, shouldCallNext: false},
		{name: "handler status is kept", corsOrigin: "http://localhost:3000", method: http.MethodDelete, expectedStatus: http.StatusTeapot, shouldCallNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &Server{corsOrigin: tt.corsOrigin, logger: discardLogger()}
			called := false
			next := func(w http.ResponseWriter, r *http.Request) {
				called = true
				if r.Method == http.MethodDelete {
					w.WriteHeader(http.StatusTeapot)
				}
			}

			w := httptest.NewRecorder()
			srv.corsMiddleware(next)(w, httptest.NewRequest(tt.method, "/scan", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.shouldCallNext, called)
			assert.Equal(t, tt.corsOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestServer_SetupRoutes(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(ts.URL + "/formats")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "framescan_http_requests_total"))
}
