package muxhandlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerMiddleware(t *testing.T) {
	serve := func(t *testing.T, cfg ServerConfig) http.Header {
		t.Helper()

		mw, err := ServerMiddleware(cfg)
		require.NoError(t, err)

		r := mux.NewRouter()
		r.HandleFunc("/test", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}).Methods(http.MethodGet)
		r.Use(mw)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusOK, w.Code)
		return w.Header()
	}

	t.Run("default os hostname", func(t *testing.T) {
		expected, err := os.Hostname()
		require.NoError(t, err)

		assert.Equal(t, expected, serve(t, ServerConfig{}).Get(DefaultServerHeader))
	})

	t.Run("explicit hostname", func(t *testing.T) {
		assert.Equal(t, "web-01", serve(t, ServerConfig{Hostname: "web-01"}).Get(DefaultServerHeader))
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("OASDOCS_TEST_POD", "")
		t.Setenv("OASDOCS_TEST_HOST", "pod-7")

		h := serve(t, ServerConfig{HostnameEnv: []string{"OASDOCS_TEST_POD", "OASDOCS_TEST_HOST"}})
		assert.Equal(t, "pod-7", h.Get(DefaultServerHeader))
	})

	t.Run("custom header", func(t *testing.T) {
		h := serve(t, ServerConfig{Hostname: "web-02", HeaderName: "X-Served-By"})
		assert.Equal(t, "web-02", h.Get("X-Served-By"))
		assert.Empty(t, h.Get(DefaultServerHeader))
	})
}
