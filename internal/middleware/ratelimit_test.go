package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/flightlog/internal/middleware"
)

func doFrom(h http.Handler, ip, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BurstThen429(t *testing.T) {
	h := middleware.NewRateLimiter(0.001, 2).Handler(trivialHandler)

	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1", "/tracker/flights").Code)
	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1", "/tracker/flights").Code)

	rec := doFrom(h, "10.0.0.1", "/tracker/flights")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate_limited", body["error"]["code"])
}

func TestRateLimiter_PerClient(t *testing.T) {
	h := middleware.NewRateLimiter(0.001, 1).Handler(trivialHandler)

	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1", "/logbook").Code)
	assert.Equal(t, http.StatusTooManyRequests, doFrom(h, "10.0.0.1", "/logbook").Code)
	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.2", "/logbook").Code, "another client has its own bucket")
}

func TestRateLimiter_ExemptPath(t *testing.T) {
	h := middleware.NewRateLimiter(0.001, 1, "/healthz").Handler(trivialHandler)

	for range 5 {
		assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1", "/healthz").Code)
	}
}
