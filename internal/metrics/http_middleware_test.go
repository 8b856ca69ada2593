package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/flightlog/internal/metrics"
)

func TestHTTPMiddleware_UsesRoutePattern(t *testing.T) {
	var seen string
	r := chi.NewRouter()
	r.Use(metrics.HTTPMiddleware)
	r.Get("/tracker/flights/{id}", func(w http.ResponseWriter, req *http.Request) {
		seen = metrics.RoutePattern(req)
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tracker/flights/IB150-2025-12-08-1", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/tracker/flights/{id}", seen)
}

func TestRoutePattern_NoRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	assert.Equal(t, "/healthz", metrics.RoutePattern(req))
}

func TestHandler_ExposesRegisteredCollectors(t *testing.T) {
	metrics.Register()
	metrics.Register() // second call must not panic on duplicate registration
	metrics.SetTrackerFlights(3)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tracker_flights 3")
}
