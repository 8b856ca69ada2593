// Package metrics holds the Prometheus collectors for the flightlog API.
// Collectors are package-level; call Register once at start-up before
// serving Handler. Recording into unregistered collectors is harmless, which
// keeps tests free of registry setup.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Enrichment
	enrichLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrich_lookups_total",
			Help: "Enrichment lookups by outcome (ok, error, discarded).",
		},
		[]string{"outcome"},
	)
	enrichDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrich_lookup_duration_seconds",
			Help:    "Time spent waiting on the enrichment provider.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	trackerFlights = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_flights",
			Help: "Current number of flights in the tracker list.",
		},
	)

	// Record store
	storeInserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_inserts_total",
			Help: "Record store inserts by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)
	storeSnapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_snapshots_total",
			Help: "Snapshots delivered to subscribers.",
		},
		[]string{"backend"},
	)
	storeSubscriptionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_subscription_errors_total",
			Help: "Subscriptions terminated by an error.",
		},
		[]string{"backend"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default Prometheus registry.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,

			enrichLookups,
			enrichDuration,
			trackerFlights,

			storeInserts,
			storeSnapshots,
			storeSubscriptionErrors,
		)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// --- HTTP ---
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	c := strconv.Itoa(code)
	httpRequests.WithLabelValues(method, route, c).Inc()
	httpDuration.WithLabelValues(method, route, c).Observe(d.Seconds())
}

// --- Enrichment ---
func ObserveLookup(outcome string, d time.Duration) {
	enrichLookups.WithLabelValues(outcome).Inc()
	enrichDuration.Observe(d.Seconds())
}
func SetTrackerFlights(n int) { trackerFlights.Set(float64(n)) }

// --- Store ---
func IncStoreInsert(backend string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeInserts.WithLabelValues(backend, outcome).Inc()
}
func IncStoreSnapshot(backend string) { storeSnapshots.WithLabelValues(backend).Inc() }
func IncStoreSubscriptionError(backend string) {
	storeSubscriptionErrors.WithLabelValues(backend).Inc()
}
