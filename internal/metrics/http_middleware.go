package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPMiddleware records request count and latency labelled by the chi route
// pattern, so /tracker/flights/{id} is one series rather than one per id.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		ObserveHTTPRequest(r.Method, RoutePattern(r), ww.Status(), time.Since(start))
	})
}

// RoutePattern returns the matched chi pattern, falling back to the raw path
// when the request never reached a chi router.
func RoutePattern(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return r.URL.Path
	}
	if p := rc.RoutePattern(); p != "" {
		return p
	}
	return r.URL.Path
}
