// Package handler implements the HTTP handlers for the flightlog API.
// All handlers are methods on Server. They are split into domain-specific
// files (health.go, tracker.go, logbook.go, export.go) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/flightlog/internal/domain"
)

// TrackerServicer defines the tracker operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without running real lookups.
type TrackerServicer interface {
	AddFlight(ctx context.Context, in domain.FlightInput) (domain.FlightRecord, error)
	RemoveFlight(id string) bool
	Flights() []domain.FlightRecord
	Get(id string) (domain.FlightRecord, error)
}

// LogbookServicer defines the logbook operations the handlers depend on.
type LogbookServicer interface {
	AddFlight(ctx context.Context, form domain.DocForm) (domain.FlightDoc, error)
	State() domain.LogbookState
}

// ExportServicer defines the export operation the handlers depend on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server serves every API endpoint.
type Server struct {
	tracker TrackerServicer
	logbook LogbookServicer
	export  ExportServicer
	openAPI []byte
}

// NewServer constructs the Server with all its dependencies. openAPI is the
// document served at /openapi.yaml; nil disables that route.
func NewServer(tracker TrackerServicer, logbook LogbookServicer, export ExportServicer, openAPI []byte) *Server {
	return &Server{tracker: tracker, logbook: logbook, export: export, openAPI: openAPI}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes registers every endpoint on a fresh chi router. Routes whose
// service is nil are left out.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	if s.openAPI != nil {
		r.Get("/openapi.yaml", s.GetOpenAPI)
	}

	if s.tracker != nil {
		r.Route("/tracker/flights", func(r chi.Router) {
			r.Get("/", s.ListTrackerFlights)
			r.Post("/", s.CreateTrackerFlight)
			r.Get("/{id}", s.GetTrackerFlight)
			r.Delete("/{id}", s.DeleteTrackerFlight)
		})
	}

	if s.logbook != nil {
		r.Get("/logbook", s.GetLogbook)
		r.Post("/logbook/flights", s.CreateLogbookFlight)
	}

	if s.export != nil {
		r.Get("/export", s.GetExport)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeValidation, "method not allowed")
	})
	return r
}
