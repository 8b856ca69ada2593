package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/format"
)

// TrackerFlight is the JSON view of a tracked flight: its raw state plus the
// display card a client renders as-is.
type TrackerFlight struct {
	ID         string             `json:"id"`
	Airline    string             `json:"airline"`
	Number     string             `json:"number"`
	Date       string             `json:"date"`
	State      domain.RecordState `json:"state"`
	Loading    bool               `json:"loading"`
	Enrichment *domain.Enrichment `json:"enrichment,omitempty"`
	Error      string             `json:"error,omitempty"`
	Card       format.TrackerCard `json:"card"`
}

// TrackerFlightList is the body of GET /tracker/flights.
type TrackerFlightList struct {
	Data []TrackerFlight `json:"data"`
}

// ListTrackerFlights handles GET /tracker/flights. Newest first.
func (s *Server) ListTrackerFlights(w http.ResponseWriter, _ *http.Request) {
	records := s.tracker.Flights()
	data := make([]TrackerFlight, len(records))
	for i, rec := range records {
		data[i] = recordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, TrackerFlightList{Data: data})
}

// CreateTrackerFlight handles POST /tracker/flights.
// The record is returned pending with 202; its lookup completes later.
func (s *Server) CreateTrackerFlight(w http.ResponseWriter, r *http.Request) {
	var in domain.FlightInput
	if !decodeJSON(w, r, &in) {
		return
	}

	rec, err := s.tracker.AddFlight(r.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusUnprocessableEntity, codeValidation, validationMessage(err))
			return
		}
		writeInternal(w, r, err)
		return
	}

	w.Header().Set("Location", "/tracker/flights/"+rec.ID)
	writeJSON(w, http.StatusAccepted, recordToResponse(rec))
}

// GetTrackerFlight handles GET /tracker/flights/{id}.
func (s *Server) GetTrackerFlight(w http.ResponseWriter, r *http.Request) {
	rec, err := s.tracker.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "flight not found")
			return
		}
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// DeleteTrackerFlight handles DELETE /tracker/flights/{id}.
// Removing an absent flight is not an error.
func (s *Server) DeleteTrackerFlight(w http.ResponseWriter, r *http.Request) {
	s.tracker.RemoveFlight(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func recordToResponse(rec domain.FlightRecord) TrackerFlight {
	return TrackerFlight{
		ID:         rec.ID,
		Airline:    rec.Input.Airline,
		Number:     rec.Input.Number,
		Date:       rec.Input.Date,
		State:      rec.State,
		Loading:    rec.Loading(),
		Enrichment: rec.Enrichment,
		Error:      rec.Error,
		Card:       format.Card(rec),
	}
}
