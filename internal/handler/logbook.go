package handler

import (
	"errors"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/format"
)

// LogbookFlight is the JSON view of a logbook document.
type LogbookFlight struct {
	ID            string              `json:"id"`
	FlightNumber  string              `json:"flightNumber"`
	TailNumber    *string             `json:"tailNumber"`
	AgeYears      *float64            `json:"ageYears"`
	DepartureDate *openapi_types.Date `json:"departureDate"`
	CreatedAt     time.Time           `json:"createdAt"`
	Row           format.LogbookRow   `json:"row"`
}

// Logbook is the body of GET /logbook.
type Logbook struct {
	Flights []LogbookFlight `json:"flights"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
	Saving  bool            `json:"saving"`
	Form    domain.DocForm  `json:"form"`
}

// GetLogbook handles GET /logbook.
func (s *Server) GetLogbook(w http.ResponseWriter, _ *http.Request) {
	st := s.logbook.State()

	flights := make([]LogbookFlight, len(st.Flights))
	for i, d := range st.Flights {
		flights[i] = docToResponse(d)
	}
	writeJSON(w, http.StatusOK, Logbook{
		Flights: flights,
		Loading: st.Loading,
		Error:   st.Error,
		Saving:  st.Saving,
		Form:    st.Form,
	})
}

// CreateLogbookFlight handles POST /logbook/flights.
func (s *Server) CreateLogbookFlight(w http.ResponseWriter, r *http.Request) {
	var form domain.DocForm
	if !decodeJSON(w, r, &form) {
		return
	}

	doc, err := s.logbook.AddFlight(r.Context(), form)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, docToResponse(doc))
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, validationMessage(err))
	case errors.Is(err, domain.ErrBusy):
		writeError(w, http.StatusConflict, codeConflict, "a flight is already being saved")
	default:
		// The service has already logged the store failure.
		writeError(w, http.StatusBadGateway, codeUpstream, "record store unavailable")
	}
}

func docToResponse(d domain.FlightDoc) LogbookFlight {
	return LogbookFlight{
		ID:            d.ID,
		FlightNumber:  d.FlightNumber,
		TailNumber:    d.TailNumber,
		AgeYears:      d.AgeYears,
		DepartureDate: parseDate(d.DepartureDate),
		CreatedAt:     d.CreatedAt,
		Row:           format.Row(d),
	}
}

// parseDate converts a stored "2006-01-02" string into an openapi_types.Date.
// Nil and malformed input both yield nil; the store only holds ISO dates.
func parseDate(s *string) *openapi_types.Date {
	if s == nil {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, *s)
	if err != nil {
		return nil
	}
	return &openapi_types.Date{Time: t}
}
