package format

import (
	"math"

	"github.com/pkordes/flightlog/internal/domain"
)

const (
	labelLoading         = "Cargando…"
	labelRoutePending    = "Ruta pendiente de cargar"
	labelSchedulePending = "Horarios aún no cargados"
	labelNoRegistration  = "Sin datos aún"
	labelNoTail          = "Sin matrícula"
	labelNoDate          = "Fecha sin definir"
)

// TrackerCard is the display form of a tracked flight.
type TrackerCard struct {
	Title        string `json:"title"`
	Route        string `json:"route"`
	Schedule     string `json:"schedule"`
	Registration string `json:"registration"`
	AircraftType string `json:"aircraftType"`
	Age          string `json:"age"`
	Status       string `json:"status"`
}

// Card builds the display labels for a tracked flight.
func Card(r domain.FlightRecord) TrackerCard {
	var e domain.Enrichment
	if r.Enrichment != nil {
		e = *r.Enrichment
	}

	c := TrackerCard{
		Title:        r.Input.Airline + " " + r.Input.Number,
		Route:        Route(e),
		Schedule:     labelSchedulePending,
		Registration: labelNoRegistration,
		AircraftType: Placeholder,
	}
	if e.DepartureTimeLocal != "" && e.ArrivalTimeLocal != "" {
		c.Schedule = "Sale " + e.DepartureTimeLocal + " · Llega " + e.ArrivalTimeLocal
	}
	if e.Registration != "" {
		c.Registration = e.Registration
	}
	if e.AircraftType != "" {
		c.AircraftType = e.AircraftType
	}

	if r.Loading() {
		c.Registration = labelLoading
		c.Age = labelLoading
		c.Status = ""
		return c
	}
	c.Age = Age(e.AircraftAgeYears)
	c.Status = Status(e.PreviousLegStatus, e.PreviousLegDelayMinutes)
	return c
}

// Route renders "MAD → CUN", or a pending label until both ends are known.
func Route(e domain.Enrichment) string {
	if e.From == "" || e.To == "" {
		return labelRoutePending
	}
	return e.From + " → " + e.To
}

// LogbookRow is the display form of a logbook document.
type LogbookRow struct {
	FlightNumber  string `json:"flightNumber"`
	TailNumber    string `json:"tailNumber"`
	Age           string `json:"age,omitempty"`
	DepartureDate string `json:"departureDate"`
}

// Row builds the display labels for a logbook document. Age is left empty
// when the document has none, so the list shows nothing rather than a dash.
func Row(d domain.FlightDoc) LogbookRow {
	row := LogbookRow{
		FlightNumber:  d.FlightNumber,
		TailNumber:    labelNoTail,
		DepartureDate: labelNoDate,
	}
	if d.TailNumber != nil && *d.TailNumber != "" {
		row.TailNumber = *d.TailNumber
	}
	if d.DepartureDate != nil && *d.DepartureDate != "" {
		row.DepartureDate = *d.DepartureDate
	}
	if d.AgeYears != nil && !math.IsNaN(*d.AgeYears) && !math.IsInf(*d.AgeYears, 0) {
		row.Age = years(*d.AgeYears)
	}
	return row
}
