package domain

// Export sources.
const (
	SourceTracker = "tracker"
	SourceLogbook = "logbook"
)

// ExportRow is a single row in the full-data export.
// It is a flat view covering both the tracker list and the logbook: one row
// per tracked record and one per logbook document. Fields a source does not
// know about are left at their zero value.
type ExportRow struct {
	Source       string
	ID           string
	Airline      string // tracker only
	FlightNumber string
	Date         string // "2006-01-02", empty when unknown
	TailNumber   string
	AircraftType string // tracker only
	AgeYears     *float64
	Route        string // "MAD → CUN", tracker only
	Status       string // display label of the previous leg, tracker only
	Error        string
}
