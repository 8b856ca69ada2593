// Package domain contains the core data types for the flightlog application.
// This package has no dependencies on other internal packages and is imported
// by every one of them (repo, service, handler, format).
package domain

import "strings"

// FlightInput identifies a booked flight as typed by the traveller.
// Airline is a carrier code (IB, AM, KL), Number the flight number (150, 40)
// and Date the local departure date as "2006-01-02".
type FlightInput struct {
	Airline string `json:"airline"`
	Number  string `json:"number"`
	Date    string `json:"date"`
}

// Normalize trims every field and upper-cases the airline code.
func (in FlightInput) Normalize() FlightInput {
	return FlightInput{
		Airline: strings.ToUpper(strings.TrimSpace(in.Airline)),
		Number:  strings.TrimSpace(in.Number),
		Date:    strings.TrimSpace(in.Date),
	}
}

// Complete reports whether airline, number and date are all non-empty.
// Call it on a normalized input.
func (in FlightInput) Complete() bool {
	return in.Airline != "" && in.Number != "" && in.Date != ""
}

// LegStatus is the punctuality of the aircraft's previous leg.
// The zero value means the provider returned no status at all.
type LegStatus string

const (
	LegOnTime    LegStatus = "on_time"
	LegDelayed   LegStatus = "delayed"
	LegCancelled LegStatus = "cancelled"
	LegUnknown   LegStatus = "unknown"
)

// Enrichment holds the route, schedule and aircraft fields derived from a
// FlightInput by the enrichment lookup. Every field is optional.
type Enrichment struct {
	From                    string    `json:"from,omitempty"`
	To                      string    `json:"to,omitempty"`
	DepartureTimeLocal      string    `json:"departureTimeLocal,omitempty"`
	ArrivalTimeLocal        string    `json:"arrivalTimeLocal,omitempty"`
	Registration            string    `json:"registration,omitempty"` // e.g. EC-MYC
	AircraftType            string    `json:"aircraftType,omitempty"` // A359, 789, 77W
	AircraftAgeYears        *float64  `json:"aircraftAgeYears,omitempty"`
	PreviousLegStatus       LegStatus `json:"previousLegStatus,omitempty"`
	PreviousLegDelayMinutes *int      `json:"previousLegDelayMinutes,omitempty"`
}

// RecordState tags where a tracked flight is in its enrichment lifecycle.
type RecordState string

const (
	StatePending RecordState = "pending"
	StateReady   RecordState = "ready"
	StateFailed  RecordState = "failed"
)

// FlightRecord is one entry of the tracker list.
//
// Enrichment is non-nil only in StateReady and Error is non-empty only in
// StateFailed. Use the Pending, Ready and Failed constructors rather than
// setting State directly so the two never drift apart.
type FlightRecord struct {
	ID         string
	Input      FlightInput
	State      RecordState
	Enrichment *Enrichment
	Error      string
}

// Pending returns a freshly submitted record awaiting enrichment.
func Pending(id string, in FlightInput) FlightRecord {
	return FlightRecord{ID: id, Input: in, State: StatePending}
}

// Ready returns r with e as its enrichment. Any previous enrichment is
// replaced as a whole.
func (r FlightRecord) Ready(e Enrichment) FlightRecord {
	return FlightRecord{ID: r.ID, Input: r.Input, State: StateReady, Enrichment: &e}
}

// Failed returns r annotated with a user-facing error message.
func (r FlightRecord) Failed(msg string) FlightRecord {
	return FlightRecord{ID: r.ID, Input: r.Input, State: StateFailed, Error: msg}
}

// Loading reports whether the enrichment lookup is still outstanding.
func (r FlightRecord) Loading() bool {
	return r.State == StatePending
}
