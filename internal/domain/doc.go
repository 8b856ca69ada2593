package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CollectionFlights is the only document collection the logbook uses.
const CollectionFlights = "flights"

// DateLayout is the ISO calendar date format used for every departure date.
const DateLayout = "2006-01-02"

// FlightDoc is a logbook entry as held by the record store.
// ID is assigned by the store. Nil pointers are stored as nulls.
type FlightDoc struct {
	ID            string
	FlightNumber  string
	TailNumber    *string
	AgeYears      *float64
	DepartureDate *string // "2006-01-02"
	CreatedAt     time.Time
}

// DocForm is the raw logbook form as typed by the traveller.
// AgeYears is text because the form accepts "8,5" as well as "8.5".
type DocForm struct {
	FlightNumber  string `json:"flightNumber"`
	TailNumber    string `json:"tailNumber"`
	AgeYears      string `json:"ageYears"`
	DepartureDate string `json:"departureDate"`
}

// DefaultDocForm returns an empty form whose departure date is today's date
// in UTC.
func DefaultDocForm(now time.Time) DocForm {
	return DocForm{DepartureDate: now.UTC().Format(DateLayout)}
}

// ParseAge converts a user-typed age into years. The first comma is read as
// the decimal separator. Empty, unparseable and non-finite input yields nil.
func ParseAge(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// LogbookState is the observable state of the synchronized logbook.
type LogbookState struct {
	Flights []FlightDoc
	Loading bool
	Error   string
	Saving  bool
	Form    DocForm
}
