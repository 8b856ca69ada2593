package service

import (
	"context"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/format"
)

// TrackerLister is the slice of TrackerService the export needs.
type TrackerLister interface {
	Flights() []domain.FlightRecord
}

// LogbookReader is the slice of LogbookService the export needs.
type LogbookReader interface {
	State() domain.LogbookState
}

// ExportService assembles a flat export of the tracker list and the logbook.
type ExportService struct {
	tracker TrackerLister
	logbook LogbookReader
}

// NewExportService constructs an ExportService over both flight lists.
func NewExportService(tracker TrackerLister, logbook LogbookReader) *ExportService {
	return &ExportService{tracker: tracker, logbook: logbook}
}

// Export returns one row per tracked record, newest first, followed by one
// row per logbook document in departure order.
func (s *ExportService) Export(_ context.Context) ([]domain.ExportRow, error) {
	records := s.tracker.Flights()
	docs := s.logbook.State().Flights

	rows := make([]domain.ExportRow, 0, len(records)+len(docs))
	for _, r := range records {
		rows = append(rows, trackerRow(r))
	}
	for _, d := range docs {
		rows = append(rows, logbookRow(d))
	}
	return rows, nil
}

func trackerRow(r domain.FlightRecord) domain.ExportRow {
	row := domain.ExportRow{
		Source:       domain.SourceTracker,
		ID:           r.ID,
		Airline:      r.Input.Airline,
		FlightNumber: r.Input.Number,
		Date:         r.Input.Date,
		Error:        r.Error,
	}
	if e := r.Enrichment; e != nil {
		row.TailNumber = e.Registration
		row.AircraftType = e.AircraftType
		row.AgeYears = e.AircraftAgeYears
		row.Route = format.Route(*e)
		row.Status = format.Status(e.PreviousLegStatus, e.PreviousLegDelayMinutes)
	}
	return row
}

func logbookRow(d domain.FlightDoc) domain.ExportRow {
	row := domain.ExportRow{
		Source:       domain.SourceLogbook,
		ID:           d.ID,
		FlightNumber: d.FlightNumber,
		AgeYears:     d.AgeYears,
	}
	if d.TailNumber != nil {
		row.TailNumber = *d.TailNumber
	}
	if d.DepartureDate != nil {
		row.Date = *d.DepartureDate
	}
	return row
}
