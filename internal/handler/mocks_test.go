package handler_test

import (
	"context"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/handler"
)

// Hand-written test doubles for the handler's service interfaces.
// Each method is a function field: set only the ones your test needs.

type mockTrackerServicer struct {
	addFlight    func(ctx context.Context, in domain.FlightInput) (domain.FlightRecord, error)
	removeFlight func(id string) bool
	flights      func() []domain.FlightRecord
	get          func(id string) (domain.FlightRecord, error)
}

func (m *mockTrackerServicer) AddFlight(ctx context.Context, in domain.FlightInput) (domain.FlightRecord, error) {
	return m.addFlight(ctx, in)
}
func (m *mockTrackerServicer) RemoveFlight(id string) bool                { return m.removeFlight(id) }
func (m *mockTrackerServicer) Flights() []domain.FlightRecord             { return m.flights() }
func (m *mockTrackerServicer) Get(id string) (domain.FlightRecord, error) { return m.get(id) }

type mockLogbookServicer struct {
	addFlight func(ctx context.Context, form domain.DocForm) (domain.FlightDoc, error)
	state     func() domain.LogbookState
}

func (m *mockLogbookServicer) AddFlight(ctx context.Context, form domain.DocForm) (domain.FlightDoc, error) {
	return m.addFlight(ctx, form)
}
func (m *mockLogbookServicer) State() domain.LogbookState { return m.state() }

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TrackerServicer = (*mockTrackerServicer)(nil)
	_ handler.LogbookServicer = (*mockLogbookServicer)(nil)
	_ handler.ExportServicer  = (*mockExportServicer)(nil)
)
