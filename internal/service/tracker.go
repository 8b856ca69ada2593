// Package service contains the business logic for the flightlog API.
// Services validate inputs, hold view state and orchestrate the enrichment
// lookup and the record store. No SQL or HTTP lives here: services depend on
// small interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/metrics"
)

// MsgLookupFailed is shown on a tracked flight whose lookup failed.
const MsgLookupFailed = "No se pudo obtener la info del vuelo"

// Enricher resolves a flight input into route, schedule and aircraft data.
// enrich.Mock and enrich.Client both satisfy it.
type Enricher interface {
	Lookup(ctx context.Context, in domain.FlightInput) (domain.Enrichment, error)
}

// TrackerService keeps the in-memory list of tracked flights, newest first.
// Each added flight starts pending and is completed by a background lookup.
type TrackerService struct {
	enricher Enricher
	now      func() time.Time
	log      *slog.Logger

	mu      sync.Mutex
	flights []domain.FlightRecord

	lookups sync.WaitGroup
}

// NewTrackerService constructs a TrackerService. A nil now defaults to
// time.Now and a nil logger to slog.Default().
func NewTrackerService(e Enricher, now func() time.Time, logger *slog.Logger) *TrackerService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackerService{enricher: e, now: now, log: logger}
}

// AddFlight inserts a pending record at the head of the list and starts its
// lookup. The lookup outlives ctx's cancellation so a client hanging up does
// not leave the record pending forever.
func (s *TrackerService) AddFlight(ctx context.Context, in domain.FlightInput) (domain.FlightRecord, error) {
	in = in.Normalize()
	if !in.Complete() {
		return domain.FlightRecord{}, fmt.Errorf("service.TrackerService.AddFlight: %w: airline, number and date are required", domain.ErrValidation)
	}

	s.mu.Lock()
	rec := domain.Pending(s.newID(in), in)
	s.flights = append([]domain.FlightRecord{rec}, s.flights...)
	metrics.SetTrackerFlights(len(s.flights))
	s.mu.Unlock()

	s.lookups.Add(1)
	go s.lookup(context.WithoutCancel(ctx), rec)

	return rec, nil
}

// newID builds "<AIRLINE><number>-<date>-<unix millis>". Two submissions in
// the same millisecond get a numeric suffix. Callers hold s.mu.
func (s *TrackerService) newID(in domain.FlightInput) string {
	base := fmt.Sprintf("%s%s-%s-%d", in.Airline, in.Number, in.Date, s.now().UnixMilli())
	id := base
	for n := 2; s.indexOf(id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

func (s *TrackerService) lookup(ctx context.Context, rec domain.FlightRecord) {
	defer s.lookups.Done()

	start := time.Now()
	e, err := s.enricher.Lookup(ctx, rec.Input)
	if err != nil {
		metrics.ObserveLookup("error", time.Since(start))
		s.log.Error("flight lookup failed", "id", rec.ID, "error", err)
		s.complete(rec.ID, func(r domain.FlightRecord) domain.FlightRecord { return r.Failed(MsgLookupFailed) })
		return
	}
	metrics.ObserveLookup("ok", time.Since(start))
	s.complete(rec.ID, func(r domain.FlightRecord) domain.FlightRecord { return r.Ready(e) })
}

// complete applies a lookup outcome to the record with id. Records removed in
// the meantime are left alone.
func (s *TrackerService) complete(id string, apply func(domain.FlightRecord) domain.FlightRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.log.Debug("lookup finished for removed flight", "id", id)
		return
	}
	s.flights[i] = apply(s.flights[i])
}

// RemoveFlight drops the record with id and reports whether one was present.
func (s *TrackerService) RemoveFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.flights = append(s.flights[:i:i], s.flights[i+1:]...)
	metrics.SetTrackerFlights(len(s.flights))
	return true
}

// Flights returns a copy of the list, newest first.
func (s *TrackerService) Flights() []domain.FlightRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.FlightRecord, len(s.flights))
	copy(out, s.flights)
	return out
}

// Get returns the record with id or domain.ErrNotFound.
func (s *TrackerService) Get(id string) (domain.FlightRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.FlightRecord{}, fmt.Errorf("service.TrackerService.Get: flight %q: %w", id, domain.ErrNotFound)
	}
	return s.flights[i], nil
}

// Wait blocks until every lookup started so far has been applied.
func (s *TrackerService) Wait() {
	s.lookups.Wait()
}

func (s *TrackerService) indexOf(id string) int {
	for i, r := range s.flights {
		if r.ID == id {
			return i
		}
	}
	return -1
}
