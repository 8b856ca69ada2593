// Package enrich provides the collaborators that derive route, schedule and
// aircraft details for a booked flight. Both implementations satisfy the
// service.Enricher interface.
package enrich

import (
	"context"
	"time"

	"github.com/pkordes/flightlog/internal/domain"
)

// DefaultMockDelay mimics the latency of a real provider.
const DefaultMockDelay = 800 * time.Millisecond

// Mock answers every lookup with the same canned Madrid–Cancún flight after
// Delay. It is the default provider until a real one is configured.
type Mock struct {
	Delay time.Duration
}

// NewMock returns a Mock that waits delay before answering.
func NewMock(delay time.Duration) *Mock {
	return &Mock{Delay: delay}
}

// Lookup waits for the configured delay, or until ctx is done, and returns the
// canned enrichment with schedule times on in.Date.
func (m *Mock) Lookup(ctx context.Context, in domain.FlightInput) (domain.Enrichment, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.Enrichment{}, ctx.Err()
		case <-t.C:
		}
	}

	age := 5.7
	delay := 0
	return domain.Enrichment{
		From:                    "MAD",
		To:                      "CUN",
		DepartureTimeLocal:      in.Date + "T15:40",
		ArrivalTimeLocal:        in.Date + "T20:10",
		Registration:            "EC-MYC",
		AircraftType:            "A359",
		AircraftAgeYears:        &age,
		PreviousLegStatus:       domain.LegOnTime,
		PreviousLegDelayMinutes: &delay,
	}, nil
}
