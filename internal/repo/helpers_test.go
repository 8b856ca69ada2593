package repo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/flightlog/internal/domain"
)

// snapshots collects subscription callbacks on channels so tests can wait
// for asynchronous backends.
type snapshots struct {
	docs chan []domain.FlightDoc
	errs chan error
}

func newSnapshots() *snapshots {
	return &snapshots{
		docs: make(chan []domain.FlightDoc, 16),
		errs: make(chan error, 1),
	}
}

func (s *snapshots) onSnapshot(docs []domain.FlightDoc) { s.docs <- docs }
func (s *snapshots) onError(err error)                  { s.errs <- err }

// next waits for the next snapshot.
func (s *snapshots) next(t *testing.T) []domain.FlightDoc {
	t.Helper()
	select {
	case docs := <-s.docs:
		return docs
	case err := <-s.errs:
		t.Fatalf("subscription failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

// until waits for the first snapshot holding n documents.
func (s *snapshots) until(t *testing.T, n int) []domain.FlightDoc {
	t.Helper()
	for {
		docs := s.next(t)
		if len(docs) == n {
			return docs
		}
		require.Less(t, len(docs), n, "snapshot overshot the expected size")
	}
}

var byDepartureAsc = domain.Order{Field: domain.FieldDepartureDate, Direction: domain.Asc}

func doc(number string, departure *string, created time.Time) domain.FlightDoc {
	return domain.FlightDoc{FlightNumber: number, DepartureDate: departure, CreatedAt: created}
}

func str(s string) *string { return &s }

func numbers(docs []domain.FlightDoc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.FlightNumber
	}
	return out
}
