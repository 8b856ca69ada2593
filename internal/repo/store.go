// Package repo contains the record store behind the logbook.
// DocStore is the persistence contract; MemoryStore, PGStore and RedisStore
// implement it. No business logic lives here, only storage, change
// notification and type mapping.
package repo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pkordes/flightlog/internal/domain"
)

// SnapshotFunc receives the full, ordered contents of a collection.
type SnapshotFunc func(docs []domain.FlightDoc)

// ErrorFunc receives the error that ended a subscription.
type ErrorFunc func(err error)

// DocStore is a document store with change subscriptions.
type DocStore interface {
	// Subscribe delivers a snapshot of collection sorted by order right away and
	// again after every change. Once onError has been called the subscription is
	// over and neither callback runs again.
	//
	// The returned func releases the subscription. It is idempotent and returns
	// only once no callback can run any more, so it must not be called from
	// inside a callback.
	Subscribe(ctx context.Context, collection string, order domain.Order, onSnapshot SnapshotFunc, onError ErrorFunc) (func(), error)

	// Insert stores doc under a store-assigned ID and returns the stored copy.
	Insert(ctx context.Context, collection string, doc domain.FlightDoc) (domain.FlightDoc, error)
}

// checkCollection rejects collections the logbook does not know about.
func checkCollection(collection string) error {
	if collection != domain.CollectionFlights {
		return fmt.Errorf("%w: unknown collection %q", domain.ErrValidation, collection)
	}
	return nil
}

// sortDocs orders docs the way every backend must: by order.Field with nulls
// before values in ascending order, then by creation time and ID so that
// equal keys come out in a stable order.
func sortDocs(docs []domain.FlightDoc, order domain.Order) {
	slices.SortStableFunc(docs, func(a, b domain.FlightDoc) int {
		c := compareField(a, b, order.Field)
		if order.Direction == domain.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func compareField(a, b domain.FlightDoc, field string) int {
	switch field {
	case domain.FieldDepartureDate:
		return compareOptional(a.DepartureDate, b.DepartureDate)
	case domain.FieldFlightNumber:
		return strings.Compare(a.FlightNumber, b.FlightNumber)
	case domain.FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

// compareOptional sorts nil before any value.
func compareOptional(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return strings.Compare(*a, *b)
}
