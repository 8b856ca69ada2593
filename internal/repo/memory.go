package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/metrics"
)

const backendMemory = "memory"

// MemoryStore is a DocStore held in process memory. Snapshots are delivered
// synchronously: the initial one from Subscribe, later ones from Insert,
// each on the caller's goroutine.
type MemoryStore struct {
	mu     sync.Mutex
	docs   map[string][]domain.FlightDoc
	subs   map[int]*memorySub
	nextID int
}

type memorySub struct {
	// mu serialises deliveries and guards closed, so snapshots reach the
	// subscriber one at a time and never after release.
	mu         sync.Mutex
	closed     bool
	collection string
	order      domain.Order
	onSnapshot SnapshotFunc
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]domain.FlightDoc),
		subs: make(map[int]*memorySub),
	}
}

// Subscribe implements DocStore. onError is never called: memory does not fail.
func (s *MemoryStore) Subscribe(_ context.Context, collection string, order domain.Order, onSnapshot SnapshotFunc, _ ErrorFunc) (func(), error) {
	if err := checkCollection(collection); err != nil {
		return nil, fmt.Errorf("repo.MemoryStore.Subscribe: %w", err)
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("repo.MemoryStore.Subscribe: %w", err)
	}

	sub := &memorySub{collection: collection, order: order, onSnapshot: onSnapshot}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	s.deliver(sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.mu.Lock()
			sub.closed = true
			sub.mu.Unlock()

			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

// Insert implements DocStore.
func (s *MemoryStore) Insert(_ context.Context, collection string, doc domain.FlightDoc) (domain.FlightDoc, error) {
	if err := checkCollection(collection); err != nil {
		return domain.FlightDoc{}, fmt.Errorf("repo.MemoryStore.Insert: %w", err)
	}

	doc.ID = uuid.NewString()

	s.mu.Lock()
	s.docs[collection] = append(s.docs[collection], doc)
	var targets []*memorySub
	for _, sub := range s.subs {
		if sub.collection == collection {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	metrics.IncStoreInsert(backendMemory, nil)
	for _, sub := range targets {
		s.deliver(sub)
	}
	return doc, nil
}

func (s *MemoryStore) deliver(sub *memorySub) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.onSnapshot(s.snapshot(sub.collection, sub.order))
	metrics.IncStoreSnapshot(backendMemory)
}

// snapshot returns a sorted copy so subscribers never share the backing array.
func (s *MemoryStore) snapshot(collection string, order domain.Order) []domain.FlightDoc {
	s.mu.Lock()
	docs := make([]domain.FlightDoc, len(s.docs[collection]))
	copy(docs, s.docs[collection])
	s.mu.Unlock()

	sortDocs(docs, order)
	return docs
}
