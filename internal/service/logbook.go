package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/repo"
)

// Messages shown in the logbook's error slot.
const (
	MsgListFailed     = "No se pudo cargar la lista de vuelos."
	MsgNumberRequired = "El número de vuelo es obligatorio."
	MsgDateFormat     = "La fecha debe tener formato AAAA-MM-DD."
	MsgSaveFailed     = "No se pudo guardar el vuelo. Inténtalo de nuevo."
)

var errAlreadyStarted = errors.New("logbook already started")

// LogbookService keeps a live, ordered copy of the flights collection and the
// state of the add-flight form.
type LogbookService struct {
	store repo.DocStore
	now   func() time.Time
	log   *slog.Logger

	mu      sync.Mutex
	state   domain.LogbookState
	started bool
	unsub   func()
}

// NewLogbookService constructs a LogbookService over store. It starts in the
// loading state with a default form. A nil now defaults to time.Now and a nil
// logger to slog.Default().
func NewLogbookService(store repo.DocStore, now func() time.Time, logger *slog.Logger) *LogbookService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogbookService{
		store: store,
		now:   now,
		log:   logger,
		state: domain.LogbookState{
			Flights: []domain.FlightDoc{},
			Loading: true,
			Form:    domain.DefaultDocForm(now()),
		},
	}
}

// Start subscribes to the flights collection ordered by departure date.
// A subscription that cannot be opened, or fails later, is surfaced through
// the state's error slot.
func (s *LogbookService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("service.LogbookService.Start: %w", errAlreadyStarted)
	}
	s.started = true
	s.mu.Unlock()

	order := domain.Order{Field: domain.FieldDepartureDate, Direction: domain.Asc}
	// The store may deliver the first snapshot before Subscribe returns, so
	// s.mu must not be held here.
	unsub, err := s.store.Subscribe(ctx, domain.CollectionFlights, order, s.onSnapshot, s.onError)
	if err != nil {
		s.onError(err)
		return fmt.Errorf("service.LogbookService.Start: %w", err)
	}

	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
	return nil
}

func (s *LogbookService) onSnapshot(docs []domain.FlightDoc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Flights = docs
	s.state.Loading = false
}

func (s *LogbookService) onError(err error) {
	s.log.Error("logbook subscription failed", "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = MsgListFailed
	s.state.Loading = false
}

// Close releases the subscription. It is safe to call more than once.
func (s *LogbookService) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// AddFlight validates form and inserts it as a new document. Only one insert
// may be in flight at a time; a second one gets domain.ErrBusy.
func (s *LogbookService) AddFlight(ctx context.Context, form domain.DocForm) (domain.FlightDoc, error) {
	doc, err := s.begin(form)
	if err != nil {
		return domain.FlightDoc{}, err
	}

	stored, err := s.store.Insert(ctx, domain.CollectionFlights, doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Saving = false
	if err != nil {
		s.log.Error("saving flight failed", "flight_number", doc.FlightNumber, "error", err)
		s.state.Error = MsgSaveFailed
		return domain.FlightDoc{}, fmt.Errorf("service.LogbookService.AddFlight: %w", err)
	}
	s.state.Form = domain.DefaultDocForm(s.now())
	return stored, nil
}

// begin validates form under the lock and, on success, marks the service as
// saving and returns the document to insert.
func (s *LogbookService) begin(form domain.DocForm) (domain.FlightDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Error = ""
	if s.state.Saving {
		return domain.FlightDoc{}, fmt.Errorf("service.LogbookService.AddFlight: %w", domain.ErrBusy)
	}
	s.state.Form = form

	number := strings.TrimSpace(form.FlightNumber)
	if number == "" {
		s.state.Error = MsgNumberRequired
		return domain.FlightDoc{}, fmt.Errorf("service.LogbookService.AddFlight: %w: %s", domain.ErrValidation, MsgNumberRequired)
	}

	doc := domain.FlightDoc{
		FlightNumber: number,
		AgeYears:     domain.ParseAge(form.AgeYears),
		CreatedAt:    s.now().UTC(),
	}
	if tail := strings.TrimSpace(form.TailNumber); tail != "" {
		doc.TailNumber = &tail
	}
	if date := strings.TrimSpace(form.DepartureDate); date != "" {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			s.state.Error = MsgDateFormat
			return domain.FlightDoc{}, fmt.Errorf("service.LogbookService.AddFlight: %w: %s", domain.ErrValidation, MsgDateFormat)
		}
		doc.DepartureDate = &date
	}

	s.state.Saving = true
	return doc, nil
}

// State returns a copy of the current logbook state.
func (s *LogbookService) State() domain.LogbookState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Flights = make([]domain.FlightDoc, len(s.state.Flights))
	copy(st.Flights, s.state.Flights)
	return st
}
