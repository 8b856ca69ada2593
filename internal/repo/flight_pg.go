package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/metrics"
)

const backendPostgres = "postgres"

// flightsChannel is the NOTIFY channel fired by the flights table trigger
// (see migrations/00001_create_flights.sql).
const flightsChannel = "flights_changed"

var docColumns = []string{"id", "flight_number", "tail_number", "age_years", "departure_date", "created_at"}

// orderColumns maps document field names to their SQL columns.
var orderColumns = map[string]string{
	domain.FieldDepartureDate: "departure_date",
	domain.FieldCreatedAt:     "created_at",
	domain.FieldFlightNumber:  "flight_number",
}

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the Postgres implementation of DocStore. Each collection is a
// table of the same name; change notifications come from a statement-level
// trigger that NOTIFYs flights_changed.
type PGStore struct {
	db   db
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewPGStore constructs a PGStore backed by pool. Subscriptions each hold one
// pool connection for as long as they are open.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{
		db:   pool,
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert writes a new row and returns it with the DB-generated id.
func (r *PGStore) Insert(ctx context.Context, collection string, doc domain.FlightDoc) (domain.FlightDoc, error) {
	result, err := r.insert(ctx, collection, doc)
	metrics.IncStoreInsert(backendPostgres, err)
	if err != nil {
		return domain.FlightDoc{}, fmt.Errorf("repo.PGStore.Insert: %w", err)
	}
	return result, nil
}

func (r *PGStore) insert(ctx context.Context, collection string, doc domain.FlightDoc) (domain.FlightDoc, error) {
	if err := checkCollection(collection); err != nil {
		return domain.FlightDoc{}, err
	}

	var departure pgtype.Date
	if doc.DepartureDate != nil {
		t, err := time.Parse(domain.DateLayout, *doc.DepartureDate)
		if err != nil {
			return domain.FlightDoc{}, fmt.Errorf("%w: departure date %q", domain.ErrValidation, *doc.DepartureDate)
		}
		departure = pgtype.Date{Time: t, Valid: true}
	}

	q, args, err := r.sb.
		Insert(collection).
		Columns("flight_number", "tail_number", "age_years", "departure_date", "created_at").
		Values(doc.FlightNumber, doc.TailNumber, doc.AgeYears, departure, doc.CreatedAt).
		Suffix("RETURNING " + strings.Join(docColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.FlightDoc{}, fmt.Errorf("build insert: %w", err)
	}

	return scanDoc(r.db.QueryRow(ctx, q, args...))
}

// Subscribe LISTENs on a dedicated connection and re-reads the whole table
// after every notification.
func (r *PGStore) Subscribe(ctx context.Context, collection string, order domain.Order, onSnapshot SnapshotFunc, onError ErrorFunc) (func(), error) {
	if err := checkCollection(collection); err != nil {
		return nil, fmt.Errorf("repo.PGStore.Subscribe: %w", err)
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("repo.PGStore.Subscribe: %w", err)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.PGStore.Subscribe: acquire: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{flightsChannel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("repo.PGStore.Subscribe: listen: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			// The connection still has an active LISTEN; never hand it back
			// to the pool in that state.
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()

		for {
			docs, err := r.list(subCtx, collection, order)
			if err == nil {
				metrics.IncStoreSnapshot(backendPostgres)
				onSnapshot(docs)
				_, err = conn.Conn().WaitForNotification(subCtx)
			}
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				metrics.IncStoreSubscriptionError(backendPostgres)
				onError(fmt.Errorf("repo.PGStore.Subscribe: %w", err))
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

// list returns every row of collection in subscription order.
func (r *PGStore) list(ctx context.Context, collection string, order domain.Order) ([]domain.FlightDoc, error) {
	q, args, err := r.sb.
		Select(docColumns...).
		From(collection).
		OrderBy(orderBy(order)...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	docs := []domain.FlightDoc{}
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return docs, nil
}

// orderBy mirrors sortDocs: nulls first when ascending, last when descending,
// then created_at and id as tie-breakers.
func orderBy(order domain.Order) []string {
	col := orderColumns[order.Field]
	if order.Direction == domain.Desc {
		return []string{col + " DESC NULLS LAST", "created_at ASC", "id ASC"}
	}
	return []string{col + " ASC NULLS FIRST", "created_at ASC", "id ASC"}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanDoc to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanDoc maps a single database row into a domain.FlightDoc, turning SQL
// NULLs into nil pointers.
func scanDoc(s scanner) (domain.FlightDoc, error) {
	var (
		d         domain.FlightDoc
		id        pgtype.UUID
		tail      pgtype.Text
		age       pgtype.Float8
		departure pgtype.Date
	)

	err := s.Scan(&id, &d.FlightNumber, &tail, &age, &departure, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FlightDoc{}, domain.ErrNotFound
		}
		return domain.FlightDoc{}, err
	}

	d.ID = uuid.UUID(id.Bytes).String()
	if tail.Valid {
		v := tail.String
		d.TailNumber = &v
	}
	if age.Valid {
		v := age.Float64
		d.AgeYears = &v
	}
	if departure.Valid {
		v := departure.Time.Format(domain.DateLayout)
		d.DepartureDate = &v
	}
	return d, nil
}
