package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/metrics"
)

const backendRedis = "redis"

// errSubscriptionClosed is reported when Redis drops the pub/sub channel
// while the subscription is still wanted.
var errSubscriptionClosed = errors.New("pub/sub channel closed")

// RedisStore is the Redis implementation of DocStore. A collection is a hash
// <collection>:docs of id → JSON document; every insert publishes the new id
// on <collection>:changed.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore constructs a RedisStore on top of rdb.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func docsKey(collection string) string        { return collection + ":docs" }
func changedChannel(collection string) string { return collection + ":changed" }

// redisDoc is the JSON form of a FlightDoc inside the hash.
type redisDoc struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flightNumber"`
	TailNumber    *string   `json:"tailNumber"`
	AgeYears      *float64  `json:"ageYears"`
	DepartureDate *string   `json:"departureDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Insert stores doc and publishes the change in one MULTI/EXEC.
func (r *RedisStore) Insert(ctx context.Context, collection string, doc domain.FlightDoc) (domain.FlightDoc, error) {
	result, err := r.insert(ctx, collection, doc)
	metrics.IncStoreInsert(backendRedis, err)
	if err != nil {
		return domain.FlightDoc{}, fmt.Errorf("repo.RedisStore.Insert: %w", err)
	}
	return result, nil
}

func (r *RedisStore) insert(ctx context.Context, collection string, doc domain.FlightDoc) (domain.FlightDoc, error) {
	if err := checkCollection(collection); err != nil {
		return domain.FlightDoc{}, err
	}

	doc.ID = uuid.NewString()
	b, err := json.Marshal(redisDoc(doc))
	if err != nil {
		return domain.FlightDoc{}, fmt.Errorf("marshal: %w", err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, docsKey(collection), doc.ID, b)
		pipe.Publish(ctx, changedChannel(collection), doc.ID)
		return nil
	})
	if err != nil {
		return domain.FlightDoc{}, err
	}
	return doc, nil
}

// Subscribe listens on the collection's change channel and re-reads the hash
// on every message.
func (r *RedisStore) Subscribe(ctx context.Context, collection string, order domain.Order, onSnapshot SnapshotFunc, onError ErrorFunc) (func(), error) {
	if err := checkCollection(collection); err != nil {
		return nil, fmt.Errorf("repo.RedisStore.Subscribe: %w", err)
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("repo.RedisStore.Subscribe: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	ps := r.rdb.Subscribe(subCtx, changedChannel(collection))

	// Wait for the subscription to be confirmed so no insert made after
	// Subscribe returns can be missed.
	if _, err := ps.Receive(ctx); err != nil {
		cancel()
		_ = ps.Close()
		return nil, fmt.Errorf("repo.RedisStore.Subscribe: %w", err)
	}

	ch := ps.Channel()
	done := make(chan struct{})

	go func() {
		defer close(done)
		fail := func(err error) {
			metrics.IncStoreSubscriptionError(backendRedis)
			onError(fmt.Errorf("repo.RedisStore.Subscribe: %w", err))
		}

		for {
			docs, err := r.list(subCtx, collection, order)
			if err != nil {
				if subCtx.Err() == nil {
					fail(err)
				}
				return
			}
			metrics.IncStoreSnapshot(backendRedis)
			onSnapshot(docs)

			select {
			case <-subCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					if subCtx.Err() == nil {
						fail(errSubscriptionClosed)
					}
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
			<-done
		})
	}, nil
}

func (r *RedisStore) list(ctx context.Context, collection string, order domain.Order) ([]domain.FlightDoc, error) {
	raw, err := r.rdb.HGetAll(ctx, docsKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}

	docs := make([]domain.FlightDoc, 0, len(raw))
	for id, v := range raw {
		var d redisDoc
		if err := json.Unmarshal([]byte(v), &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", id, err)
		}
		docs = append(docs, domain.FlightDoc(d))
	}
	sortDocs(docs, order)
	return docs, nil
}
