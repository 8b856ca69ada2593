package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/flightlog/internal/domain"
	"github.com/pkordes/flightlog/internal/repo"
	"github.com/pkordes/flightlog/testutil"
)

func newRedisStore(t *testing.T) *repo.RedisStore {
	t.Helper()
	rdb := testutil.NewRedis(t)

	wipe := func() {
		require.NoError(t, rdb.Del(context.Background(), domain.CollectionFlights+":docs").Err())
	}
	wipe()
	t.Cleanup(wipe)

	return repo.NewRedisStore(rdb)
}

func TestRedisStore_InsertAndSubscribe(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	got := newSnapshots()
	unsub, err := s.Subscribe(ctx, domain.CollectionFlights, byDepartureAsc, got.onSnapshot, got.onError)
	require.NoError(t, err)
	defer unsub()
	assert.Empty(t, got.next(t))

	age := 8.5
	stored, err := s.Insert(ctx, domain.CollectionFlights, domain.FlightDoc{
		FlightNumber:  "KL702",
		AgeYears:      &age,
		DepartureDate: str("2025-12-20"),
		CreatedAt:     base,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)

	_, err = s.Insert(ctx, domain.CollectionFlights, doc("AM010", nil, base.Add(time.Minute)))
	require.NoError(t, err)

	docs := got.until(t, 2)
	assert.Equal(t, []string{"AM010", "KL702"}, numbers(docs))
	assert.Equal(t, stored.ID, docs[1].ID)
	require.NotNil(t, docs[1].AgeYears)
	assert.InDelta(t, 8.5, *docs[1].AgeYears, 1e-9)
	assert.True(t, docs[1].CreatedAt.Equal(base))
}

func TestRedisStore_Unsubscribe_NoError(t *testing.T) {
	s := newRedisStore(t)
	got := newSnapshots()

	unsub, err := s.Subscribe(context.Background(), domain.CollectionFlights, byDepartureAsc, got.onSnapshot, got.onError)
	require.NoError(t, err)
	got.next(t)

	unsub()
	unsub()

	assert.Empty(t, got.errs)
}
