package diagnostics

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/models"
	"marketplace-console/internal/procedures"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type searchUp bool

func (s searchUp) Healthy() bool { return bool(s) }

func TestRun_Healthy(t *testing.T) {
	locations := store.NewMemory[models.Location](models.CollectionLocations)
	require.NoError(t, locations.Seed(
		models.Location{ID: "1", ProvinceName: "Bali", ProvinceCode: "51", CityName: "Badung"},
		models.Location{ID: "2", ProvinceName: "Bali", ProvinceCode: "51", CityName: "Gianyar"},
	))
	hub := realtime.NewHub()
	sub := hub.Subscribe(models.CollectionLocations, func(realtime.Event) {})
	defer sub.Cancel()
	cache := querycache.New(time.Minute, time.Minute)
	cache.Set(models.CollectionLocations, "all", []int{1})

	svc := NewService(Sources{
		DBType:      "memory",
		DB:          pingFunc(func(context.Context) error { return nil }),
		Collections: []Counter{locations},
		Search:      searchUp(true),
		Breaker:     procedures.NewCircuitBreaker(3, time.Minute),
		Cache:       cache,
		Hub:         hub,
	})

	r := svc.Run(context.Background())
	assert.True(t, r.Healthy)
	assert.True(t, r.Database.Connected)
	assert.Equal(t, int64(2), r.Collections[models.CollectionLocations])
	require.NotNil(t, r.SearchHealthy)
	assert.True(t, *r.SearchHealthy)
	assert.Equal(t, 1, r.CacheItems)
	assert.Equal(t, 1, r.Subscribers[models.CollectionLocations])
}

func TestRun_UnhealthyWhenDatabaseDownOrBreakerOpen(t *testing.T) {
	breaker := procedures.NewCircuitBreaker(1, time.Hour)
	breaker.RecordFailure(http.StatusBadGateway)

	svc := NewService(Sources{
		DBType:  "mysql",
		DB:      pingFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") }),
		Breaker: breaker,
	})

	r := svc.Run(context.Background())
	assert.False(t, r.Healthy)
	assert.False(t, r.Database.Connected)
	assert.Contains(t, r.Database.Error, "connection refused")
	require.NotNil(t, r.SyncBreaker)
	assert.True(t, r.SyncBreaker.Open)
}
