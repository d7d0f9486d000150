package procedures

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/config"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/ratelimit"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{FunctionsURL: srv.URL + "/functions/v1/", ServiceKey: "svc-key", TimeoutSeconds: 5})
}

func TestClient_InvokeSendsModeAndKey(t *testing.T) {
	var gotPath, gotAuth, gotMode string
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotMode = body["mode"]
		_, _ = w.Write([]byte(`{"success":true,"stats":{"provinces":38,"cities":514,"districts":7277,"villages":83763}}`))
	})

	var result SyncResult
	err := client.Invoke(context.Background(), SyncLocationsProcedure, map[string]string{"mode": ModeDistricts}, &result)
	require.NoError(t, err)
	assert.Equal(t, "/functions/v1/sync-indonesia-locations", gotPath)
	assert.Equal(t, "Bearer svc-key", gotAuth)
	assert.Equal(t, ModeDistricts, gotMode)
	assert.True(t, result.Success)
	assert.Equal(t, 514, result.Stats.Cities)
}

func TestClient_InvokeNon2xx(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream registry unavailable"}`))
	})

	err := client.Invoke(context.Background(), SyncLocationsProcedure, map[string]string{"mode": ModeFull}, nil)
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusBadGateway, remote.StatusCode)
	assert.Equal(t, "upstream registry unavailable", remote.Message)
}

type syncFixture struct {
	calls  int32
	state  *store.Memory[models.SyncState]
	cache  *querycache.Cache
	hub    *realtime.Hub
	syncer *Syncer
}

func newSyncFixture(t *testing.T, handler http.HandlerFunc) *syncFixture {
	t.Helper()
	f := &syncFixture{
		state: store.NewMemory[models.SyncState]("sync_state"),
		cache: querycache.New(time.Minute, time.Minute),
		hub:   realtime.NewHub(),
	}
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.calls, 1)
		handler(w, r)
	})
	f.syncer = NewSyncer(client, NewCircuitBreaker(2, time.Minute), nil, f.state, f.cache, f.hub)
	return f
}

func TestSyncer_SuccessRecordsStateAndInvalidates(t *testing.T) {
	f := newSyncFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"stats":{"provinces":38,"cities":514,"districts":10,"villages":0}}`))
	})
	ctx := context.Background()
	f.cache.Set(models.CollectionLocations, "province-analysis", "stale")

	var events []realtime.Event
	sub := f.hub.Subscribe(models.CollectionLocations, func(e realtime.Event) { events = append(events, e) })
	defer sub.Cancel()

	result, err := f.syncer.Run(ctx, ModeFull)
	require.NoError(t, err)
	assert.Equal(t, 38, result.Stats.Provinces)

	_, cached := f.cache.Get(models.CollectionLocations, "province-analysis")
	assert.False(t, cached)
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventResync, events[0].Type)

	state, err := f.syncer.State(ctx)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, 1, state.SuccessCount)
	assert.Equal(t, 514, state.Cities)
	assert.Equal(t, ModeFull, state.LastMode)
	assert.NotNil(t, state.LastSuccess)
}

func TestSyncer_FailureIsNotRetried(t *testing.T) {
	f := newSyncFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"quota exceeded"}`))
	})
	ctx := context.Background()

	_, err := f.syncer.Run(ctx, ModeDistricts)
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "quota exceeded", remote.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))

	state, err := f.syncer.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.FailureCount)
	assert.Equal(t, "procedure sync-indonesia-locations failed: quota exceeded", state.LastError)
}

func TestSyncer_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	f := newSyncFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()

	_, err := f.syncer.Run(ctx, ModeFull)
	require.Error(t, err)
	_, err = f.syncer.Run(ctx, ModeFull)
	require.Error(t, err)

	_, err = f.syncer.Run(ctx, ModeFull)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
	assert.True(t, f.syncer.Breaker().Status().Open)
}

func TestSyncer_InvalidMode(t *testing.T) {
	f := newSyncFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := f.syncer.Run(context.Background(), "villages")
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Zero(t, atomic.LoadInt32(&f.calls))
}

func TestSyncer_RateLimited(t *testing.T) {
	f := newSyncFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"stats":{}}`))
	})
	f.syncer.limiter = ratelimit.NewRateLimiter(1, 0, 0, true)

	_, err := f.syncer.Run(context.Background(), ModeFull)
	require.NoError(t, err)
	_, err = f.syncer.Run(context.Background(), ModeFull)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure(http.StatusServiceUnavailable)
	assert.False(t, cb.CanProceed())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.CanProceed())
	assert.False(t, cb.Status().Open)
	assert.Zero(t, cb.Status().TotalRequests)
}

func TestCircuitBreaker_FailureRate(t *testing.T) {
	cb := NewCircuitBreaker(100, time.Minute)
	for i := 0; i < 12; i++ {
		cb.RecordSuccess()
	}
	for i := 0; i < 7; i++ {
		cb.RecordFailure(0)
		cb.RecordSuccess()
	}
	assert.False(t, cb.Status().Open)

	// 12 of 31 is under 40%, 13 of 32 is not
	for i := 0; i < 5; i++ {
		cb.RecordFailure(0)
	}
	assert.False(t, cb.Status().Open)
	cb.RecordFailure(0)
	assert.True(t, cb.Status().Open)
}
