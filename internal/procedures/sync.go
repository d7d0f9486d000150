package procedures

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/ratelimit"
	"marketplace-console/internal/realtime"
	"marketplace-console/internal/store"
)

// SyncLocationsProcedure is the server-side procedure that refreshes the location tree
const SyncLocationsProcedure = "sync-indonesia-locations"

// Sync modes
const (
	ModeFull      = "full"
	ModeDistricts = "districts"
)

var (
	// ErrInvalidMode is returned for a mode other than full or districts
	ErrInvalidMode = errors.New("sync mode must be full or districts")
	// ErrSyncInProgress is returned when a sync is already running
	ErrSyncInProgress = errors.New("location sync already in progress")
	// ErrRateLimited is returned when the procedure's call budget is spent
	ErrRateLimited = errors.New("location sync rate limit exceeded")
)

// SyncStats counts the administrative units the procedure wrote
type SyncStats struct {
	Provinces int `json:"provinces"`
	Cities    int `json:"cities"`
	Districts int `json:"districts"`
	Villages  int `json:"villages"`
}

// SyncResult is the procedure's response body
type SyncResult struct {
	Success bool      `json:"success"`
	Stats   SyncStats `json:"stats"`
	Error   string    `json:"error,omitempty"`
}

// Syncer runs the location sync procedure. A failed run is reported, never retried.
type Syncer struct {
	invoker Invoker
	breaker *CircuitBreaker
	limiter *ratelimit.RateLimiter
	state   store.Collection[models.SyncState]
	cache   *querycache.Cache
	hub     *realtime.Hub

	mu      sync.Mutex
	running bool
}

// NewSyncer creates a syncer. limiter, state, cache and hub may be nil.
func NewSyncer(invoker Invoker, breaker *CircuitBreaker, limiter *ratelimit.RateLimiter, state store.Collection[models.SyncState], cache *querycache.Cache, hub *realtime.Hub) *Syncer {
	return &Syncer{
		invoker: invoker,
		breaker: breaker,
		limiter: limiter,
		state:   state,
		cache:   cache,
		hub:     hub,
	}
}

// Breaker exposes the circuit breaker for diagnostics
func (s *Syncer) Breaker() *CircuitBreaker {
	return s.breaker
}

// Running reports whether a sync is in flight
func (s *Syncer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Run invokes the sync procedure once in the given mode
func (s *Syncer) Run(ctx context.Context, mode string) (*SyncResult, error) {
	if mode != ModeFull && mode != ModeDistricts {
		return nil, ErrInvalidMode
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.breaker != nil && !s.breaker.CanProceed() {
		logging.Logger.Warnf("Sync: Skipping %s sync, circuit open", mode)
		return nil, ErrCircuitOpen
	}
	if s.limiter != nil && !s.limiter.AllowRequest() {
		return nil, ErrRateLimited
	}

	logging.Logger.Infof("Sync: Starting %s location sync", mode)
	start := time.Now()

	var result SyncResult
	err := s.invoker.Invoke(ctx, SyncLocationsProcedure, map[string]string{"mode": mode}, &result)
	if err == nil && !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "procedure reported failure"
		}
		err = &RemoteError{Procedure: SyncLocationsProcedure, Message: msg}
	}

	if err != nil {
		s.recordFailure(statusOf(err))
		s.saveState(ctx, func(st *models.SyncState) { st.RecordFailure(mode, err) })
		logging.Logger.Errorf("Sync: %s sync failed after %v: %v", mode, time.Since(start), err)
		return nil, err
	}

	if s.breaker != nil {
		s.breaker.RecordSuccess()
	}
	st := result.Stats
	s.saveState(ctx, func(state *models.SyncState) {
		state.RecordSuccess(mode, st.Provinces, st.Cities, st.Districts, st.Villages)
	})

	if s.cache != nil {
		s.cache.Invalidate(models.CollectionLocations)
	}
	if s.hub != nil {
		s.hub.Notify(models.CollectionLocations, realtime.EventResync, "")
	}

	logging.Logger.Infof("Sync: %s sync completed in %v: %d provinces, %d cities, %d districts, %d villages",
		mode, time.Since(start), st.Provinces, st.Cities, st.Districts, st.Villages)
	return &result, nil
}

// State returns the persisted sync state, or nil before the first run
func (s *Syncer) State(ctx context.Context) (*models.SyncState, error) {
	if s.state == nil {
		return nil, nil
	}
	st, err := s.state.Get(ctx, strconv.Itoa(models.SyncStateID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return st, err
}

func (s *Syncer) recordFailure(status int) {
	if s.breaker != nil {
		s.breaker.RecordFailure(status)
	}
}

func (s *Syncer) saveState(ctx context.Context, apply func(*models.SyncState)) {
	if s.state == nil {
		return
	}
	current, err := s.State(ctx)
	if err != nil {
		logging.Logger.Warnf("Sync: Failed to load sync state: %v", err)
		return
	}
	exists := current != nil
	if !exists {
		current = &models.SyncState{ID: models.SyncStateID}
	}
	apply(current)

	values := map[string]interface{}{
		"last_mode":     current.LastMode,
		"last_attempt":  current.LastAttempt,
		"last_success":  current.LastSuccess,
		"last_error":    current.LastError,
		"failure_count": current.FailureCount,
		"success_count": current.SuccessCount,
		"provinces":     current.Provinces,
		"cities":        current.Cities,
		"districts":     current.Districts,
		"villages":      current.Villages,
	}
	if exists {
		err = s.state.Update(ctx, strconv.Itoa(models.SyncStateID), values)
	} else {
		values["id"] = models.SyncStateID
		_, err = s.state.Insert(ctx, values)
	}
	if err != nil {
		logging.Logger.Warnf("Sync: Failed to save sync state: %v", err)
	}
}

func statusOf(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		if remote.StatusCode != 0 {
			return remote.StatusCode
		}
		return http.StatusOK
	}
	return 0
}

// String renders stats for logs
func (s SyncStats) String() string {
	return fmt.Sprintf("provinces=%d cities=%d districts=%d villages=%d", s.Provinces, s.Cities, s.Districts, s.Villages)
}
