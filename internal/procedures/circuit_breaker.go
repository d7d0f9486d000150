package procedures

import (
	"errors"
	"sync"
	"time"

	"marketplace-console/internal/logging"
)

// ErrCircuitOpen is returned while the breaker refuses calls
var ErrCircuitOpen = errors.New("backend procedure circuit is open")

// CircuitBreaker stops calling a remote procedure that keeps failing.
// It opens after failureThreshold consecutive failures, or once 40% of at
// least 20 calls have failed, and allows one trial call after resetTimeout.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time

	failures            int
	successes           int
	totalRequests       int
	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time

	mutex sync.Mutex
}

// BreakerStatus is a snapshot of the breaker for diagnostics
type BreakerStatus struct {
	Open                bool       `json:"open"`
	Failures            int        `json:"failures"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	TotalRequests       int        `json:"total_requests"`
	LastFailure         *time.Time `json:"last_failure,omitempty"`
	ResetTimeout        string     `json:"reset_timeout"`
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
}

// RecordSuccess records a successful call
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.successes++
	cb.totalRequests++
	cb.consecutiveFailures = 0
}

// RecordFailure records a failed call. statusCode is 0 for transport errors.
func (cb *CircuitBreaker) RecordFailure(statusCode int) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.consecutiveFailures++
	cb.totalRequests++
	cb.lastFailureTime = cb.now()

	if cb.consecutiveFailures >= cb.failureThreshold {
		cb.isOpen = true
		logging.Logger.Errorf("CircuitBreaker: Open after %d consecutive failures (last status %d), retry after %v",
			cb.consecutiveFailures, statusCode, cb.resetTimeout)
		return
	}

	// Failure rate over a window of at least 20 calls
	if cb.totalRequests >= 20 {
		failureRate := float64(cb.failures) / float64(cb.totalRequests)
		if failureRate >= 0.40 {
			cb.isOpen = true
			logging.Logger.Errorf("CircuitBreaker: Open at failure rate %.1f%% (%d/%d), retry after %v",
				failureRate*100, cb.failures, cb.totalRequests, cb.resetTimeout)
		}
	}
}

// CanProceed reports whether a call may be made. After the reset timeout the
// breaker closes and counters start over.
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if !cb.isOpen {
		return true
	}

	if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		logging.Logger.Infof("CircuitBreaker: Half-open after %v", cb.resetTimeout)
		cb.isOpen = false
		cb.failures = 0
		cb.successes = 0
		cb.totalRequests = 0
		cb.consecutiveFailures = 0
		return true
	}

	return false
}

// Status returns the current breaker state
func (cb *CircuitBreaker) Status() BreakerStatus {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	s := BreakerStatus{
		Open:                cb.isOpen,
		Failures:            cb.failures,
		ConsecutiveFailures: cb.consecutiveFailures,
		TotalRequests:       cb.totalRequests,
		ResetTimeout:        cb.resetTimeout.String(),
	}
	if !cb.lastFailureTime.IsZero() {
		t := cb.lastFailureTime
		s.LastFailure = &t
	}
	return s
}
