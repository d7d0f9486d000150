package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter tracks and enforces sliding-window request limits.
// A zero limit disables that window.
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	requestsPerDay    int
	enabled           bool
	now               func() time.Time

	// Request tracking
	minuteWindow []time.Time
	hourWindow   []time.Time
	dayWindow    []time.Time
	mu           sync.Mutex
}

// NewRateLimiter creates a new rate limiter with the given limits
func NewRateLimiter(requestsPerMinute, requestsPerHour, requestsPerDay int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		requestsPerDay:    requestsPerDay,
		enabled:           enabled,
		now:               time.Now,
		minuteWindow:      make([]time.Time, 0),
		hourWindow:        make([]time.Time, 0),
		dayWindow:         make([]time.Time, 0),
	}
}

// AllowRequest checks if a request is allowed based on rate limits
// Returns true if allowed, false if rate limit exceeded
func (rl *RateLimiter) AllowRequest() bool {
	ok, _ := rl.Allow()
	return ok
}

// Allow records a request when it fits every window. When it does not,
// it returns how long until the fullest window frees a slot.
func (rl *RateLimiter) Allow() (bool, time.Duration) {
	if !rl.enabled {
		return true, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	// Clean up old entries
	rl.cleanup(now)

	// Check limits
	if rl.requestsPerMinute > 0 && len(rl.minuteWindow) >= rl.requestsPerMinute {
		return false, rl.minuteWindow[0].Add(time.Minute).Sub(now)
	}
	if rl.requestsPerHour > 0 && len(rl.hourWindow) >= rl.requestsPerHour {
		return false, rl.hourWindow[0].Add(time.Hour).Sub(now)
	}
	if rl.requestsPerDay > 0 && len(rl.dayWindow) >= rl.requestsPerDay {
		return false, rl.dayWindow[0].Add(24 * time.Hour).Sub(now)
	}

	// Record the request
	rl.minuteWindow = append(rl.minuteWindow, now)
	rl.hourWindow = append(rl.hourWindow, now)
	rl.dayWindow = append(rl.dayWindow, now)

	return true, 0
}

// cleanup removes expired entries from the time windows
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.minuteWindow = filterTimes(rl.minuteWindow, now.Add(-1*time.Minute))
	rl.hourWindow = filterTimes(rl.hourWindow, now.Add(-1*time.Hour))
	rl.dayWindow = filterTimes(rl.dayWindow, now.Add(-24*time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(rl.now())

	return Stats{
		Enabled:             true,
		RequestsLastMinute:  len(rl.minuteWindow),
		RequestsLastHour:    len(rl.hourWindow),
		RequestsLastDay:     len(rl.dayWindow),
		LimitPerMinute:      rl.requestsPerMinute,
		LimitPerHour:        rl.requestsPerHour,
		LimitPerDay:         rl.requestsPerDay,
		RemainingThisMinute: remaining(rl.requestsPerMinute, len(rl.minuteWindow)),
		RemainingThisHour:   remaining(rl.requestsPerHour, len(rl.hourWindow)),
		RemainingThisDay:    remaining(rl.requestsPerDay, len(rl.dayWindow)),
	}
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled             bool `json:"enabled"`
	RequestsLastMinute  int  `json:"requests_last_minute"`
	RequestsLastHour    int  `json:"requests_last_hour"`
	RequestsLastDay     int  `json:"requests_last_day"`
	LimitPerMinute      int  `json:"limit_per_minute"`
	LimitPerHour        int  `json:"limit_per_hour"`
	LimitPerDay         int  `json:"limit_per_day"`
	RemainingThisMinute int  `json:"remaining_this_minute"`
	RemainingThisHour   int  `json:"remaining_this_hour"`
	RemainingThisDay    int  `json:"remaining_this_day"`
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.minuteWindow = make([]time.Time, 0)
	rl.hourWindow = make([]time.Time, 0)
	rl.dayWindow = make([]time.Time, 0)
}

// -1 means unlimited
func remaining(limit, used int) int {
	if limit <= 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
