package diagnostics

import (
	"context"
	"time"

	"marketplace-console/internal/opqueue"
	"marketplace-console/internal/procedures"
	"marketplace-console/internal/querycache"
	"marketplace-console/internal/ratelimit"
	"marketplace-console/internal/realtime"
)

// Pinger checks database connectivity; *sql.DB satisfies it
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Counter counts the rows of one collection
type Counter interface {
	Name() string
	Count(ctx context.Context, filters map[string]interface{}) (int64, error)
}

// SearchHealth reports search engine availability
type SearchHealth interface {
	Healthy() bool
}

// QueueStats reports the offline operation queue
type QueueStats interface {
	Stats(ctx context.Context) (opqueue.Stats, error)
}

// Sources are the components inspected by a diagnostics run. Nil fields are skipped.
type Sources struct {
	DBType      string
	DB          Pinger
	Collections []Counter
	Search      SearchHealth
	Breaker     *procedures.CircuitBreaker
	Queue       QueueStats
	Cache       *querycache.Cache
	RateLimit   *ratelimit.PerClient
	SyncLimit   *ratelimit.RateLimiter
	Hub         *realtime.Hub
}

// DatabaseStatus is the result of the connectivity check
type DatabaseStatus struct {
	Type      string `json:"type"`
	Connected bool   `json:"connected"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Report is a point-in-time view of the backend's health
type Report struct {
	Healthy       bool                      `json:"healthy"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	Database      DatabaseStatus            `json:"database"`
	Collections   map[string]int64          `json:"collections"`
	CountErrors   map[string]string         `json:"count_errors,omitempty"`
	SearchHealthy *bool                     `json:"search_healthy,omitempty"`
	SyncBreaker   *procedures.BreakerStatus `json:"sync_breaker,omitempty"`
	SyncLimit     *ratelimit.Stats          `json:"sync_rate_limit,omitempty"`
	Queue         *opqueue.Stats            `json:"queue,omitempty"`
	CacheItems    int                       `json:"cache_items"`
	RateLimited   int                       `json:"rate_limited_clients"`
	Subscribers   map[string]int            `json:"realtime_subscribers,omitempty"`
}

// Service builds diagnostics reports
type Service struct {
	src Sources
	now func() time.Time
}

// NewService creates a diagnostics service
func NewService(src Sources) *Service {
	return &Service{src: src, now: time.Now}
}

// Run inspects every configured source. The report is unhealthy when the
// database is unreachable or the sync circuit is open.
func (s *Service) Run(ctx context.Context) *Report {
	r := &Report{
		Healthy:     true,
		GeneratedAt: s.now(),
		Database:    DatabaseStatus{Type: s.src.DBType},
		Collections: make(map[string]int64, len(s.src.Collections)),
	}

	if s.src.DB != nil {
		start := time.Now()
		err := s.src.DB.PingContext(ctx)
		r.Database.LatencyMS = time.Since(start).Milliseconds()
		if err != nil {
			r.Database.Error = err.Error()
			r.Healthy = false
		} else {
			r.Database.Connected = true
		}
	}

	for _, c := range s.src.Collections {
		n, err := c.Count(ctx, nil)
		if err != nil {
			if r.CountErrors == nil {
				r.CountErrors = make(map[string]string)
			}
			r.CountErrors[c.Name()] = err.Error()
			continue
		}
		r.Collections[c.Name()] = n
	}

	if s.src.Search != nil {
		ok := s.src.Search.Healthy()
		r.SearchHealthy = &ok
	}

	if s.src.Breaker != nil {
		st := s.src.Breaker.Status()
		r.SyncBreaker = &st
		if st.Open {
			r.Healthy = false
		}
	}

	if s.src.SyncLimit != nil {
		st := s.src.SyncLimit.GetStats()
		r.SyncLimit = &st
	}

	if s.src.Queue != nil {
		if st, err := s.src.Queue.Stats(ctx); err == nil {
			r.Queue = &st
		} else {
			if r.CountErrors == nil {
				r.CountErrors = make(map[string]string)
			}
			r.CountErrors["pending_operations"] = err.Error()
		}
	}

	if s.src.Cache != nil {
		r.CacheItems = s.src.Cache.ItemCount()
	}
	if s.src.RateLimit != nil {
		r.RateLimited = s.src.RateLimit.Clients()
	}

	if s.src.Hub != nil {
		r.Subscribers = make(map[string]int)
		for _, c := range s.src.Collections {
			if n := s.src.Hub.SubscriberCount(c.Name()); n > 0 {
				r.Subscribers[c.Name()] = n
			}
		}
	}

	return r
}
