package capture

import (
	"sync"
	"time"
)

// DefaultRecentLimit is how many records Stats returns when no limit is configured.
const DefaultRecentLimit = 20

// Store is an append-only, in-memory list of captured payloads. It lives as long
// as the process (or the test) that created it and is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	payloads  []Payload
	byService map[string]int

	startedAt time.Time
	now       func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the clock used for uptime (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store whose uptime starts now.
func NewStore(opts ...Option) *Store {
	s := &Store{
		byService: make(map[string]int),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now()
	return s
}

// Append adds a copy of p at the end of the capture sequence.
func (s *Store) Append(p Payload) {
	p = p.clone()

	s.mu.Lock()
	s.payloads = append(s.payloads, p)
	s.byService[p.ServiceKey()]++
	s.mu.Unlock()
}

// Count returns the number of appended payloads.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payloads)
}

// Stats returns the total, the per-service counts and the last n payloads in
// insertion order. n <= 0 means DefaultRecentLimit.
func (s *Store) Stats(n int) Stats {
	if n <= 0 {
		n = DefaultRecentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	byService := make(map[string]int, len(s.byService))
	for k, v := range s.byService {
		byService[k] = v
	}

	start := len(s.payloads) - n
	if start < 0 {
		start = 0
	}
	recent := make([]Payload, 0, len(s.payloads)-start)
	for _, p := range s.payloads[start:] {
		recent = append(recent, p.clone())
	}

	return Stats{
		TotalReceived: len(s.payloads),
		ByService:     byService,
		Recent:        recent,
	}
}

// Health reports the store as healthy together with the uptime since creation.
func (s *Store) Health() Health {
	return Health{
		Status:        "healthy",
		Uptime:        s.now().Sub(s.startedAt).Seconds(),
		TotalPayloads: s.Count(),
	}
}
