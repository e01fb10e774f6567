package core

import (
	"errors"
	"sync"
	"time"
)

// ErrResultNotFound is returned for unknown or expired conversion ids.
var ErrResultNotFound = errors.New("conversion not found or expired")

// ErrNoFailureExport is returned when a conversion ran without the failure
// export.
var ErrNoFailureExport = errors.New("failure export not requested")

// resultStore retains finished conversions for download until they expire.
type resultStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	results map[string]*Result
}

func newResultStore(ttl time.Duration) *resultStore {
	return &resultStore{
		ttl:     ttl,
		now:     time.Now,
		results: make(map[string]*Result),
	}
}

func (s *resultStore) put(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.ID] = r
}

func (s *resultStore) get(id string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.results[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	if s.expired(r) {
		delete(s.results, id)
		return nil, ErrResultNotFound
	}
	return r, nil
}

func (s *resultStore) expired(r *Result) bool {
	return s.ttl > 0 && s.now().Sub(r.CreatedAt) > s.ttl
}

// prune drops expired results and returns how many were removed.
func (s *resultStore) prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, r := range s.results {
		if s.expired(r) {
			delete(s.results, id)
			removed++
		}
	}
	return removed
}

func (s *resultStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}
