// Package confidence owns the shared per-skill confidence history. The store
// is injected into the recommendation engine and the learning loop rather
// than living as module-level state; writes are serialized, reads observe an
// eventually-consistent snapshot.
package confidence

import (
	"math"
	"sync"
)

// DefaultHistoryLimit caps each skill's history. The 21st insertion evicts
// the oldest entry.
const DefaultHistoryLimit = 20

// Store keeps a bounded FIFO confidence history per skill id.
type Store struct {
	mu        sync.RWMutex
	limit     int
	histories map[string][]float64
}

// NewStore creates a store with the default history limit.
func NewStore() *Store {
	return NewStoreWithLimit(DefaultHistoryLimit)
}

// NewStoreWithLimit creates a store with a custom history limit.
func NewStoreWithLimit(limit int) *Store {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Store{
		limit:     limit,
		histories: make(map[string][]float64),
	}
}

// Append records a confidence score for a skill, evicting the oldest entry
// beyond the limit.
func (s *Store) Append(skillID string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.histories[skillID], score)
	if len(history) > s.limit {
		history = history[len(history)-s.limit:]
	}
	s.histories[skillID] = history
}

// History returns a copy of the skill's confidence history, oldest first.
func (s *Store) History(skillID string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.histories[skillID]...)
}

// Len returns the number of recorded scores for a skill.
func (s *Store) Len(skillID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories[skillID])
}

// Mean returns the arithmetic mean of the skill's history.
func (s *Store) Mean(skillID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[skillID]
	if len(history) == 0 {
		return 0, false
	}
	return mean(history), true
}

// Variance returns the population variance of the skill's history.
func (s *Store) Variance(skillID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[skillID]
	if len(history) == 0 {
		return 0, false
	}
	m := mean(history)
	var sum float64
	for _, v := range history {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(history)), true
}

// RecencyWeightedMean averages the history with weight 0.9^(n-1-i) so the
// most recent score weighs highest.
func (s *Store) RecencyWeightedMean(skillID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.histories[skillID]
	n := len(history)
	if n == 0 {
		return 0, false
	}
	var weighted, total float64
	for i, v := range history {
		w := math.Pow(0.9, float64(n-1-i))
		weighted += v * w
		total += w
	}
	return weighted / total, true
}

// Snapshot returns a copy of every history, keyed by skill id.
func (s *Store) Snapshot() map[string][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]float64, len(s.histories))
	for id, history := range s.histories {
		out[id] = append([]float64(nil), history...)
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
