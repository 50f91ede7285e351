package store

import (
	"errors"
	"sync"
	"time"

	"github.com/skycast-dev/skycast/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// ConditionsHistory holds a time-ordered list of observed conditions for a location.
type ConditionsHistory struct {
	Conditions []weather.CurrentConditions
}

// MemoryStore is a concurrency-safe in-memory history of observed conditions
// for tracked locations.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*ConditionsHistory

	// retention configuration
	maxHistory int           // max number of entries per location
	maxAge     time.Duration // optional max age for entries
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ConditionsHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveConditions appends observed conditions for a location and enforces retention.
func (s *MemoryStore) SaveConditions(loc weather.Location, cond weather.CurrentConditions) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &ConditionsHistory{}
		s.data[key] = history
	}

	history.Conditions = append(history.Conditions, cond)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Conditions) > s.maxHistory {
		over := len(history.Conditions) - s.maxHistory
		history.Conditions = history.Conditions[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Conditions); i++ {
			if !history.Conditions[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history.Conditions) {
			history.Conditions = history.Conditions[i:]
		}
	}
}

// GetLatest returns the most recent observed conditions for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.CurrentConditions, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Conditions) == 0 {
		return weather.CurrentConditions{}, ErrNotFound
	}
	return history.Conditions[len(history.Conditions)-1], nil
}

// GetRange returns all observed conditions for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.CurrentConditions, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Conditions) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.CurrentConditions
	for _, cond := range history.Conditions {
		if !cond.Timestamp.Before(from) && !cond.Timestamp.After(to) {
			result = append(result, cond)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
