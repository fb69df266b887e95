package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/climate-chat/internal/weather"
)

var (
	// ErrNotFound is returned when no panel is stored for the given coordinates.
	ErrNotFound = errors.New("no panel data for location")
)

// PanelHistory holds a time-ordered list of panels for a location.
type PanelHistory struct {
	Panels []weather.Panel
}

// MemoryStore is a concurrency-safe in-memory panel store. Nothing survives
// a restart.
type MemoryStore struct {
	mu sync.RWMutex

	// key: coordinates key, value: history
	data map[string]*PanelHistory

	maxHistory int           // max number of panels per location
	maxAge     time.Duration // optional max age for panels

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*PanelHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SavePanel appends a panel for a location and enforces retention.
func (s *MemoryStore) SavePanel(coords weather.Coordinates, panel weather.Panel) {
	key := coords.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &PanelHistory{}
		s.data[key] = history
	}

	history.Panels = append(history.Panels, panel)

	if s.maxHistory > 0 && len(history.Panels) > s.maxHistory {
		over := len(history.Panels) - s.maxHistory
		history.Panels = history.Panels[over:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Panels); i++ {
			if !history.Panels[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		// The newest panel is always kept, however old.
		if i >= len(history.Panels) {
			i = len(history.Panels) - 1
		}
		history.Panels = history.Panels[i:]
	}
}

// GetLatest returns the most recent panel for a location.
func (s *MemoryStore) GetLatest(coords weather.Coordinates) (weather.Panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[coords.Key()]
	if !ok || len(history.Panels) == 0 {
		return weather.Panel{}, ErrNotFound
	}
	return history.Panels[len(history.Panels)-1], nil
}

// GetRange returns all panels for a location fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(coords weather.Coordinates, from, to time.Time) ([]weather.Panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[coords.Key()]
	if !ok || len(history.Panels) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Panel
	for _, p := range history.Panels {
		if !p.FetchedAt.Before(from) && !p.FetchedAt.After(to) {
			result = append(result, p)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
