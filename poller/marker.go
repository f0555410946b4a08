package poller

import (
	"context"
	"sync"
)

// MarkerStore keeps the polling cursor between runs.
type MarkerStore interface {
	// Load returns nil when no marker has been saved yet.
	Load(ctx context.Context) (*int64, error)
	Save(ctx context.Context, marker int64) error
}

// MemoryMarkers is a MarkerStore which lives as long as the process.
type MemoryMarkers struct {
	marker *int64
	mu     sync.RWMutex
}

func (m *MemoryMarkers) Load(ctx context.Context) (*int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyMarker(m.marker), nil
}

func (m *MemoryMarkers) Save(ctx context.Context, marker int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marker = &marker
	return nil
}

func copyMarker(marker *int64) *int64 {
	if marker == nil {
		return nil
	}

	value := *marker
	return &value
}
