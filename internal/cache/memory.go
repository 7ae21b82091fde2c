package cache

import (
	"context"
	"sync"

	"github.com/dodam-health/glucoquest/internal/domain"
)

// Memory is a bounded in-memory profile cache. When the cache is full the
// oldest inserted entry is evicted. It is injected as a dependency so tests
// can isolate state; there is no package-level singleton.
type Memory struct {
	maxEntries int
	entries    map[uint]*domain.Principal
	order      []uint
	mu         sync.RWMutex
}

// NewMemory creates a bounded cache holding at most maxEntries profiles.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &Memory{
		maxEntries: maxEntries,
		entries:    make(map[uint]*domain.Principal),
	}
}

func (m *Memory) Get(_ context.Context, subjectID uint) (*domain.Principal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.entries[subjectID]
	return p, ok
}

func (m *Memory) Set(_ context.Context, subjectID uint, p *domain.Principal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[subjectID]; !exists {
		for len(m.entries) >= m.maxEntries && len(m.order) > 0 {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.entries, oldest)
		}
		m.order = append(m.order, subjectID)
	}
	m.entries[subjectID] = p
}

// Len reports the number of cached profiles.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
