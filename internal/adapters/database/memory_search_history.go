package database

import (
	"context"
	"sync"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
)

// MemorySearchHistory keeps the most recent searches in process. It backs
// the history endpoints when PostgreSQL is not configured.
type MemorySearchHistory struct {
	mu       sync.RWMutex
	searches []*entities.SymptomSearch
	capacity int
}

// NewMemorySearchHistory keeps at most capacity searches.
func NewMemorySearchHistory(capacity int) *MemorySearchHistory {
	if capacity <= 0 {
		capacity = maxListLimit
	}
	return &MemorySearchHistory{capacity: capacity}
}

var _ repositories.SearchHistoryRepository = (*MemorySearchHistory)(nil)

// Save records a search, evicting the oldest when full.
func (m *MemorySearchHistory) Save(ctx context.Context, search *entities.SymptomSearch) error {
	copied := *search
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, &copied)
	if len(m.searches) > m.capacity {
		m.searches = m.searches[len(m.searches)-m.capacity:]
	}
	return nil
}

// Latest returns the most recent search, or nil
func (m *MemorySearchHistory) Latest(ctx context.Context) (*entities.SymptomSearch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.searches) == 0 {
		return nil, nil
	}
	latest := *m.searches[len(m.searches)-1]
	return &latest, nil
}

// List returns searches newest first
func (m *MemorySearchHistory) List(ctx context.Context, limit int) ([]*entities.SymptomSearch, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entities.SymptomSearch, 0, limit)
	for i := len(m.searches) - 1; i >= 0 && len(out) < limit; i-- {
		s := *m.searches[i]
		out = append(out, &s)
	}
	return out, nil
}
