package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
)

// MemoryHospitalIndex keeps indexed hospitals in process. It is used when
// Typesense is not configured and matches the same filters as the Typesense
// adapter: free-text over name, specialization and address, exact
// specialization, and an optional radius around a point.
type MemoryHospitalIndex struct {
	mu    sync.RWMutex
	docs  map[string]*entities.Hospital
	order []string
}

var _ repositories.HospitalIndex = (*MemoryHospitalIndex)(nil)

// NewMemoryHospitalIndex creates an empty in-memory index
func NewMemoryHospitalIndex() *MemoryHospitalIndex {
	return &MemoryHospitalIndex{docs: make(map[string]*entities.Hospital)}
}

// Index upserts hospitals keyed like the Typesense documents.
func (m *MemoryHospitalIndex) Index(ctx context.Context, hospitals []*entities.Hospital) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range hospitals {
		if h == nil {
			continue
		}
		id := documentID(h)
		if _, exists := m.docs[id]; !exists {
			m.order = append(m.order, id)
		}
		copied := *h
		copied.DistanceKm = nil
		m.docs[id] = &copied
	}
	return nil
}

// Search returns matching hospitals, nearest first when a point is given and
// best rated first otherwise.
func (m *MemoryHospitalIndex) Search(ctx context.Context, query repositories.HospitalQuery) ([]*entities.Hospital, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	terms := strings.Fields(strings.ToLower(query.Query))
	specialization := strings.TrimSpace(query.Specialization)
	var center *entities.Location
	if query.Latitude != nil && query.Longitude != nil {
		center = &entities.Location{Latitude: *query.Latitude, Longitude: *query.Longitude}
	}

	m.mu.RLock()
	results := []*entities.Hospital{}
	for _, id := range m.order {
		h := *m.docs[id]
		if specialization != "" && !strings.EqualFold(h.Specialization, specialization) {
			continue
		}
		if !matchesTerms(&h, terms) {
			continue
		}
		if center != nil {
			loc, ok := h.Location()
			if !ok {
				continue
			}
			d := entities.DistanceKm(*center, loc)
			if query.RadiusKm > 0 && d > query.RadiusKm {
				continue
			}
			h.DistanceKm = &d
		}
		results = append(results, &h)
	}
	m.mu.RUnlock()

	if center != nil {
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].DistanceKm < *results[j].DistanceKm
		})
		if len(results) > limit {
			results = results[:limit]
		}
		return results, nil
	}
	return entities.RankHospitals(results, limit), nil
}

// Len reports how many documents are indexed.
func (m *MemoryHospitalIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func matchesTerms(h *entities.Hospital, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(h.Name + " " + h.Specialization + " " + h.Address)
	for _, term := range terms {
		if term == "*" {
			continue
		}
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
