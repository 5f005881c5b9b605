package places

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
)

// MockProvider returns deterministic places. It is used when no API key is
// configured and in tests.
type MockProvider struct{}

// NewMockProvider creates a new mock places provider
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var _ providers.PlacesProvider = (*MockProvider)(nil)

var mockCities = map[string]entities.Location{
	"mumbai":    {Latitude: 19.0760, Longitude: 72.8777},
	"delhi":     {Latitude: 28.6139, Longitude: 77.2090},
	"bangalore": {Latitude: 12.9716, Longitude: 77.5946},
	"pune":      {Latitude: 18.5204, Longitude: 73.8567},
	"chennai":   {Latitude: 13.0827, Longitude: 80.2707},
	"lagos":     {Latitude: 6.5244, Longitude: 3.3792},
	"new york":  {Latitude: 40.7128, Longitude: -74.0060},
}

var mockSuffixes = []string{"Care Centre", "Multispeciality Hospital", "Clinic"}

// NearbySearch returns three places within a few hundred metres of center.
func (m *MockProvider) NearbySearch(ctx context.Context, center entities.Location, radiusMeters int, keyword string) ([]*providers.Place, error) {
	return m.generate(keyword, &center, "Near you"), nil
}

// TextSearch returns three places for "<keyword> hospitals in <city>" style
// queries. Known cities get coordinates.
func (m *MockProvider) TextSearch(ctx context.Context, query string) ([]*providers.Place, error) {
	keyword, city := splitTextQuery(query)
	var center *entities.Location
	if loc, ok := mockCities[strings.ToLower(city)]; ok {
		center = &loc
	}
	return m.generate(keyword, center, city), nil
}

func (m *MockProvider) generate(keyword string, center *entities.Location, area string) []*providers.Place {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		keyword = "General"
	}
	seed := hashString(strings.ToLower(keyword))

	places := make([]*providers.Place, 0, len(mockSuffixes))
	for i, suffix := range mockSuffixes {
		place := &providers.Place{
			ID:      fmt.Sprintf("mock-%08x-%d", seed, i),
			Name:    fmt.Sprintf("%s %s", keyword, suffix),
			Address: fmt.Sprintf("%d Health Street, %s", 10+i, area),
		}
		// The last result is left unrated.
		if i < len(mockSuffixes)-1 {
			place.Rating = entities.NewRating(3.5 + float64((seed+uint32(i))%15)/10)
		}
		if center != nil {
			offset := 0.002 * float64(i+1)
			place.Location = &entities.Location{
				Latitude:  center.Latitude + offset,
				Longitude: center.Longitude - offset,
			}
		}
		places = append(places, place)
	}
	return places
}

func splitTextQuery(query string) (keyword, city string) {
	lower := strings.ToLower(query)
	if idx := strings.LastIndex(lower, " in "); idx >= 0 {
		city = strings.TrimSpace(query[idx+len(" in "):])
		query = query[:idx]
	}
	keyword = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), "hospitals"))
	return keyword, city
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
