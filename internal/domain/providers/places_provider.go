package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
)

// ErrPlacesUnauthorized is returned when the places API rejects the key.
var ErrPlacesUnauthorized = errors.New("places api rejected the request")

// Place is a result from the places API, before it is tied to a specialty.
type Place struct {
	ID       string
	Name     string
	Address  string
	Location *entities.Location
	Rating   entities.Rating
}

// PlacesProvider looks up points of interest.
type PlacesProvider interface {
	// NearbySearch finds places around center matching keyword.
	NearbySearch(ctx context.Context, center entities.Location, radiusMeters int, keyword string) ([]*Place, error)

	// TextSearch runs a free-text place query such as "Cardiologist hospitals in Pune".
	TextSearch(ctx context.Context, query string) ([]*Place, error)
}
