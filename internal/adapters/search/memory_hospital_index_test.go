package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
)

func hospitalAt(name, specialization string, lat, lng float64, rating entities.Rating) *entities.Hospital {
	return &entities.Hospital{
		PlaceID:        name,
		Name:           name,
		Specialization: specialization,
		Address:        "1 Main Road, Pune",
		Latitude:       &lat,
		Longitude:      &lng,
		Rating:         rating,
	}
}

func seededIndex(t *testing.T) *MemoryHospitalIndex {
	t.Helper()
	idx := NewMemoryHospitalIndex()
	require.NoError(t, idx.Index(context.Background(), []*entities.Hospital{
		hospitalAt("Ruby Hall Clinic", "Cardiologist", 18.5314, 73.8446, entities.NewRating(4.2)),
		hospitalAt("Sahyadri Hospital", "Cardiologist", 18.5089, 73.8259, entities.NewRating(4.6)),
		hospitalAt("Skin City", "Dermatologist", 18.5590, 73.7868, entities.Rating{}),
		hospitalAt("Far Away Clinic", "Cardiologist", 19.0760, 72.8777, entities.NewRating(5)),
	}))
	return idx
}

func TestMemoryHospitalIndex_UpsertKeepsOneCopy(t *testing.T) {
	idx := seededIndex(t)
	require.NoError(t, idx.Index(context.Background(), []*entities.Hospital{
		hospitalAt("Skin City", "Dermatologist", 18.5590, 73.7868, entities.NewRating(3.9)),
	}))

	assert.Equal(t, 4, idx.Len())
	got, err := idx.Search(context.Background(), repositories.HospitalQuery{Query: "skin"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entities.NewRating(3.9), got[0].Rating)
}

func TestMemoryHospitalIndex_SpecializationRankedByRating(t *testing.T) {
	got, err := seededIndex(t).Search(context.Background(), repositories.HospitalQuery{Specialization: "cardiologist"})
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, h := range got {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"Far Away Clinic", "Sahyadri Hospital", "Ruby Hall Clinic"}, names)
}

func TestMemoryHospitalIndex_RadiusSortsByDistance(t *testing.T) {
	lat, lng := 18.5204, 73.8567
	got, err := seededIndex(t).Search(context.Background(), repositories.HospitalQuery{
		Latitude:  &lat,
		Longitude: &lng,
		RadiusKm:  10,
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "Ruby Hall Clinic", got[0].Name)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, *got[i-1].DistanceKm, *got[i].DistanceKm)
	}
}

func TestMemoryHospitalIndex_Limit(t *testing.T) {
	got, err := seededIndex(t).Search(context.Background(), repositories.HospitalQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
