package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/adapters/database"
	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/specialistfinder/backend/pkg/errors"
)

type finderFixture struct {
	service *services.HospitalFinderService
	places  *mockPlaces
	store   *memoryMapStore
	history *database.MemorySearchHistory
	bus     *recordingBus
}

func newFinderFixture(limit int) *finderFixture {
	cat := testCatalog()
	f := &finderFixture{
		places:  new(mockPlaces),
		store:   newMemoryMapStore(),
		history: database.NewMemorySearchHistory(10),
		bus:     &recordingBus{},
	}
	f.service = services.NewHospitalFinderService(
		services.NewFuzzyClassifier(cat, 0),
		f.places,
		services.NewMapRenderer(f.store),
		f.history,
		services.HospitalFinderConfig{ResultLimit: limit},
	)
	f.service.SetEventBus(f.bus)
	return f
}

func place(id, name string, rating *float64, lat, lng float64) *providers.Place {
	p := &providers.Place{ID: id, Name: name, Address: name + " Road", Location: &entities.Location{Latitude: lat, Longitude: lng}}
	if rating != nil {
		p.Rating = entities.NewRating(*rating)
	}
	return p
}

func ptr(v float64) *float64 { return &v }

var pune = entities.Location{Latitude: 18.5204, Longitude: 73.8567}

func TestFindNearby_RanksAndRecords(t *testing.T) {
	f := newFinderFixture(3)
	f.places.On("NearbySearch", mock.Anything, pune, 5000, "Dermatologist").Return([]*providers.Place{
		place("d1", "Skin Clinic", ptr(4.1), 18.52, 73.85),
		place("d2", "Unrated Derm", nil, 18.53, 73.86),
	}, nil)
	f.places.On("NearbySearch", mock.Anything, pune, 5000, "Neurologist").Return([]*providers.Place{
		place("n1", "Brain Centre", ptr(4.8), 18.51, 73.84),
		place("n2", "Nerve Hospital", ptr(3.9), 18.50, 73.87),
	}, nil)

	result, err := f.service.FindNearby(context.Background(), services.NearbyRequest{
		Latitude: pune.Latitude, Longitude: pune.Longitude, Symptoms: []string{"headache", "acne"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Dermatologist", "Neurologist"}, result.Classification.Specialties)
	require.Len(t, result.Hospitals, 3)
	assert.Equal(t, "Brain Centre", result.Hospitals[0].Name)
	assert.Equal(t, "Skin Clinic", result.Hospitals[1].Name)
	assert.Equal(t, "Nerve Hospital", result.Hospitals[2].Name)
	assert.Equal(t, "Neurologist", result.Hospitals[0].Specialization)
	require.NotNil(t, result.Hospitals[0].DistanceKm)
	assert.Greater(t, *result.Hospitals[0].DistanceKm, 0.0)

	assert.Equal(t, "/static/maps/"+result.SearchID+".html", result.MapURL)
	assert.Contains(t, f.store.objects, "maps/"+result.SearchID+".html")
	assert.Contains(t, f.store.objects, services.LatestMapKey)

	last, err := f.service.LastSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.SearchID, last.ID)
	assert.Equal(t, entities.SearchKindNearby, last.Kind)
	assert.Equal(t, 3, last.ResultCount)
	assert.Equal(t, result.MapURL, last.MapURL)

	events := f.bus.Events()
	require.Len(t, events, 1)
	assert.Equal(t, entities.SearchEventTypeSearchCompleted, events[0].Type)
	assert.Equal(t, result.SearchID, events[0].SearchID)
}

func TestFindNearby_ValidationErrors(t *testing.T) {
	f := newFinderFixture(10)

	_, err := f.service.FindNearby(context.Background(), services.NearbyRequest{Latitude: 123, Longitude: 10, Symptoms: []string{"headache"}})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid location data", appErr.Message)

	_, err = f.service.FindNearby(context.Background(), services.NearbyRequest{Latitude: pune.Latitude, Longitude: pune.Longitude, Symptoms: []string{"pizza"}})
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "No matching specialists found", appErr.Message)

	f.places.AssertNotCalled(t, "NearbySearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFindNearby_PartialFailureKeepsOtherSpecialties(t *testing.T) {
	f := newFinderFixture(10)
	f.places.On("NearbySearch", mock.Anything, pune, 5000, "Dermatologist").Return(nil, errors.New("timeout"))
	f.places.On("NearbySearch", mock.Anything, pune, 5000, "Neurologist").Return([]*providers.Place{
		place("n1", "Brain Centre", ptr(4.8), 18.51, 73.84),
	}, nil)

	result, err := f.service.FindNearby(context.Background(), services.NearbyRequest{
		Latitude: pune.Latitude, Longitude: pune.Longitude, Symptoms: []string{"headache", "acne"},
	})
	require.NoError(t, err)
	require.Len(t, result.Hospitals, 1)
	assert.Equal(t, "Brain Centre", result.Hospitals[0].Name)
}

func TestFindNearby_AllLookupsFail(t *testing.T) {
	f := newFinderFixture(10)
	f.places.On("NearbySearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, providers.ErrPlacesUnauthorized)

	_, err := f.service.FindNearby(context.Background(), services.NearbyRequest{
		Latitude: pune.Latitude, Longitude: pune.Longitude, Symptoms: []string{"headache"},
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.ErrorIs(t, err, providers.ErrPlacesUnauthorized)
}

func TestFindNearby_FallsBackToIndex(t *testing.T) {
	f := newFinderFixture(10)
	index := new(mockHospitalIndex)
	f.service.SetIndex(index)

	f.places.On("NearbySearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))
	lat, lng := 18.52, 73.85
	index.On("Search", mock.Anything, mock.MatchedBy(func(q repositories.HospitalQuery) bool {
		return q.Specialization == "Neurologist" && q.Latitude != nil && q.RadiusKm == 5 && q.Limit == 10
	})).Return([]*entities.Hospital{
		{Name: "Indexed Neuro", Specialization: "Neurologist", Address: "X", Latitude: &lat, Longitude: &lng, Rating: entities.NewRating(4)},
	}, nil)
	index.On("Index", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.FindNearby(context.Background(), services.NearbyRequest{
		Latitude: pune.Latitude, Longitude: pune.Longitude, Symptoms: []string{"headache"},
	})
	require.NoError(t, err)
	require.Len(t, result.Hospitals, 1)
	assert.Equal(t, "Indexed Neuro", result.Hospitals[0].Name)
	assert.NotNil(t, result.Hospitals[0].DistanceKm)
	index.AssertExpectations(t)
}

func TestFindInCity_GeneralQueryWithoutSymptoms(t *testing.T) {
	f := newFinderFixture(10)
	f.places.On("TextSearch", mock.Anything, "hospitals in Pune").Return([]*providers.Place{
		{ID: "g1", Name: "", Address: ""},
	}, nil)

	result, err := f.service.FindInCity(context.Background(), services.CityRequest{City: " Pune "})
	require.NoError(t, err)
	require.Len(t, result.Hospitals, 1)
	assert.Equal(t, services.GeneralSpecialization, result.Hospitals[0].Specialization)
	assert.Equal(t, entities.UnknownValue, result.Hospitals[0].Name)
	assert.Equal(t, entities.UnknownValue, result.Hospitals[0].Address)
	assert.Empty(t, result.MapURL)
	assert.Empty(t, f.store.objects)
}

func TestFindInCity_PerSpecialtyQueries(t *testing.T) {
	f := newFinderFixture(10)
	f.places.On("TextSearch", mock.Anything, "Neurologist hospitals in Pune").Return([]*providers.Place{
		place("n1", "Brain Centre", ptr(4.8), 18.51, 73.84),
		place("n2", "Unrated", nil, 18.52, 73.85),
	}, nil)

	result, err := f.service.FindInCity(context.Background(), services.CityRequest{City: "Pune", Symptoms: []string{"headache"}})
	require.NoError(t, err)
	require.Len(t, result.Hospitals, 2)
	assert.Equal(t, "Brain Centre", result.Hospitals[0].Name)
	assert.Nil(t, result.Hospitals[0].DistanceKm)
	assert.Equal(t, "/static/maps/"+result.SearchID+".html", result.MapURL)

	last, err := f.service.LastSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pune", last.City)
	assert.Equal(t, entities.SearchKindCity, last.Kind)
}

func TestFindInCity_RequiresCity(t *testing.T) {
	f := newFinderFixture(10)
	_, err := f.service.FindInCity(context.Background(), services.CityRequest{City: "  "})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "City name is required", appErr.Message)
}

func TestLastSearch_NoneRecorded(t *testing.T) {
	f := newFinderFixture(10)
	_, err := f.service.LastSearch(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	searches, err := f.service.ListSearches(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestSearchIndexed_RequiresIndex(t *testing.T) {
	f := newFinderFixture(10)
	_, err := f.service.SearchIndexed(context.Background(), repositories.HospitalQuery{Query: "clinic"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
