package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/specialistfinder/backend/pkg/errors"
)

// GeneralSpecialization tags results of a city search that matched no specialty.
const GeneralSpecialization = "General"

const (
	defaultRadiusMeters = 5000
	defaultResultLimit  = 10
	defaultFanOut       = 4
)

// NearbyRequest searches around a coordinate.
type NearbyRequest struct {
	Latitude  float64
	Longitude float64
	Symptoms  []string
}

// CityRequest searches by city name.
type CityRequest struct {
	City     string
	Symptoms []string
}

// HospitalSearchResult is returned by both search kinds.
type HospitalSearchResult struct {
	SearchID       string                   `json:"search_id"`
	Hospitals      []*entities.Hospital     `json:"places"`
	Classification *entities.Classification `json:"classification"`
	MapURL         string                   `json:"map_url,omitempty"`
}

// HospitalFinderConfig tunes the search.
type HospitalFinderConfig struct {
	RadiusMeters int
	ResultLimit  int
	FanOut       int
}

// HospitalFinderService turns symptoms and a location into ranked hospitals.
type HospitalFinderService struct {
	classifier SymptomClassifier
	places     providers.PlacesProvider
	maps       *MapRenderer
	history    repositories.SearchHistoryRepository
	index      repositories.HospitalIndex
	events     providers.EventBus
	cfg        HospitalFinderConfig
}

// NewHospitalFinderService creates the service. maps and history may be nil.
func NewHospitalFinderService(
	classifier SymptomClassifier,
	places providers.PlacesProvider,
	maps *MapRenderer,
	history repositories.SearchHistoryRepository,
	cfg HospitalFinderConfig,
) *HospitalFinderService {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = defaultRadiusMeters
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = defaultResultLimit
	}
	if cfg.FanOut <= 0 {
		cfg.FanOut = defaultFanOut
	}
	return &HospitalFinderService{
		classifier: classifier,
		places:     places,
		maps:       maps,
		history:    history,
		cfg:        cfg,
	}
}

// SetIndex sets the hospital index used for indexing results and as a
// fallback when the places API is unavailable.
func (s *HospitalFinderService) SetIndex(index repositories.HospitalIndex) {
	s.index = index
}

// SetEventBus sets the bus search.completed events are published on.
func (s *HospitalFinderService) SetEventBus(bus providers.EventBus) {
	s.events = bus
}

// Classify maps symptoms to specialties without searching.
func (s *HospitalFinderService) Classify(ctx context.Context, symptoms []string) (*entities.Classification, error) {
	return s.classifier.Classify(ctx, symptoms)
}

// FindNearby searches around the request coordinates for every specialty the
// symptoms point to.
func (s *HospitalFinderService) FindNearby(ctx context.Context, req NearbyRequest) (*HospitalSearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "finder.nearby")
	defer span.End()

	center := entities.Location{Latitude: req.Latitude, Longitude: req.Longitude}
	if !center.Valid() {
		return nil, apperrors.NewValidationError("Invalid location data")
	}

	classification, err := s.classifier.Classify(ctx, req.Symptoms)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to classify symptoms", err)
	}
	if !classification.Matched() {
		return nil, apperrors.NewValidationError("No matching specialists found")
	}
	observability.SetSpanAttributes(span, attribute.StringSlice("finder.specialties", classification.Specialties))

	hospitals, err := s.fanOut(ctx, classification.Specialties, func(ctx context.Context, specialty string) ([]*providers.Place, error) {
		return s.places.NearbySearch(ctx, center, s.cfg.RadiusMeters, specialty)
	})
	if err != nil {
		base := repositories.HospitalQuery{
			Latitude:  &center.Latitude,
			Longitude: &center.Longitude,
			RadiusKm:  float64(s.cfg.RadiusMeters) / 1000,
		}
		hospitals, err = s.fromIndex(ctx, classification.Specialties, base, err)
		if err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
	}

	for _, h := range hospitals {
		if loc, ok := h.Location(); ok {
			d := entities.DistanceKm(center, loc)
			h.DistanceKm = &d
		}
	}
	hospitals = entities.RankHospitals(hospitals, s.cfg.ResultLimit)

	search := entities.NewSymptomSearch(entities.SearchKindNearby, req.Symptoms)
	search.Specialties = classification.Specialties
	search.Latitude = &center.Latitude
	search.Longitude = &center.Longitude

	result := &HospitalSearchResult{
		SearchID:       search.ID,
		Hospitals:      hospitals,
		Classification: classification,
	}
	result.MapURL = s.renderMap(ctx, search.ID, MapView{Center: center, Hospitals: hospitals})
	s.complete(ctx, search, result)
	return result, nil
}

// FindInCity runs a text search per specialty in the named city. Without a
// matched specialty a single general hospital query is made.
func (s *HospitalFinderService) FindInCity(ctx context.Context, req CityRequest) (*HospitalSearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "finder.city")
	defer span.End()

	city := strings.TrimSpace(req.City)
	if city == "" {
		return nil, apperrors.NewValidationError("City name is required")
	}

	classification, err := s.classifier.Classify(ctx, req.Symptoms)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to classify symptoms", err)
	}

	queries := classification.Specialties
	general := !classification.Matched()
	if general {
		queries = []string{GeneralSpecialization}
	}
	observability.SetSpanAttributes(span,
		attribute.String("finder.city", city),
		attribute.StringSlice("finder.specialties", queries),
	)

	hospitals, err := s.fanOut(ctx, queries, func(ctx context.Context, specialty string) ([]*providers.Place, error) {
		return s.places.TextSearch(ctx, cityQuery(specialty, city, general))
	})
	if err != nil {
		var fallbackSpecialties []string
		if !general {
			fallbackSpecialties = queries
		}
		hospitals, err = s.fromIndex(ctx, fallbackSpecialties, repositories.HospitalQuery{Query: city}, err)
		if err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
	}
	hospitals = entities.RankHospitals(hospitals, s.cfg.ResultLimit)

	search := entities.NewSymptomSearch(entities.SearchKindCity, req.Symptoms)
	search.Specialties = classification.Specialties
	search.City = city

	result := &HospitalSearchResult{
		SearchID:       search.ID,
		Hospitals:      hospitals,
		Classification: classification,
	}
	if center, ok := centroid(hospitals); ok {
		result.MapURL = s.renderMap(ctx, search.ID, MapView{Center: center, CenterLabel: city, Hospitals: hospitals})
	}
	s.complete(ctx, search, result)
	return result, nil
}

// LastSearch returns the most recent search, or a not-found error.
func (s *HospitalFinderService) LastSearch(ctx context.Context) (*entities.SymptomSearch, error) {
	if s.history == nil {
		return nil, apperrors.NewNotFoundError("No searches recorded yet")
	}
	search, err := s.history.Latest(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load last search", err)
	}
	if search == nil {
		return nil, apperrors.NewNotFoundError("No searches recorded yet")
	}
	return search, nil
}

// ListSearches returns recent searches, newest first.
func (s *HospitalFinderService) ListSearches(ctx context.Context, limit int) ([]*entities.SymptomSearch, error) {
	if s.history == nil {
		return []*entities.SymptomSearch{}, nil
	}
	searches, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to list searches", err)
	}
	return searches, nil
}

// SearchIndexed queries the hospital index directly.
func (s *HospitalFinderService) SearchIndexed(ctx context.Context, query repositories.HospitalQuery) ([]*entities.Hospital, error) {
	if s.index == nil {
		return nil, apperrors.NewNotFoundError("Hospital index is not configured")
	}
	hospitals, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, apperrors.NewExternalError("Failed to search hospital index", err)
	}
	return hospitals, nil
}

type placeLookup func(ctx context.Context, specialty string) ([]*providers.Place, error)

// fanOut runs lookup for every specialty with bounded concurrency. Results
// keep specialty order. An error is returned only when every lookup failed.
func (s *HospitalFinderService) fanOut(ctx context.Context, specialties []string, lookup placeLookup) ([]*entities.Hospital, error) {
	results := make([][]*entities.Hospital, len(specialties))
	var (
		mu       sync.Mutex
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FanOut)
	for i, specialty := range specialties {
		g.Go(func() error {
			places, err := lookup(gctx, specialty)
			if err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).Str("specialty", specialty).Msg("Places lookup failed")
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", specialty, err))
				mu.Unlock()
				return nil
			}
			hospitals := make([]*entities.Hospital, 0, len(places))
			for _, p := range places {
				hospitals = append(hospitals, hospitalFromPlace(p, specialty))
			}
			results[i] = hospitals
			return nil
		})
	}
	_ = g.Wait()

	if len(specialties) > 0 && len(failures) == len(specialties) {
		return nil, errors.Join(failures...)
	}

	var merged []*entities.Hospital
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

// fromIndex serves previously indexed hospitals when the places API failed.
func (s *HospitalFinderService) fromIndex(ctx context.Context, specialties []string, query repositories.HospitalQuery, cause error) ([]*entities.Hospital, error) {
	if s.index == nil {
		return nil, apperrors.NewExternalError("Failed to fetch hospitals", cause)
	}
	observability.LoggerFromContext(ctx).Warn().Err(cause).Msg("Places API unavailable, serving indexed hospitals")

	query.Limit = s.cfg.ResultLimit
	if len(specialties) == 0 {
		specialties = []string{""}
	}

	var hospitals []*entities.Hospital
	for _, specialty := range specialties {
		query.Specialization = specialty
		found, err := s.index.Search(ctx, query)
		if err != nil {
			return nil, apperrors.NewExternalError("Failed to fetch hospitals", errors.Join(cause, err))
		}
		hospitals = append(hospitals, found...)
	}
	return hospitals, nil
}

func (s *HospitalFinderService) renderMap(ctx context.Context, searchID string, view MapView) string {
	if s.maps == nil {
		return ""
	}
	url, err := s.maps.Render(ctx, searchID, view)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("search_id", searchID).Msg("Failed to render map")
		return ""
	}
	return url
}

// complete records, indexes and announces a finished search. Failures are
// logged and never fail the request.
func (s *HospitalFinderService) complete(ctx context.Context, search *entities.SymptomSearch, result *HospitalSearchResult) {
	logger := observability.LoggerFromContext(ctx)
	search.ResultCount = len(result.Hospitals)
	search.MapURL = result.MapURL

	if s.history != nil {
		if err := s.history.Save(ctx, search); err != nil {
			logger.Warn().Err(err).Str("search_id", search.ID).Msg("Failed to save search")
		}
	}
	if s.index != nil && len(result.Hospitals) > 0 {
		if err := s.index.Index(ctx, result.Hospitals); err != nil {
			logger.Warn().Err(err).Str("search_id", search.ID).Msg("Failed to index hospitals")
		}
	}
	if s.events != nil {
		event := entities.NewSearchEvent(entities.SearchEventTypeSearchCompleted, search.ID, map[string]interface{}{
			"kind":         string(search.Kind),
			"specialties":  search.Specialties,
			"city":         search.City,
			"result_count": search.ResultCount,
			"map_url":      search.MapURL,
		})
		if err := s.events.Publish(ctx, providers.EventChannelSearches, event); err != nil {
			logger.Warn().Err(err).Str("search_id", search.ID).Msg("Failed to publish search event")
		}
	}
}

func cityQuery(specialty, city string, general bool) string {
	if general {
		return "hospitals in " + city
	}
	return specialty + " hospitals in " + city
}

func hospitalFromPlace(p *providers.Place, specialty string) *entities.Hospital {
	h := &entities.Hospital{
		PlaceID:        p.ID,
		Name:           p.Name,
		Rating:         p.Rating,
		Specialization: specialty,
		Address:        p.Address,
	}
	if h.Name == "" {
		h.Name = entities.UnknownValue
	}
	if h.Address == "" {
		h.Address = entities.UnknownValue
	}
	if p.Location != nil {
		lat, lng := p.Location.Latitude, p.Location.Longitude
		h.Latitude = &lat
		h.Longitude = &lng
	}
	return h
}

// centroid averages the coordinates of the located hospitals.
func centroid(hospitals []*entities.Hospital) (entities.Location, bool) {
	var sum entities.Location
	n := 0
	for _, h := range hospitals {
		if loc, ok := h.Location(); ok {
			sum.Latitude += loc.Latitude
			sum.Longitude += loc.Longitude
			n++
		}
	}
	if n == 0 {
		return entities.Location{}, false
	}
	return entities.Location{Latitude: sum.Latitude / float64(n), Longitude: sum.Longitude / float64(n)}, true
}
