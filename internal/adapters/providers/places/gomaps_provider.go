package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/specialistfinder/backend/internal/adapters/cache"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
	"github.com/zatekoja/specialistfinder/backend/pkg/retry"
)

const (
	// DefaultBaseURL is the Google-compatible places API used by the frontend deployment.
	DefaultBaseURL = "https://maps.gomaps.pro/maps/api"

	placesCacheTTL     = 6 * time.Hour
	defaultHTTPTimeout = 8 * time.Second

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
	statusDenied      = "REQUEST_DENIED"
)

// GoMapsProvider implements PlacesProvider against a Google Places compatible API.
type GoMapsProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.JSONCache
	metrics    *observability.Metrics
	retryCfg   retry.Config
}

// Option customises a GoMapsProvider.
type Option func(*GoMapsProvider)

// WithHTTPClient overrides the HTTP client (used for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(p *GoMapsProvider) { p.httpClient = c }
}

// WithCache enables response caching.
func WithCache(c providers.CacheProvider) Option {
	return func(p *GoMapsProvider) { p.cache = cache.NewJSONCache(c) }
}

// WithMetrics records upstream call metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *GoMapsProvider) { p.metrics = m }
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg retry.Config) Option {
	return func(p *GoMapsProvider) { p.retryCfg = cfg }
}

// NewGoMapsProvider creates a new places provider.
func NewGoMapsProvider(apiKey, baseURL string, opts ...Option) *GoMapsProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	p := &GoMapsProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		cache:      cache.NewJSONCache(nil),
		retryCfg:   retry.UpstreamConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ providers.PlacesProvider = (*GoMapsProvider)(nil)

// NearbySearch finds places around center matching keyword.
func (p *GoMapsProvider) NearbySearch(ctx context.Context, center entities.Location, radiusMeters int, keyword string) ([]*providers.Place, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", center.Latitude, center.Longitude))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("keyword", keyword)
	return p.search(ctx, "nearbysearch", params)
}

// TextSearch runs a free-text place query.
func (p *GoMapsProvider) TextSearch(ctx context.Context, query string) ([]*providers.Place, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	params := url.Values{}
	params.Set("query", query)
	return p.search(ctx, "textsearch", params)
}

func (p *GoMapsProvider) search(ctx context.Context, endpoint string, params url.Values) ([]*providers.Place, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("places api key is required")
	}

	cacheKey := providers.CacheKey("places:v1:"+endpoint, params.Encode())
	var cached []*providers.Place
	if hit, _ := p.cache.Get(ctx, cacheKey, &cached); hit {
		observability.RecordCacheHit(ctx, p.metrics, "places")
		return cached, nil
	}
	observability.RecordCacheMiss(ctx, p.metrics, "places")

	ctx, span := observability.StartSpan(ctx, "places."+endpoint)
	defer span.End()

	var payload *placesResponse
	start := time.Now()
	err := retry.DoWithLog(ctx, p.retryCfg, "places", func() error {
		var err error
		payload, err = p.doRequest(ctx, endpoint, params)
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		observability.LoggerFromContext(ctx).Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Str("endpoint", endpoint).Msg("places request failed, retrying")
	})
	observability.RecordUpstreamMetric(ctx, p.metrics, "places", endpoint, err, time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	places := make([]*providers.Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		places = append(places, r.toPlace())
	}

	if err := p.cache.Set(ctx, cacheKey, places, placesCacheTTL); err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Msg("failed to cache places response")
	}
	return places, nil
}

func (p *GoMapsProvider) doRequest(ctx context.Context, endpoint string, params url.Values) (*placesResponse, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("key", p.apiKey)

	reqURL := fmt.Sprintf("%s/place/%s/json?%s", p.baseURL, endpoint, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to build places request: %w", err))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, retry.Permanent(err)
		}
		return nil, fmt.Errorf("places %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("places %s returned status %d", endpoint, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, retry.Permanent(fmt.Errorf("%w: status %d", providers.ErrPlacesUnauthorized, resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, retry.Permanent(fmt.Errorf("places %s returned status %d", endpoint, resp.StatusCode))
	}

	var payload placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode places response: %w", err))
	}

	switch payload.Status {
	case statusOK, statusZeroResults:
		return &payload, nil
	case statusDenied:
		return nil, retry.Permanent(fmt.Errorf("%w: %s", providers.ErrPlacesUnauthorized, payload.ErrorMessage))
	default:
		if payload.ErrorMessage != "" {
			return nil, retry.Permanent(fmt.Errorf("places %s failed: %s - %s", endpoint, payload.Status, payload.ErrorMessage))
		}
		return nil, retry.Permanent(fmt.Errorf("places %s failed: %s", endpoint, payload.Status))
	}
}

type placesResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Results      []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	Vicinity         string    `json:"vicinity"`
	FormattedAddress string    `json:"formatted_address"`
	Rating           *float64  `json:"rating"`
	Geometry         *geometry `json:"geometry"`
}

type geometry struct {
	Location *latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (r placeResult) toPlace() *providers.Place {
	place := &providers.Place{
		ID:      r.PlaceID,
		Name:    r.Name,
		Address: r.Vicinity,
	}
	if place.Address == "" {
		place.Address = r.FormattedAddress
	}
	if r.Rating != nil {
		place.Rating = entities.NewRating(*r.Rating)
	}
	if r.Geometry != nil && r.Geometry.Location != nil {
		place.Location = &entities.Location{Latitude: r.Geometry.Location.Lat, Longitude: r.Geometry.Location.Lng}
	}
	return place
}
