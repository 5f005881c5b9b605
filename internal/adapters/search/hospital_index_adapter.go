package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
	tsclient "github.com/zatekoja/specialistfinder/backend/internal/infrastructure/clients/typesense"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// HospitalIndexAdapter implements HospitalIndex using Typesense
type HospitalIndexAdapter struct {
	client *tsclient.Client
	now    func() time.Time
}

var _ repositories.HospitalIndex = (*HospitalIndexAdapter)(nil)

// NewHospitalIndexAdapter creates a new Typesense hospital index
func NewHospitalIndexAdapter(client *tsclient.Client) *HospitalIndexAdapter {
	return &HospitalIndexAdapter{client: client, now: time.Now}
}

// InitSchema ensures the collection exists
func (a *HospitalIndexAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts every hospital. The same place found for two specialties is
// stored once per specialty.
func (a *HospitalIndexAdapter) Index(ctx context.Context, hospitals []*entities.Hospital) error {
	indexedAt := a.now().Unix()
	for _, h := range hospitals {
		doc := buildHospitalDocument(h, indexedAt)
		if _, err := a.client.Client().Collection(tsclient.HospitalsCollection).Documents().Upsert(ctx, doc); err != nil {
			return fmt.Errorf("failed to index hospital %s: %w", h.Name, err)
		}
	}
	return nil
}

// Search queries indexed hospitals
func (a *HospitalIndexAdapter) Search(ctx context.Context, query repositories.HospitalQuery) ([]*entities.Hospital, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	q := strings.TrimSpace(query.Query)
	if q == "" {
		q = "*"
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name,specialization,address"),
		PerPage: pointer.Int(limit),
	}
	if filter := buildFilter(query); filter != "" {
		params.FilterBy = pointer.String(filter)
	}
	if query.Latitude != nil && query.Longitude != nil {
		params.SortBy = pointer.String(fmt.Sprintf("location(%f, %f):asc", *query.Latitude, *query.Longitude))
	}

	result, err := a.client.Client().Collection(tsclient.HospitalsCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search hospitals: %w", err)
	}

	hospitals := []*entities.Hospital{}
	if result.Hits == nil {
		return hospitals, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		hospitals = append(hospitals, hospitalFromDocument(*hit.Document))
	}
	return hospitals, nil
}

func buildFilter(query repositories.HospitalQuery) string {
	var filters []string
	if s := strings.TrimSpace(query.Specialization); s != "" {
		filters = append(filters, fmt.Sprintf("specialization:=`%s`", strings.ReplaceAll(s, "`", "")))
	}
	if query.Latitude != nil && query.Longitude != nil && query.RadiusKm > 0 {
		filters = append(filters, fmt.Sprintf("location:(%f, %f, %g km)", *query.Latitude, *query.Longitude, query.RadiusKm))
	}
	return strings.Join(filters, " && ")
}

func documentID(h *entities.Hospital) string {
	base := h.PlaceID
	if base == "" {
		base = providers.CacheKey("place", strings.ToLower(h.Name), strings.ToLower(h.Address))
	}
	return providers.CacheKey("hospital", base, h.Specialization)[len("hospital:"):]
}

func buildHospitalDocument(h *entities.Hospital, indexedAt int64) map[string]interface{} {
	doc := map[string]interface{}{
		"id":             documentID(h),
		"name":           h.Name,
		"specialization": h.Specialization,
		"address":        h.Address,
		"indexed_at":     indexedAt,
	}
	if h.PlaceID != "" {
		doc["place_id"] = h.PlaceID
	}
	if h.Rating.Valid {
		doc["rating"] = h.Rating.Value
	}
	if loc, ok := h.Location(); ok {
		doc["location"] = []float64{loc.Latitude, loc.Longitude}
	}
	return doc
}

func hospitalFromDocument(doc map[string]interface{}) *entities.Hospital {
	h := &entities.Hospital{
		Name:           stringField(doc, "name"),
		Specialization: stringField(doc, "specialization"),
		Address:        stringField(doc, "address"),
		PlaceID:        stringField(doc, "place_id"),
	}
	if v, ok := doc["rating"].(float64); ok {
		h.Rating = entities.NewRating(v)
	}
	if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
		lat, latOK := loc[0].(float64)
		lng, lngOK := loc[1].(float64)
		if latOK && lngOK {
			h.Latitude, h.Longitude = &lat, &lng
		}
	}
	return h
}

func stringField(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
