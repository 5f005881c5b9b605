package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
)

// HospitalHandler serves the symptom-based hospital searches.
type HospitalHandler struct {
	finder *services.HospitalFinderService
}

// NewHospitalHandler creates a new hospital handler
func NewHospitalHandler(finder *services.HospitalFinderService) *HospitalHandler {
	return &HospitalHandler{finder: finder}
}

type nearbyRequest struct {
	Latitude  *float64    `json:"latitude" validate:"required,latitude"`
	Longitude *float64    `json:"longitude" validate:"required,longitude"`
	Symptoms  symptomList `json:"symptoms"`
}

type cityRequest struct {
	City     string      `json:"city"`
	Symptoms symptomList `json:"symptoms"`
}

type classifyRequest struct {
	Symptoms symptomList `json:"symptoms"`
}

// FindNearby handles POST /map
func (h *HospitalHandler) FindNearby(w http.ResponseWriter, r *http.Request) {
	var req nearbyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid location data")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid location data")
		return
	}

	result, err := h.finder.FindNearby(r.Context(), services.NearbyRequest{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Symptoms:  req.Symptoms,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Map generated successfully",
		"places":      nonNilHospitals(result.Hospitals),
		"map_url":     result.MapURL,
		"specialties": nonNilStrings(result.Classification.Specialties),
		"search_id":   result.SearchID,
	})
}

// FindInCity handles POST /city_hospitals
func (h *HospitalHandler) FindInCity(w http.ResponseWriter, r *http.Request) {
	var req cityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.finder.FindInCity(r.Context(), services.CityRequest{City: req.City, Symptoms: req.Symptoms})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	body := map[string]interface{}{
		"places":      nonNilHospitals(result.Hospitals),
		"specialties": nonNilStrings(result.Classification.Specialties),
		"search_id":   result.SearchID,
	}
	if result.MapURL != "" {
		body["map_url"] = result.MapURL
	}
	respondWithJSON(w, http.StatusOK, body)
}

// Classify handles POST /classify
func (h *HospitalHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	classification, err := h.finder.Classify(r.Context(), req.Symptoms)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if classification.Symptoms == nil {
		classification.Symptoms = []string{}
	}
	respondWithJSON(w, http.StatusOK, classification)
}

// LastSearch handles GET /api/searches/last
func (h *HospitalHandler) LastSearch(w http.ResponseWriter, r *http.Request) {
	search, err := h.finder.LastSearch(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, search)
}

// ListSearches handles GET /api/searches?limit=N
func (h *HospitalHandler) ListSearches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	searches, err := h.finder.ListSearches(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"searches": searches,
		"count":    len(searches),
	})
}

// SearchIndexed handles GET /api/hospitals/indexed
func (h *HospitalHandler) SearchIndexed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repositories.HospitalQuery{
		Query:          q.Get("q"),
		Specialization: q.Get("specialization"),
		Limit:          10,
	}

	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil || !(entities.Location{Latitude: lat, Longitude: lng}).Valid() {
			respondWithError(w, http.StatusBadRequest, "Invalid location data")
			return
		}
		query.Latitude, query.Longitude = &lat, &lng
	}
	if v := q.Get("radius_km"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || radius <= 0 {
			respondWithError(w, http.StatusBadRequest, "radius_km must be a positive number")
			return
		}
		query.RadiusKm = radius
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > 100 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		query.Limit = limit
	}

	hospitals, err := h.finder.SearchIndexed(r.Context(), query)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"places": nonNilHospitals(hospitals),
		"count":  len(hospitals),
	})
}

func nonNilHospitals(hospitals []*entities.Hospital) []*entities.Hospital {
	if hospitals == nil {
		return []*entities.Hospital{}
	}
	return hospitals
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
