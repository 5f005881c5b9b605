package entities

import (
	"encoding/json"
	"sort"
)

// UnknownValue is used for place fields the upstream API left empty.
const UnknownValue = "Unknown"

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Rating is an optional place rating. The zero value means "not rated" and
// renders as "N/A" in JSON.
type Rating struct {
	Value float64
	Valid bool
}

// NewRating returns a set rating.
func NewRating(v float64) Rating {
	return Rating{Value: v, Valid: true}
}

// String returns the rating for display.
func (r Rating) String() string {
	if !r.Valid {
		return "N/A"
	}
	b, _ := json.Marshal(r.Value)
	return string(b)
}

// MarshalJSON implements json.Marshaler
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte(`"N/A"`), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number, null, or the "N/A" placeholder.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		var s string
		if serr := json.Unmarshal(data, &s); serr != nil {
			return err
		}
		*r = Rating{}
		return nil
	}
	if v == nil {
		*r = Rating{}
		return nil
	}
	*r = NewRating(*v)
	return nil
}

// Hospital is a place returned for a specialty search.
type Hospital struct {
	PlaceID        string   `json:"place_id,omitempty"`
	Name           string   `json:"name"`
	Latitude       *float64 `json:"lat,omitempty"`
	Longitude      *float64 `json:"lng,omitempty"`
	Rating         Rating   `json:"rating"`
	Specialization string   `json:"specialization"`
	Address        string   `json:"address"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`
}

// HasLocation reports whether the place carries coordinates.
func (h *Hospital) HasLocation() bool {
	return h.Latitude != nil && h.Longitude != nil
}

// Location returns the place coordinates; ok is false when they are unknown.
func (h *Hospital) Location() (Location, bool) {
	if !h.HasLocation() {
		return Location{}, false
	}
	return Location{Latitude: *h.Latitude, Longitude: *h.Longitude}, true
}

// RankHospitals sorts by rating, highest first, with unrated places after all
// rated ones, and truncates to limit. Ties keep their input order.
func RankHospitals(hospitals []*Hospital, limit int) []*Hospital {
	sort.SliceStable(hospitals, func(i, j int) bool {
		a, b := hospitals[i].Rating, hospitals[j].Rating
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Value > b.Value
	})
	if limit > 0 && len(hospitals) > limit {
		hospitals = hospitals[:limit]
	}
	return hospitals
}
