package entities

import (
	"time"

	"github.com/google/uuid"
)

// SearchKind distinguishes coordinate searches from city searches.
type SearchKind string

const (
	SearchKindNearby SearchKind = "nearby"
	SearchKindCity   SearchKind = "city"
)

// SymptomSearch is a persisted record of one hospital lookup.
type SymptomSearch struct {
	ID          string     `json:"id" db:"id"`
	Kind        SearchKind `json:"kind" db:"kind"`
	Symptoms    []string   `json:"symptoms" db:"-"`
	Specialties []string   `json:"specialties" db:"-"`
	City        string     `json:"city,omitempty" db:"city"`
	Latitude    *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64   `json:"longitude,omitempty" db:"longitude"`
	ResultCount int        `json:"result_count" db:"result_count"`
	MapURL      string     `json:"map_url,omitempty" db:"map_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// NewSymptomSearch creates a search record with a fresh id.
func NewSymptomSearch(kind SearchKind, symptoms []string) *SymptomSearch {
	return &SymptomSearch{
		ID:        uuid.NewString(),
		Kind:      kind,
		Symptoms:  symptoms,
		CreatedAt: time.Now().UTC(),
	}
}
