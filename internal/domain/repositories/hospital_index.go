package repositories

import (
	"context"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
)

// HospitalQuery filters indexed hospitals.
type HospitalQuery struct {
	Query          string
	Specialization string
	Latitude       *float64
	Longitude      *float64
	RadiusKm       float64
	Limit          int
}

// HospitalIndex keeps a searchable copy of every hospital seen in a search.
type HospitalIndex interface {
	Index(ctx context.Context, hospitals []*entities.Hospital) error
	Search(ctx context.Context, query HospitalQuery) ([]*entities.Hospital, error)
}
