package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/repositories"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/specialistfinder/backend/pkg/errors"
)

const (
	searchesTable       = "symptom_searches"
	defaultListLimit    = 20
	maxListLimit        = 200
	searchHistorySchema = `
CREATE TABLE IF NOT EXISTS symptom_searches (
	id           UUID PRIMARY KEY,
	kind         TEXT NOT NULL,
	symptoms     TEXT[] NOT NULL DEFAULT '{}',
	specialties  TEXT[] NOT NULL DEFAULT '{}',
	city         TEXT,
	latitude     DOUBLE PRECISION,
	longitude    DOUBLE PRECISION,
	result_count INTEGER NOT NULL DEFAULT 0,
	map_url      TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_symptom_searches_created_at ON symptom_searches (created_at DESC);`
)

var searchColumns = []interface{}{
	"id", "kind", "symptoms", "specialties", "city",
	"latitude", "longitude", "result_count", "map_url", "created_at",
}

// SearchHistoryAdapter implements SearchHistoryRepository on PostgreSQL
type SearchHistoryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSearchHistoryAdapter creates a new search history adapter
func NewSearchHistoryAdapter(client *postgres.Client) *SearchHistoryAdapter {
	return &SearchHistoryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.SearchHistoryRepository = (*SearchHistoryAdapter)(nil)

// InitSchema creates the table when it does not exist yet.
func (a *SearchHistoryAdapter) InitSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, searchHistorySchema); err != nil {
		return apperrors.NewInternalError("failed to create symptom_searches table", err)
	}
	return nil
}

// Save inserts a search record
func (a *SearchHistoryAdapter) Save(ctx context.Context, search *entities.SymptomSearch) error {
	if search.CreatedAt.IsZero() {
		search.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":           search.ID,
		"kind":         string(search.Kind),
		"symptoms":     pq.Array(nonNil(search.Symptoms)),
		"specialties":  pq.Array(nonNil(search.Specialties)),
		"city":         nullString(search.City),
		"latitude":     nullFloat(search.Latitude),
		"longitude":    nullFloat(search.Longitude),
		"result_count": search.ResultCount,
		"map_url":      nullString(search.MapURL),
		"created_at":   search.CreatedAt,
	}

	query, args, err := a.db.Insert(searchesTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save search", err)
	}
	return nil
}

// Latest returns the most recent search, or nil when none exist
func (a *SearchHistoryAdapter) Latest(ctx context.Context) (*entities.SymptomSearch, error) {
	searches, err := a.list(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(searches) == 0 {
		return nil, nil
	}
	return searches[0], nil
}

// List returns searches newest first
func (a *SearchHistoryAdapter) List(ctx context.Context, limit int) ([]*entities.SymptomSearch, error) {
	return a.list(ctx, clampLimit(limit))
}

func (a *SearchHistoryAdapter) list(ctx context.Context, limit int) ([]*entities.SymptomSearch, error) {
	query, args, err := a.db.Select(searchColumns...).
		From(searchesTable).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list searches", err)
	}
	defer rows.Close()

	searches := make([]*entities.SymptomSearch, 0, limit)
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate searches", err)
	}
	return searches, nil
}

func scanSearch(rows *sql.Rows) (*entities.SymptomSearch, error) {
	s := &entities.SymptomSearch{}
	var kind string
	var city, mapURL sql.NullString
	var lat, lng sql.NullFloat64

	err := rows.Scan(
		&s.ID,
		&kind,
		pq.Array(&s.Symptoms),
		pq.Array(&s.Specialties),
		&city,
		&lat,
		&lng,
		&s.ResultCount,
		&mapURL,
		&s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("search not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan search", err)
	}

	s.Kind = entities.SearchKind(kind)
	s.City = city.String
	s.MapURL = mapURL.String
	if lat.Valid {
		s.Latitude = &lat.Float64
	}
	if lng.Valid {
		s.Longitude = &lng.Float64
	}
	return s, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
