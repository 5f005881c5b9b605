package repositories

import (
	"context"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
)

// SearchHistoryRepository stores completed hospital searches.
type SearchHistoryRepository interface {
	Save(ctx context.Context, search *entities.SymptomSearch) error
	// Latest returns the most recent search, or nil when there is none.
	Latest(ctx context.Context) (*entities.SymptomSearch, error)
	List(ctx context.Context, limit int) ([]*entities.SymptomSearch, error)
}
