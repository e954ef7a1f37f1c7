package ports

import (
	"context"

	"github.com/samirrijal/geoext/internal/core/domain"
)

// FeatureRepository persists features.
type FeatureRepository interface {
	Insert(ctx context.Context, f *domain.Feature) error
	GetByID(ctx context.Context, id string) (*domain.Feature, error)
	List(ctx context.Context, limit, offset int) ([]domain.Feature, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	// Scan streams every stored feature to fn, stopping at the first error.
	Scan(ctx context.Context, fn func(*domain.Feature) error) error
}
