package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/geoext/internal/core/domain"
)

// ErrCacheMiss is returned by CacheService.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// EventPublisher announces feature writes to other replicas.
type EventPublisher interface {
	PublishFeatureEvent(ctx context.Context, event *domain.FeatureEvent) error
}

// EventSubscriber delivers feature writes made by other replicas.
type EventSubscriber interface {
	SubscribeFeatureEvents(ctx context.Context, handler func(ctx context.Context, event *domain.FeatureEvent) error) error
}

// CacheService stores encoded features and measures by key. Values for a
// feature id never change while the feature exists, so entries are only
// ever dropped, not updated.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, keys ...string) error
}
