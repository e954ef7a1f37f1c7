package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/geoext/internal/codec/wire"
	"github.com/samirrijal/geoext/internal/codec/wkt"
	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/geometry"
	"github.com/samirrijal/geoext/internal/core/index"
	"github.com/samirrijal/geoext/internal/core/ports"
	"github.com/samirrijal/geoext/internal/pkg/geospatial"
	"github.com/samirrijal/geoext/internal/pkg/logging"
	"github.com/samirrijal/geoext/internal/pkg/metrics"
	"github.com/samirrijal/geoext/internal/pkg/telemetry"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// FeatureServiceConfig sizes the indexes and cache lifetimes.
type FeatureServiceConfig struct {
	RTreeFanout int
	BTreeDegree int
	FeatureTTL  int // seconds
	MeasuresTTL int // seconds
}

// DefaultFeatureServiceConfig matches the configuration defaults.
func DefaultFeatureServiceConfig() FeatureServiceConfig {
	return FeatureServiceConfig{RTreeFanout: 16, BTreeDegree: 32, FeatureTTL: 600, MeasuresTTL: 3600}
}

// FeatureService stores features and answers spatial queries over them.
// Bounding boxes of every feature live in an in-memory R-tree and point
// features additionally in an ordered B-tree; both are rebuilt from the
// repository by Warm and kept current by Create, Delete and ApplyEvent.
type FeatureService struct {
	repo      ports.FeatureRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
	cfg       FeatureServiceConfig

	boxes  *index.RTree
	points *index.PointIndex
	warmed atomic.Bool
}

// NewFeatureService creates a new FeatureService. cache and publisher may be nil.
func NewFeatureService(
	repo ports.FeatureRepository,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	cfg FeatureServiceConfig,
) *FeatureService {
	return &FeatureService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		cfg:       cfg,
		boxes:     index.NewRTree(cfg.RTreeFanout),
		points:    index.NewPointIndex(cfg.BTreeDegree),
	}
}

// Create validates and stores a new feature, then announces it.
func (s *FeatureService) Create(ctx context.Context, name string, g domain.Geometry) (*domain.Feature, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "FeatureService.Create")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidFeature)
	}
	if err := domain.Validate(g); err != nil {
		return nil, err
	}

	f := &domain.Feature{
		ID:        uuid.NewString(),
		Name:      name,
		Geometry:  g,
		CreatedAt: time.Now().UTC(),
	}
	span.SetAttributes(attribute.String("feature.id", f.ID), attribute.String("feature.kind", g.Kind().String()))

	if err := s.repo.Insert(ctx, f); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("insert feature: %w", err)
	}
	s.indexFeature(f)

	s.publish(ctx, &domain.FeatureEvent{
		Type:      domain.FeatureCreated,
		FeatureID: f.ID,
		Name:      f.Name,
		Kind:      g.Kind().String(),
		WKT:       wkt.Encode(g),
		At:        f.CreatedAt,
	})
	return f, nil
}

// Get returns a single feature.
func (s *FeatureService) Get(ctx context.Context, id string) (*domain.Feature, error) {
	cacheKey := "feature:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var rec featureRecord
			if err := json.Unmarshal(data, &rec); err == nil {
				if f, err := rec.feature(); err == nil {
					metrics.CacheHits.WithLabelValues("feature").Inc()
					return f, nil
				}
			}
		}
		metrics.CacheMisses.WithLabelValues("feature").Inc()
	}

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(newFeatureRecord(f)); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cfg.FeatureTTL)
		}
	}
	return f, nil
}

// List returns a page of features, newest first.
func (s *FeatureService) List(ctx context.Context, limit, offset int) ([]domain.Feature, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Count returns the number of stored features.
func (s *FeatureService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Delete removes a feature and announces the removal.
func (s *FeatureService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.Tracer().Start(ctx, "FeatureService.Delete",
		trace.WithAttributes(attribute.String("feature.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delete failed")
		}
		return err
	}
	s.forget(ctx, id)

	s.publish(ctx, &domain.FeatureEvent{
		Type:      domain.FeatureDeleted,
		FeatureID: id,
		At:        time.Now().UTC(),
	})
	return nil
}

// Measures returns the scalar properties of a stored feature.
func (s *FeatureService) Measures(ctx context.Context, id string) (*domain.Measures, error) {
	cacheKey := "measures:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var m domain.Measures
			if err := json.Unmarshal(data, &m); err == nil {
				metrics.CacheHits.WithLabelValues("measures").Inc()
				return &m, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("measures").Inc()
	}

	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record("measure")
	m := measure(f.Geometry)

	if s.cache != nil {
		if data, err := json.Marshal(m); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cfg.MeasuresTTL)
		}
	}
	return &m, nil
}

// Search returns features whose bounding box satisfies strategy against
// query, ordered by id.
func (s *FeatureService) Search(ctx context.Context, query geometry.Box, strategy index.Strategy, limit int) ([]domain.Feature, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "FeatureService.Search",
		trace.WithAttributes(attribute.String("strategy", strategy.String())))
	defer span.End()

	ids, err := s.boxes.Search(query, strategy)
	if err != nil {
		return nil, err
	}
	metrics.IndexSearchCandidates.Observe(float64(len(ids)))
	sort.Strings(ids)

	return s.load(ctx, ids, clampLimit(limit), nil)
}

// Containing returns the polygon features that contain pt. The R-tree
// narrows the candidates to boxes holding pt and each survivor is confirmed
// with the crossings test.
func (s *FeatureService) Containing(ctx context.Context, pt domain.Point, limit int) ([]domain.Feature, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "FeatureService.Containing")
	defer span.End()

	ids, err := s.boxes.Search(geometry.PointBox(pt.Coord), index.StrategyContains)
	if err != nil {
		return nil, err
	}
	metrics.IndexSearchCandidates.Observe(float64(len(ids)))
	sort.Strings(ids)

	return s.load(ctx, ids, clampLimit(limit), func(f *domain.Feature) bool {
		poly, ok := f.Geometry.(domain.Polygon)
		if !ok || poly.SRID != pt.SRID {
			return false
		}
		record("contains")
		inside, err := poly.Contains(pt)
		return err == nil && inside
	})
}

// Near returns the point features within radius of center, ordered by id.
// WGS84 radii are in meters.
func (s *FeatureService) Near(ctx context.Context, center domain.Point, radius float64, limit int) ([]domain.Feature, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative radius", domain.ErrInvalidFeature)
	}

	geodesic := center.SRID == geospatial.SRIDWGS84
	var query geometry.Box
	if geodesic {
		query = geospatial.BoundingBox(center.Coord, radius)
	} else {
		query = geometry.Box{
			Low:  geometry.Coord{X: center.X - radius, Y: center.Y - radius},
			High: geometry.Coord{X: center.X + radius, Y: center.Y + radius},
		}
	}

	ids, err := s.boxes.Search(query, index.StrategyOverlap)
	if err != nil {
		return nil, err
	}
	metrics.IndexSearchCandidates.Observe(float64(len(ids)))
	sort.Strings(ids)

	return s.load(ctx, ids, clampLimit(limit), func(f *domain.Feature) bool {
		p, ok := f.Geometry.(domain.Point)
		if !ok || p.SRID != center.SRID {
			return false
		}
		if geodesic {
			return geospatial.Haversine(center.Coord, p.Coord) <= radius
		}
		return geometry.Distance(center.Coord, p.Coord) <= radius
	})
}

// PointsBetween returns point features with lo <= p <= hi in B-tree order.
func (s *FeatureService) PointsBetween(ctx context.Context, lo, hi domain.Point, limit int) ([]domain.Feature, error) {
	entries, err := s.points.Range(lo, hi, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return s.load(ctx, ids, len(ids), nil)
}

// Warm loads every stored feature into the in-memory indexes and returns
// how many were indexed.
func (s *FeatureService) Warm(ctx context.Context) (int, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "FeatureService.Warm")
	defer span.End()

	n := 0
	err := s.repo.Scan(ctx, func(f *domain.Feature) error {
		s.indexFeature(f)
		n++
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return n, fmt.Errorf("warm index: %w", err)
	}
	span.SetAttributes(attribute.Int("features", n))
	logging.FromContext(ctx).Info("spatial index warmed", "features", n)
	s.warmed.Store(true)
	return n, nil
}

// Warmed reports whether Warm has completed once. Until then the indexes
// may be missing stored features.
func (s *FeatureService) Warmed() bool { return s.warmed.Load() }

// ApplyEvent mirrors a feature event from another instance into the local
// indexes and cache. Applying the same event twice has no further effect.
func (s *FeatureService) ApplyEvent(ctx context.Context, ev *domain.FeatureEvent) error {
	switch ev.Type {
	case domain.FeatureCreated:
		g, err := wkt.Decode(ev.WKT)
		if err != nil {
			return fmt.Errorf("event %s: %w", ev.FeatureID, err)
		}
		s.indexFeature(&domain.Feature{ID: ev.FeatureID, Name: ev.Name, Geometry: g, CreatedAt: ev.At})
	case domain.FeatureDeleted:
		s.forget(ctx, ev.FeatureID)
	default:
		return fmt.Errorf("unknown feature event type %q", ev.Type)
	}
	return nil
}

// IndexSize reports the number of features in the R-tree and B-tree.
func (s *FeatureService) IndexSize() (boxes, points int) {
	return s.boxes.Len(), s.points.Len()
}

func (s *FeatureService) indexFeature(f *domain.Feature) {
	s.boxes.Insert(f.ID, f.Bounds())
	if p, ok := f.Geometry.(domain.Point); ok {
		s.points.Put(f.ID, p)
	}
	s.updateIndexGauges()
}

func (s *FeatureService) forget(ctx context.Context, id string) {
	s.boxes.Delete(id)
	s.points.Remove(id)
	s.updateIndexGauges()
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "feature:"+id, "measures:"+id)
	}
}

func (s *FeatureService) updateIndexGauges() {
	metrics.IndexedFeatures.WithLabelValues("rtree").Set(float64(s.boxes.Len()))
	metrics.IndexedFeatures.WithLabelValues("btree").Set(float64(s.points.Len()))
}

func (s *FeatureService) publish(ctx context.Context, ev *domain.FeatureEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFeatureEvent(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish feature event failed",
			"type", string(ev.Type), "feature_id", ev.FeatureID, "error", err)
	}
}

// load fetches ids in order, skipping features that vanished since they
// were indexed and those rejected by keep, until limit features are found.
func (s *FeatureService) load(ctx context.Context, ids []string, limit int, keep func(*domain.Feature) bool) ([]domain.Feature, error) {
	out := make([]domain.Feature, 0, min(len(ids), limit))
	for _, id := range ids {
		if len(out) >= limit {
			break
		}
		f, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if keep != nil && !keep(f) {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// featureRecord is the cached form of a feature. The geometry travels as
// wire hex because Geometry is an interface.
type featureRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Hex       string    `json:"hex"`
	CreatedAt time.Time `json:"created_at"`
}

func newFeatureRecord(f *domain.Feature) featureRecord {
	return featureRecord{
		ID:        f.ID,
		Name:      f.Name,
		Kind:      f.Geometry.Kind().String(),
		Hex:       wire.EncodeHex(f.Geometry),
		CreatedAt: f.CreatedAt,
	}
}

func (r featureRecord) feature() (*domain.Feature, error) {
	kind, err := domain.ParseKind(r.Kind)
	if err != nil {
		return nil, err
	}
	g, err := wire.DecodeHex(kind, r.Hex)
	if err != nil {
		return nil, err
	}
	return &domain.Feature{ID: r.ID, Name: r.Name, Geometry: g, CreatedAt: r.CreatedAt}, nil
}
