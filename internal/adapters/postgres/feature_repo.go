package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geoext/internal/codec/wire"
	"github.com/samirrijal/geoext/internal/core/domain"
)

// FeatureRepo implements ports.FeatureRepository with pgx. Geometries are
// stored in the binary wire format next to their bounding box columns.
type FeatureRepo struct {
	db *DB
}

// NewFeatureRepo creates a new FeatureRepo.
func NewFeatureRepo(db *DB) *FeatureRepo {
	return &FeatureRepo{db: db}
}

const featureColumns = `id::text, name, kind, geom, created_at`

// Insert stores a new feature.
func (r *FeatureRepo) Insert(ctx context.Context, f *domain.Feature) error {
	b := f.Bounds()
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO features (id, name, kind, srid, geom, min_x, min_y, max_x, max_y, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, f.ID, f.Name, int16(f.Geometry.Kind()), f.Geometry.SpatialRef(), wire.Marshal(f.Geometry),
		b.Low.X, b.Low.Y, b.High.X, b.High.Y, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feature %s: %w", f.ID, err)
	}
	return nil
}

// GetByID returns a feature by UUID.
func (r *FeatureRepo) GetByID(ctx context.Context, id string) (*domain.Feature, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+featureColumns+` FROM features WHERE id = $1`, id)
	f, err := scanFeature(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// List returns a page of features, newest first.
func (r *FeatureRepo) List(ctx context.Context, limit, offset int) ([]domain.Feature, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+featureColumns+`
		FROM features
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// Delete removes a feature.
func (r *FeatureRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM features WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete feature %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the number of stored features.
func (r *FeatureRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM features`).Scan(&n)
	return n, err
}

// Scan streams every feature to fn in insertion order.
func (r *FeatureRepo) Scan(ctx context.Context, fn func(*domain.Feature) error) error {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+featureColumns+` FROM features ORDER BY created_at, id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanFeature(row pgx.Row) (*domain.Feature, error) {
	var (
		f    domain.Feature
		kind int16
		geom []byte
	)
	if err := row.Scan(&f.ID, &f.Name, &kind, &geom, &f.CreatedAt); err != nil {
		return nil, err
	}
	g, err := wire.Unmarshal(domain.Kind(kind), geom)
	if err != nil {
		return nil, fmt.Errorf("decode feature %s: %w", f.ID, err)
	}
	f.Geometry = g
	return &f, nil
}
