package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/geoext/internal/codec/wkt"
	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/pkg/metrics"
)

// FeatureStore is the part of the feature service the activities need.
type FeatureStore interface {
	Create(ctx context.Context, name string, g domain.Geometry) (*domain.Feature, error)
	Delete(ctx context.Context, id string) error
}

// Activities holds the activity implementations for the import workflow.
type Activities struct {
	Features FeatureStore
}

// ImportBatchInput is one slice of an import. Offset is the index of the
// first line within the whole import.
type ImportBatchInput struct {
	Offset int
	Lines  []ImportLine
}

// BatchResult lists what one ImportBatch stored and refused.
type BatchResult struct {
	IDs      []string
	Rejected []Rejection
}

// invalidLine matches errors caused by the line itself; retrying never helps.
var invalidLine = []error{
	domain.ErrInvalidFeature,
	domain.ErrTooFewPoints,
	domain.ErrRingNotClosed,
	domain.ErrSRIDMismatch,
	domain.ErrDimensionMismatch,
	domain.ErrUnknownKind,
}

func isInvalidLine(err error) bool {
	var syntaxErr *wkt.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	for _, target := range invalidLine {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ImportBatch decodes and stores each line. Invalid lines become
// rejections; any other failure undoes the batch so a retry starts clean.
func (a *Activities) ImportBatch(ctx context.Context, in ImportBatchInput) (BatchResult, error) {
	logger := activity.GetLogger(ctx)

	var out BatchResult
	for i, line := range in.Lines {
		n := in.Offset + i + 1

		g, err := wkt.Decode(line.WKT)
		if err == nil {
			var f *domain.Feature
			if f, err = a.Features.Create(ctx, line.Name, g); err == nil {
				out.IDs = append(out.IDs, f.ID)
				metrics.FeaturesImported.WithLabelValues("imported").Inc()
				continue
			}
		}

		if !isInvalidLine(err) {
			if derr := a.deleteAll(ctx, out.IDs); derr != nil {
				logger.Error("undo partial batch", "offset", in.Offset, "error", derr)
			}
			metrics.FeaturesImported.WithLabelValues("failed").Add(float64(len(in.Lines)))
			return BatchResult{}, fmt.Errorf("line %d: %w", n, err)
		}
		out.Rejected = append(out.Rejected, Rejection{Line: n, Name: line.Name, Reason: err.Error()})
		metrics.FeaturesImported.WithLabelValues("rejected").Inc()
	}

	logger.Info("Imported batch", "offset", in.Offset, "imported", len(out.IDs), "rejected", len(out.Rejected))
	return out, nil
}

// DeleteFeatures removes features created by an import (saga compensation).
// Features that are already gone are skipped.
func (a *Activities) DeleteFeatures(ctx context.Context, ids []string) error {
	if err := a.deleteAll(ctx, ids); err != nil {
		return err
	}
	activity.GetLogger(ctx).Info("Import rolled back", "features", len(ids))
	return nil
}

func (a *Activities) deleteAll(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := a.Features.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
