package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DefaultBatchSize is the number of lines handed to one ImportBatch activity.
const DefaultBatchSize = 100

// ImportLine is one named WKT geometry to store.
type ImportLine struct {
	Name string `json:"name"`
	WKT  string `json:"wkt"`
}

// ImportInput is the input for the import workflow.
type ImportInput struct {
	Source    string
	Lines     []ImportLine
	BatchSize int
	// Atomic removes every imported feature again when any line is
	// rejected or a batch fails.
	Atomic bool
}

// Rejection records a line that could not be stored. Line is 1-based.
type Rejection struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportResult summarises a finished import.
type ImportResult struct {
	Imported   int         `json:"imported"`
	IDs        []string    `json:"ids"`
	Rejected   []Rejection `json:"rejected"`
	RolledBack bool        `json:"rolled_back"`
}

// ImportWorkflow stores input.Lines in batches. Rejected lines are reported,
// not fatal, unless input.Atomic is set, in which case the import is undone
// (saga compensation) and the result carries RolledBack.
func ImportWorkflow(ctx workflow.Context, input ImportInput) (ImportResult, error) {
	logger := workflow.GetLogger(ctx)

	size := input.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	logger.Info("Starting import workflow", "source", input.Source, "lines", len(input.Lines), "batchSize", size)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var result ImportResult
	for start := 0; start < len(input.Lines); start += size {
		end := min(start+size, len(input.Lines))

		var batch BatchResult
		err := workflow.ExecuteActivity(ctx, "ImportBatch", ImportBatchInput{
			Offset: start,
			Lines:  input.Lines[start:end],
		}).Get(ctx, &batch)
		if err != nil {
			if input.Atomic {
				logger.Warn("batch failed, compensating", "offset", start, "error", err)
				rollback(ctx, &result)
			}
			return result, err
		}

		result.IDs = append(result.IDs, batch.IDs...)
		result.Rejected = append(result.Rejected, batch.Rejected...)
		result.Imported = len(result.IDs)
	}

	if input.Atomic && len(result.Rejected) > 0 {
		logger.Warn("lines rejected, compensating", "rejected", len(result.Rejected))
		rollback(ctx, &result)
	}

	logger.Info("Import finished", "imported", result.Imported, "rejected", len(result.Rejected), "rolledBack", result.RolledBack)
	return result, nil
}

// rollback deletes every feature recorded in result.
func rollback(ctx workflow.Context, result *ImportResult) {
	if len(result.IDs) == 0 {
		result.RolledBack = true
		return
	}
	if err := workflow.ExecuteActivity(ctx, "DeleteFeatures", result.IDs).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Error("rollback failed", "features", len(result.IDs), "error", err)
		return
	}
	result.IDs = nil
	result.Imported = 0
	result.RolledBack = true
}
