package storage

import (
	"context"

	"reorgScope/internal/model"
)

// Storage defines a sink for analysis output.
type Storage interface {
	PutResults(ctx context.Context, results []model.AttributionResult) error
	PutSummaries(ctx context.Context, summaries []model.ValidatorSummary) error
}
