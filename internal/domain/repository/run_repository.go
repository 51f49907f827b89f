package repository

import (
	"context"

	"agency-itinerary-service/internal/domain/entity"
)

// RunRepository keeps the audit trail of segmentation runs
type RunRepository interface {
	Start(ctx context.Context, run *entity.SegmentationRun) error
	RecordBatch(ctx context.Context, runID string, stats entity.BatchStats) error
	Finish(ctx context.Context, run *entity.SegmentationRun) error
}
