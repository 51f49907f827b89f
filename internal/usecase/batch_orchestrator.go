package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"
	"agency-itinerary-service/pkg/logger"
	"agency-itinerary-service/pkg/metrics"
)

// DefaultBatchSize is the number of booking rows read per batch
const DefaultBatchSize = 100000

// BatchOptions tunes the orchestrator
type BatchOptions struct {
	BatchSize int
	Workers   int
}

// BatchOrchestrator pages booking rows out of the source, runs the itinerary
// pipeline over each batch and writes the records to the sink.
type BatchOrchestrator struct {
	profile   entity.SourceProfile
	source    repository.BookingRowRepository
	sink      repository.ItineraryRepository
	runs      repository.RunRepository
	processor *ItineraryProcessor
	metrics   *metrics.Metrics
	logger    logger.Logger
	opts      BatchOptions
}

// NewBatchOrchestrator creates a new batch orchestrator. runs and m may be nil.
func NewBatchOrchestrator(
	profile entity.SourceProfile,
	source repository.BookingRowRepository,
	sink repository.ItineraryRepository,
	runs repository.RunRepository,
	m *metrics.Metrics,
	log logger.Logger,
	opts BatchOptions,
) *BatchOrchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &BatchOrchestrator{
		profile:   profile,
		source:    source,
		sink:      sink,
		runs:      runs,
		processor: NewItineraryProcessor(profile),
		metrics:   m,
		logger:    log.With("profile", profile.Name),
		opts:      opts,
	}
}

// Run processes the whole source table. Cancelling ctx stops the run between
// batches; the batch in flight is still written.
func (o *BatchOrchestrator) Run(ctx context.Context) (*entity.SegmentationRun, error) {
	run := &entity.SegmentationRun{
		ID:          uuid.NewString(),
		Profile:     o.profile.Name,
		SourceTable: o.profile.SourceTable,
		TargetTable: o.profile.TargetTable,
		Status:      entity.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
	log := o.logger.With("runID", run.ID)

	if err := o.sink.EnsureSchema(ctx); err != nil {
		o.countError("ensure_schema")
		return run, fmt.Errorf("failed to ensure target schema: %w", err)
	}

	total, err := o.source.Count(ctx)
	if err != nil {
		o.countError("count_rows")
		return run, fmt.Errorf("failed to count source rows: %w", err)
	}
	run.TotalRows = total

	if o.runs != nil {
		if err := o.runs.Start(ctx, run); err != nil {
			// The audit trail is best effort
			log.Error("Failed to record run start", "error", err)
			o.countError("run_log")
		}
	}

	log.Info("Starting segmentation run",
		"source", o.profile.SourceTable,
		"target", o.profile.TargetTable,
		"totalRows", total,
		"batchSize", o.opts.BatchSize,
		"workers", o.opts.Workers)

	runErr := o.runBatches(ctx, run, log)

	run.FinishedAt = time.Now().UTC()
	run.Status = entity.RunStatusCompleted
	if runErr != nil {
		run.Status = entity.RunStatusFailed
		run.ErrorDetail = runErr.Error()
	}

	if o.runs != nil {
		// ctx may already be cancelled, the final state is still worth keeping
		finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		if err := o.runs.Finish(finishCtx, run); err != nil {
			log.Error("Failed to record run result", "error", err)
			o.countError("run_log")
		}
		cancel()
	}

	log.Info("Segmentation run finished",
		"status", run.Status,
		"rowsRead", run.Totals.RowsRead,
		"rowsRejected", run.Totals.RowsRejected,
		"recordsEmitted", run.Totals.RecordsEmitted,
		"recordsInserted", run.Totals.RecordsInserted,
		"batchDuplicates", run.Totals.BatchDuplicates,
		"routesTruncated", run.Totals.RoutesTruncated,
		"legsTruncated", run.Totals.LegsTruncated,
		"elapsed", run.FinishedAt.Sub(run.StartedAt).String())

	return run, runErr
}

func (o *BatchOrchestrator) runBatches(ctx context.Context, run *entity.SegmentationRun, log logger.Logger) error {
	batch := 0
	for offset := int64(0); offset < run.TotalRows; offset += int64(o.opts.BatchSize) {
		if err := ctx.Err(); err != nil {
			log.Warn("Run cancelled between batches", "offset", offset)
			return err
		}
		batch++
		started := time.Now()

		rows, err := o.source.FetchBatch(ctx, offset, o.opts.BatchSize)
		if err != nil {
			o.countError("fetch_batch")
			return fmt.Errorf("failed to fetch batch at offset %d: %w", offset, err)
		}
		if len(rows) == 0 {
			break
		}

		records, stats, err := o.ProcessBatch(ctx, rows)
		if err != nil {
			return fmt.Errorf("failed to process batch at offset %d: %w", offset, err)
		}
		stats.Batch = batch
		stats.Offset = offset

		if len(records) > 0 {
			inserted, err := o.sink.InsertIgnore(ctx, records)
			if err != nil {
				o.countError("insert")
				return fmt.Errorf("failed to write batch at offset %d: %w", offset, err)
			}
			stats.RecordsInserted = inserted
		}
		stats.Duration = time.Since(started)

		run.Totals.Add(stats)
		run.Batches = append(run.Batches, stats)
		o.observe(stats)

		if o.runs != nil {
			if err := o.runs.RecordBatch(ctx, run.ID, stats); err != nil {
				log.Error("Failed to record batch", "batch", batch, "error", err)
				o.countError("run_log")
			}
		}

		log.Info("Batch processed",
			"batch", batch,
			"offset", offset,
			"rows", stats.RowsRead,
			"records", stats.RecordsEmitted,
			"inserted", stats.RecordsInserted,
			"duplicates", stats.BatchDuplicates,
			"elapsed", stats.Duration.String())

		if stats.RoutesTruncated > 0 {
			log.Warn("Routes truncated to record width",
				"batch", batch,
				"routes", stats.RoutesTruncated,
				"legsDropped", stats.LegsTruncated,
				"maxLegs", o.profile.Rules.MaxLegs)
		}

		if len(rows) < o.opts.BatchSize {
			break
		}
	}
	return nil
}

// ProcessBatch runs the pipeline over rows on a bounded worker pool and
// merges the results in row order, dropping records whose natural key was
// already seen in the batch.
func (o *BatchOrchestrator) ProcessBatch(ctx context.Context, rows []entity.BookingRow) ([]entity.ItineraryRecord, entity.BatchStats, error) {
	results := make([]RowResult, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = o.processor.Process(rows[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, entity.BatchStats{}, err
	}

	return mergeResults(results)
}

func mergeResults(results []RowResult) ([]entity.ItineraryRecord, entity.BatchStats, error) {
	stats := entity.BatchStats{RowsRead: len(results)}
	seen := make(map[string]struct{}, len(results))
	records := make([]entity.ItineraryRecord, 0, len(results))

	for _, res := range results {
		if len(res.Records) == 0 {
			stats.RowsRejected++
		}
		for reason, n := range res.Rejected {
			if stats.LegsRejected == nil {
				stats.LegsRejected = make(map[string]int)
			}
			stats.LegsRejected[reason] += n
		}
		stats.RoutesTruncated += res.RoutesTruncated
		stats.LegsTruncated += res.LegsTruncated

		for _, rec := range res.Records {
			stats.RecordsEmitted++
			if rec.NaturalKey == "" {
				return nil, stats, errors.New("record without natural key")
			}
			if _, dup := seen[rec.NaturalKey]; dup {
				stats.BatchDuplicates++
				continue
			}
			seen[rec.NaturalKey] = struct{}{}
			records = append(records, rec)
		}
	}
	return records, stats, nil
}

func (o *BatchOrchestrator) observe(stats entity.BatchStats) {
	if o.metrics == nil {
		return
	}
	o.metrics.RowsProcessed.Add(float64(stats.RowsRead))
	o.metrics.RowsRejected.Add(float64(stats.RowsRejected))
	for reason, n := range stats.LegsRejected {
		o.metrics.LegsRejected.WithLabelValues(reason).Add(float64(n))
	}
	o.metrics.RecordsEmitted.Add(float64(stats.RecordsEmitted))
	o.metrics.RecordsInserted.Add(float64(stats.RecordsInserted))
	o.metrics.BatchDuplicates.Add(float64(stats.BatchDuplicates))
	o.metrics.RoutesTruncated.Add(float64(stats.RoutesTruncated))
	o.metrics.LegsTruncated.Add(float64(stats.LegsTruncated))
	o.metrics.ProcessingTime.Observe(stats.Duration.Seconds())
}

func (o *BatchOrchestrator) countError(operation string) {
	if o.metrics != nil {
		o.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	}
}
