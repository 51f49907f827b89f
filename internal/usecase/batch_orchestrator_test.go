package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"
	"agency-itinerary-service/pkg/logger"
	"agency-itinerary-service/pkg/metrics"
)

type memorySource struct {
	rows    []entity.BookingRow
	fetches int
}

func (s *memorySource) Count(ctx context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *memorySource) FetchBatch(ctx context.Context, offset int64, limit int) ([]entity.BookingRow, error) {
	s.fetches++
	if offset >= int64(len(s.rows)) {
		return nil, nil
	}
	end := offset + int64(limit)
	if end > int64(len(s.rows)) {
		end = int64(len(s.rows))
	}
	return s.rows[offset:end], nil
}

// memorySink enforces natural key uniqueness like the SQL sinks.
type memorySink struct {
	mu      sync.Mutex
	records map[string]entity.ItineraryRecord
	failOn  int
	calls   int
}

func newMemorySink() *memorySink {
	return &memorySink{records: make(map[string]entity.ItineraryRecord)}
}

func (s *memorySink) EnsureSchema(ctx context.Context) error { return nil }

func (s *memorySink) InsertIgnore(ctx context.Context, records []entity.ItineraryRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failOn > 0 && s.calls == s.failOn {
		return 0, errors.New("sink unavailable")
	}
	var inserted int64
	for _, r := range records {
		if _, ok := s.records[r.NaturalKey]; ok {
			continue
		}
		s.records[r.NaturalKey] = r
		inserted++
	}
	return inserted, nil
}

type memoryRuns struct {
	started  []*entity.SegmentationRun
	batches  []entity.BatchStats
	finished []entity.SegmentationRun
}

func (r *memoryRuns) Start(ctx context.Context, run *entity.SegmentationRun) error {
	r.started = append(r.started, run)
	return nil
}

func (r *memoryRuns) RecordBatch(ctx context.Context, runID string, stats entity.BatchStats) error {
	r.batches = append(r.batches, stats)
	return nil
}

func (r *memoryRuns) Finish(ctx context.Context, run *entity.SegmentationRun) error {
	r.finished = append(r.finished, *run)
	return nil
}

func sampleRows() []entity.BookingRow {
	return []entity.BookingRow{
		rawRow(0, "AAA111",
			[4]string{"TK0006", "2024-01-10", "IST", "FRA"},
			[4]string{"TK0006", "2024-01-10", "IST", "FRA"}),
		rawRow(1, "BBB222",
			[4]string{"TK6", "2024-01-10", "", ""},
			[4]string{"TK7", "2024-01-11", "", ""},
			[4]string{"TK8", "2024-01-20", "", ""}),
		rawRow(2, "CCC333",
			[4]string{"000000000000", "2024-01-10", "", ""}),
		// same booking as row 0, exported twice by the agency
		rawRow(3, "AAA111",
			[4]string{"TK6", "2024-01-10", "IST", "FRA"}),
		rawRow(4, "DDD444",
			[4]string{"LH400", "2024-02-01", "FRA", "JFK"},
			[4]string{"G8", "2024-02-01", "", ""}),
	}
}

func newTestOrchestrator(src *memorySource, sink *memorySink, runs *memoryRuns, m *metrics.Metrics, batchSize int) *BatchOrchestrator {
	var rr repository.RunRepository
	if runs != nil {
		rr = runs
	}
	return NewBatchOrchestrator(testProfile(), src, sink, rr, m, logger.NewNopLogger(), BatchOptions{BatchSize: batchSize, Workers: 3})
}

func TestBatchOrchestrator_ProcessBatch(t *testing.T) {
	o := newTestOrchestrator(&memorySource{}, newMemorySink(), nil, nil, 10)

	records, stats, err := o.ProcessBatch(context.Background(), sampleRows())
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	// row0: 1, row1: 2, row2: 0, row3: duplicate of row0, row4: 1
	if stats.RecordsEmitted != 5 {
		t.Errorf("RecordsEmitted = %d, want 5", stats.RecordsEmitted)
	}
	if stats.BatchDuplicates != 1 {
		t.Errorf("BatchDuplicates = %d, want 1", stats.BatchDuplicates)
	}
	if len(records) != 4 {
		t.Fatalf("got %d unique records, want 4", len(records))
	}
	if stats.RowsRead != 5 || stats.RowsRejected != 1 {
		t.Errorf("rows = %d read / %d rejected, want 5 / 1", stats.RowsRead, stats.RowsRejected)
	}
	if stats.LegsRejected["numeric_overflow"] != 1 || stats.LegsRejected["malformed_flight_number"] != 1 {
		t.Errorf("LegsRejected = %v", stats.LegsRejected)
	}

	// merge keeps row order
	if records[0].Shared.Get("PNRNo") != "AAA111" || records[3].Shared.Get("PNRNo") != "DDD444" {
		t.Errorf("records out of row order")
	}
}

func TestBatchOrchestrator_RunIsIdempotent(t *testing.T) {
	src := &memorySource{rows: sampleRows()}
	sink := newMemorySink()
	runs := &memoryRuns{}
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)

	o := newTestOrchestrator(src, sink, runs, m, 2)

	first, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Status != entity.RunStatusCompleted {
		t.Fatalf("status = %s", first.Status)
	}
	if first.Totals.RecordsInserted != 4 || len(sink.records) != 4 {
		t.Fatalf("inserted %d, sink holds %d; want 4", first.Totals.RecordsInserted, len(sink.records))
	}
	if len(first.Batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(first.Batches))
	}

	second, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Totals.RecordsInserted != 0 || len(sink.records) != 4 {
		t.Fatalf("second run inserted %d, sink holds %d", second.Totals.RecordsInserted, len(sink.records))
	}
	if first.ID == second.ID {
		t.Fatal("runs share an id")
	}

	if len(runs.started) != 2 || len(runs.finished) != 2 || len(runs.batches) != 6 {
		t.Fatalf("run log: %d started, %d finished, %d batches", len(runs.started), len(runs.finished), len(runs.batches))
	}

	if got := testutil.ToFloat64(m.RowsProcessed); got != 10 {
		t.Errorf("rows_processed_total = %v, want 10", got)
	}
	if got := testutil.ToFloat64(m.RecordsInserted); got != 4 {
		t.Errorf("records_inserted_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.LegsRejected.WithLabelValues("numeric_overflow")); got != 2 {
		t.Errorf("legs_rejected_total{numeric_overflow} = %v, want 2", got)
	}
}

func TestBatchOrchestrator_RunFailsOnSinkError(t *testing.T) {
	src := &memorySource{rows: sampleRows()}
	sink := newMemorySink()
	sink.failOn = 2
	runs := &memoryRuns{}
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)

	run, err := newTestOrchestrator(src, sink, runs, m, 2).Run(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if run.Status != entity.RunStatusFailed || run.ErrorDetail == "" {
		t.Fatalf("status = %s, detail = %q", run.Status, run.ErrorDetail)
	}
	if len(runs.finished) != 1 || runs.finished[0].Status != entity.RunStatusFailed {
		t.Fatal("failure not recorded in the run log")
	}
	if got := testutil.ToFloat64(m.ErrorsCount.WithLabelValues("insert")); got != 1 {
		t.Errorf("errors_total{insert} = %v, want 1", got)
	}
}

func TestBatchOrchestrator_StopsWhenCancelled(t *testing.T) {
	src := &memorySource{rows: sampleRows()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := newTestOrchestrator(src, newMemorySink(), nil, nil, 2).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if src.fetches != 0 {
		t.Fatalf("fetched %d batches after cancel", src.fetches)
	}
	if run.Status != entity.RunStatusFailed {
		t.Fatalf("status = %s", run.Status)
	}
}

func TestBatchOrchestrator_LargeBatchIsDeterministic(t *testing.T) {
	var rows []entity.BookingRow
	for i := 0; i < 500; i++ {
		rows = append(rows, rawRow(int64(i), fmt.Sprintf("PNR%03d", i%50),
			[4]string{"TK6", "2024-01-10", "IST", "FRA"},
			[4]string{"TK7", "2024-01-25", "FRA", "IST"}))
	}
	o := newTestOrchestrator(&memorySource{}, newMemorySink(), nil, nil, 1000)

	a, _, err := o.ProcessBatch(context.Background(), rows)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := o.ProcessBatch(context.Background(), rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 100 || len(b) != 100 {
		t.Fatalf("got %d and %d records, want 100", len(a), len(b))
	}
	for i := range a {
		if a[i].NaturalKey != b[i].NaturalKey {
			t.Fatalf("record %d differs between runs", i)
		}
	}
}
