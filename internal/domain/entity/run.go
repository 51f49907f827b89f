// internal/domain/entity/run.go
package entity

import (
	"time"
)

// Run status
const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// BatchStats tallies what happened to one batch of booking rows.
type BatchStats struct {
	Batch           int            `bson:"batch"`
	Offset          int64          `bson:"offset"`
	RowsRead        int            `bson:"rowsRead"`
	RowsRejected    int            `bson:"rowsRejected"` // rows that produced no record
	LegsRejected    map[string]int `bson:"legsRejected"` // reason -> count
	RecordsEmitted  int            `bson:"recordsEmitted"`
	BatchDuplicates int            `bson:"batchDuplicates"`
	RecordsInserted int64          `bson:"recordsInserted"`
	RoutesTruncated int            `bson:"routesTruncated"`
	LegsTruncated   int            `bson:"legsTruncated"`
	Duration        time.Duration  `bson:"duration"`
}

// Add folds other into s. Batch, Offset and Duration are left alone.
func (s *BatchStats) Add(other BatchStats) {
	s.RowsRead += other.RowsRead
	s.RowsRejected += other.RowsRejected
	s.RecordsEmitted += other.RecordsEmitted
	s.BatchDuplicates += other.BatchDuplicates
	s.RecordsInserted += other.RecordsInserted
	s.RoutesTruncated += other.RoutesTruncated
	s.LegsTruncated += other.LegsTruncated
	if len(other.LegsRejected) > 0 && s.LegsRejected == nil {
		s.LegsRejected = make(map[string]int, len(other.LegsRejected))
	}
	for reason, n := range other.LegsRejected {
		s.LegsRejected[reason] += n
	}
}

// SegmentationRun is the audit document of one orchestrator run.
type SegmentationRun struct {
	ID          string       `bson:"runId"`
	Profile     string       `bson:"profile"`
	SourceTable string       `bson:"sourceTable"`
	TargetTable string       `bson:"targetTable"`
	Status      string       `bson:"status"`
	StartedAt   time.Time    `bson:"startedAt"`
	FinishedAt  time.Time    `bson:"finishedAt,omitempty"`
	TotalRows   int64        `bson:"totalRows"`
	Totals      BatchStats   `bson:"totals"`
	Batches     []BatchStats `bson:"batches,omitempty"`
	ErrorDetail string       `bson:"errorDetail,omitempty"`
}
