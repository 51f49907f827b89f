package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RowsProcessed   prometheus.Counter
	RowsRejected    prometheus.Counter
	LegsRejected    *prometheus.CounterVec
	RecordsEmitted  prometheus.Counter
	RecordsInserted prometheus.Counter
	BatchDuplicates prometheus.Counter
	RoutesTruncated prometheus.Counter
	LegsTruncated   prometheus.Counter
	ProcessingTime  prometheus.Histogram
	ErrorsCount     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg. A nil reg
// registers on the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RowsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "The total number of booking rows processed",
		}),
		RowsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_rejected_total",
			Help:      "The total number of booking rows that produced no itinerary record",
		}),
		LegsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legs_rejected_total",
			Help:      "The total number of rejected legs by reason",
		}, []string{"reason"}),
		RecordsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_emitted_total",
			Help:      "The total number of itinerary records produced",
		}),
		RecordsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_inserted_total",
			Help:      "The total number of itinerary records written to the sink",
		}),
		BatchDuplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_duplicates_total",
			Help:      "The total number of records dropped as duplicates within a batch",
		}),
		RoutesTruncated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_truncated_total",
			Help:      "The total number of routes longer than the leg slots of a record",
		}),
		LegsTruncated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legs_truncated_total",
			Help:      "The total number of legs dropped by route truncation",
		}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_time_seconds",
			Help:      "Time taken to process and write one batch",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
