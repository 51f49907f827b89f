package usecase

import (
	"agency-itinerary-service/internal/domain/entity"
)

// RowResult is what the pipeline produced for one booking row.
type RowResult struct {
	Records         []entity.ItineraryRecord
	Rejected        map[string]int // rejected legs by reason
	RowRejected     bool           // the overflow policy discarded the row
	DuplicateLegs   int
	RoutesTruncated int
	LegsTruncated   int
}

// ItineraryProcessor runs validation, dedup, segmentation and projection over
// a single booking row. It holds no mutable state and is safe for concurrent
// use.
type ItineraryProcessor struct {
	validator *LegValidator
	dedup     *LegDeduplicator
	segmenter *RouteSegmenter
	projector *RecordProjector
}

// NewItineraryProcessor builds the pipeline of a profile
func NewItineraryProcessor(profile entity.SourceProfile) *ItineraryProcessor {
	rules := profile.Rules
	return &ItineraryProcessor{
		validator: NewLegValidator(rules),
		dedup:     NewLegDeduplicator(KeyFuncFor(rules.DedupKey)),
		segmenter: NewRouteSegmenter(rules.GapThreshold, rules.Anchor),
		projector: NewRecordProjector(profile),
	}
}

// Process returns the itinerary records of one booking row. A row without a
// usable leg yields no records.
func (p *ItineraryProcessor) Process(row entity.BookingRow) RowResult {
	validation := p.validator.Validate(row.Legs)
	res := RowResult{
		Rejected:    validation.Rejected,
		RowRejected: validation.RowRejected,
	}
	if len(validation.Legs) == 0 {
		return res
	}

	legs, dups := p.dedup.Dedupe(validation.Legs)
	res.DuplicateLegs = dups

	for _, route := range p.segmenter.Segment(legs) {
		proj := p.projector.Project(route, row.Shared)
		if proj.LegsTruncated > 0 {
			res.RoutesTruncated++
			res.LegsTruncated += proj.LegsTruncated
		}
		res.Records = append(res.Records, proj.Records...)
	}
	return res
}
