package usecase

import (
	"sort"
	"time"

	"agency-itinerary-service/internal/domain/entity"
)

// RouteSegmenter orders legs chronologically and splits them into routes
// wherever the gap to the anchor leg exceeds the threshold.
type RouteSegmenter struct {
	gap    time.Duration
	anchor entity.AnchorPolicy
}

// NewRouteSegmenter creates a segmenter. Two legs exactly gap apart stay in
// the same route.
func NewRouteSegmenter(gap time.Duration, anchor entity.AnchorPolicy) *RouteSegmenter {
	return &RouteSegmenter{gap: gap, anchor: anchor}
}

// Segment returns the routes of the given legs in chronological order. Ties
// on date keep column order. The input slice is not modified.
func (s *RouteSegmenter) Segment(legs []entity.NormalizedLeg) []entity.Route {
	if len(legs) == 0 {
		return nil
	}

	sorted := make([]entity.NormalizedLeg, len(legs))
	copy(sorted, legs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var routes []entity.Route
	current := []entity.NormalizedLeg{sorted[0]}
	anchor := sorted[0].Date

	for _, leg := range sorted[1:] {
		if leg.Date.Sub(anchor) <= s.gap {
			current = append(current, leg)
			if s.anchor == entity.AnchorChain {
				anchor = leg.Date
			}
			continue
		}
		routes = append(routes, entity.Route{Legs: current})
		current = []entity.NormalizedLeg{leg}
		anchor = leg.Date
	}

	// the last, still open route
	routes = append(routes, entity.Route{Legs: current})
	return routes
}
