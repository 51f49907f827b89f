package usecase

import (
	"time"

	"agency-itinerary-service/internal/domain/entity"
)

// LegKeyFunc derives the identity of a leg within one booking row.
type LegKeyFunc func(leg entity.NormalizedLeg) string

// FlightDayKey identifies a leg by flight number and calendar day.
func FlightDayKey(leg entity.NormalizedLeg) string {
	return leg.FlightNumber + "\x1f" + leg.Date.Format("2006-01-02")
}

// FlightInstantKey identifies a leg by flight number and exact timestamp.
func FlightInstantKey(leg entity.NormalizedLeg) string {
	return leg.FlightNumber + "\x1f" + leg.Date.UTC().Format(time.RFC3339Nano)
}

// InstantKey identifies a leg by its exact timestamp only.
func InstantKey(leg entity.NormalizedLeg) string {
	return leg.Date.UTC().Format(time.RFC3339Nano)
}

// KeyFuncFor returns the key function of a dedup policy.
func KeyFuncFor(policy entity.DedupKeyPolicy) LegKeyFunc {
	switch policy {
	case entity.DedupFlightInstant:
		return FlightInstantKey
	case entity.DedupInstant:
		return InstantKey
	default:
		return FlightDayKey
	}
}

// LegDeduplicator drops repeated legs of a booking row, keeping the first
// occurrence in column order.
type LegDeduplicator struct {
	key LegKeyFunc
}

// NewLegDeduplicator creates a deduplicator. A nil key uses FlightDayKey.
func NewLegDeduplicator(key LegKeyFunc) *LegDeduplicator {
	if key == nil {
		key = FlightDayKey
	}
	return &LegDeduplicator{key: key}
}

// Dedupe returns the unique legs and how many were dropped. The input must be
// in column order; it is not modified.
func (d *LegDeduplicator) Dedupe(legs []entity.NormalizedLeg) ([]entity.NormalizedLeg, int) {
	if len(legs) < 2 {
		return legs, 0
	}
	seen := make(map[string]struct{}, len(legs))
	out := make([]entity.NormalizedLeg, 0, len(legs))
	for _, leg := range legs {
		k := d.key(leg)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, leg)
	}
	return out, len(legs) - len(out)
}
