package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"agency-itinerary-service/internal/domain/entity"
)

const keySeparator = "\x1f"

// Projection is the outcome of projecting one route.
type Projection struct {
	Records       []entity.ItineraryRecord
	LegsTruncated int // legs beyond the record's slots
}

// RecordProjector maps a route onto fixed-width itinerary records.
type RecordProjector struct {
	maxLegs         int
	keyColumns      []string
	journeyColumn   string
	splitRoundTrips bool
}

// NewRecordProjector creates a projector for the given profile
func NewRecordProjector(profile entity.SourceProfile) *RecordProjector {
	return &RecordProjector{
		maxLegs:         profile.Rules.MaxLegs,
		keyColumns:      profile.Layout.KeyColumns,
		journeyColumn:   profile.Layout.JourneyTypeColumn,
		splitRoundTrips: profile.Rules.SplitRoundTrips,
	}
}

// Project turns a route into one record, or two when the route is a simple
// A-B-A round trip and splitting is enabled. Legs past maxLegs are dropped
// and counted.
func (p *RecordProjector) Project(route entity.Route, shared entity.SharedAttributes) Projection {
	legs := route.Legs
	truncated := 0
	if len(legs) > p.maxLegs {
		truncated = len(legs) - p.maxLegs
		legs = legs[:p.maxLegs]
	}

	if p.splitRoundTrips && isRoundTrip(legs) {
		out := shared.With(p.journeyColumn, entity.JourneyOutbound)
		in := shared.With(p.journeyColumn, entity.JourneyInbound)
		return Projection{
			Records: []entity.ItineraryRecord{
				p.record(legs[:1], out),
				p.record(legs[1:], in),
			},
			LegsTruncated: truncated,
		}
	}

	return Projection{
		Records:       []entity.ItineraryRecord{p.record(legs, shared)},
		LegsTruncated: truncated,
	}
}

// isRoundTrip reports whether two legs go out from an airport and back to it.
func isRoundTrip(legs []entity.NormalizedLeg) bool {
	if len(legs) != 2 {
		return false
	}
	origin := legs[0].DepartureAirport
	return origin != "" && origin == legs[1].ArrivalAirport
}

func (p *RecordProjector) record(legs []entity.NormalizedLeg, shared entity.SharedAttributes) entity.ItineraryRecord {
	rec := entity.ItineraryRecord{
		Shared:   shared,
		Legs:     make([]entity.LegSlot, p.maxLegs),
		Airports: make([]string, p.maxLegs+1),
	}
	for i, leg := range legs {
		date := leg.Date
		rec.Legs[i] = entity.LegSlot{
			FlightNumber:     leg.FlightNumber,
			Date:             &date,
			DepartureAirport: leg.DepartureAirport,
		}
		if i == 0 {
			rec.Airports[0] = leg.DepartureAirport
		}
		rec.Airports[i+1] = leg.ArrivalAirport
	}
	rec.NaturalKey = p.naturalKey(rec)
	return rec
}

// naturalKey hashes the key columns and every leg and airport slot.
func (p *RecordProjector) naturalKey(rec entity.ItineraryRecord) string {
	parts := make([]string, 0, len(p.keyColumns)+3*len(rec.Legs)+len(rec.Airports))
	for _, c := range p.keyColumns {
		parts = append(parts, keyValue(rec.Shared.Get(c)))
	}
	for _, l := range rec.Legs {
		date := ""
		if l.Date != nil {
			date = l.Date.UTC().Format(time.RFC3339Nano)
		}
		parts = append(parts, l.FlightNumber, date, l.DepartureAirport)
	}
	parts = append(parts, rec.Airports...)

	h := xxh3.HashString128(strings.Join(parts, keySeparator))
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}

func keyValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}
