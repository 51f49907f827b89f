// internal/domain/entity/flight_record.go
package entity

import (
	"time"
)

// NormalizedLeg is a leg that passed flight number and date validation.
type NormalizedLeg struct {
	FlightNumber     string
	Date             time.Time
	DepartureAirport string
	ArrivalAirport   string
	Seq              int // column group the leg was read from
}

// Route is a chronologically ordered, non-empty run of legs that belong to the
// same journey.
type Route struct {
	Legs []NormalizedLeg
}

// Start returns the date of the first leg.
func (r Route) Start() time.Time {
	if len(r.Legs) == 0 {
		return time.Time{}
	}
	return r.Legs[0].Date
}

// Len returns the number of legs in the route.
func (r Route) Len() int { return len(r.Legs) }

// LegSlot is one fixed leg position of an output record. An empty FlightNumber
// means the slot is unused.
type LegSlot struct {
	FlightNumber     string
	Date             *time.Time
	DepartureAirport string
}

// Empty reports whether the slot carries no leg.
func (s LegSlot) Empty() bool { return s.FlightNumber == "" && s.Date == nil }

// Journey types set on round-trip split records.
const (
	JourneyOutbound = "OUTBOUND"
	JourneyInbound  = "INBOUND"
)

// ItineraryRecord is the fixed-width output of one route. Legs has exactly
// MaxLegs entries and Airports exactly MaxLegs+1; unused entries are empty.
type ItineraryRecord struct {
	Shared     SharedAttributes
	Legs       []LegSlot
	Airports   []string
	NaturalKey string
}

// LegCount returns how many leg slots are in use.
func (r ItineraryRecord) LegCount() int {
	n := 0
	for _, l := range r.Legs {
		if !l.Empty() {
			n++
		}
	}
	return n
}
