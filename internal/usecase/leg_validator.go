package usecase

import (
	"errors"
	"strings"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/pkg/normalize"
)

// LegValidation is the outcome of validating the raw legs of one booking row.
type LegValidation struct {
	Legs        []entity.NormalizedLeg // accepted legs, in column order
	Rejected    map[string]int         // rejection reason -> count
	RowRejected bool                   // an overflow leg discarded the whole row
}

// LegValidator combines flight number and date normalization into a per-leg
// accept/reject decision.
type LegValidator struct {
	flights  *normalize.FlightNumberNormalizer
	dates    *normalize.DateNormalizer
	overflow entity.OverflowPolicy
}

// NewLegValidator creates a validator from the segmentation rules
func NewLegValidator(rules entity.SegmentationRules) *LegValidator {
	return &LegValidator{
		flights:  normalize.NewFlightNumberNormalizer(rules.MaxNumericDigits, rules.AllowDigitLetterCode),
		dates:    normalize.NewDateNormalizer(rules.YearMin, rules.YearMax, nil),
		overflow: rules.Overflow,
	}
}

// Validate normalizes every raw leg. Blank leg groups (no flight number and no
// date) are unused columns and are skipped without being counted.
func (v *LegValidator) Validate(raw []entity.RawLeg) LegValidation {
	out := LegValidation{Legs: make([]entity.NormalizedLeg, 0, len(raw))}

	for _, leg := range raw {
		if isBlankLeg(leg) {
			continue
		}

		flightNumber, err := v.flights.Normalize(leg.FlightNumber)
		if err != nil {
			if errors.Is(err, normalize.ErrNumericOverflow) && v.overflow == entity.OverflowDropRow {
				out.reject(err)
				out.Legs = nil
				out.RowRejected = true
				return out
			}
			out.reject(err)
			continue
		}

		date, err := v.dates.Normalize(leg.Date)
		if err != nil {
			out.reject(err)
			continue
		}

		out.Legs = append(out.Legs, entity.NormalizedLeg{
			FlightNumber:     flightNumber,
			Date:             date,
			DepartureAirport: leg.DepartureAirport,
			ArrivalAirport:   leg.ArrivalAirport,
			Seq:              leg.Seq,
		})
	}
	return out
}

func (v *LegValidation) reject(err error) {
	if v.Rejected == nil {
		v.Rejected = make(map[string]int)
	}
	v.Rejected[normalize.Reason(err)]++
}

func isBlankLeg(leg entity.RawLeg) bool {
	if strings.TrimSpace(leg.FlightNumber) != "" {
		return false
	}
	switch d := leg.Date.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(d) == ""
	}
	return false
}
