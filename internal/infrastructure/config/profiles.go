package config

import (
	"time"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/pkg/normalize"
)

// Built-in source profile names
const (
	ProfileBluestar = "BLUESTAR"
	ProfileTripjack = "TRIPJACK"
	ProfileTBO3     = "TBO3"
	ProfileTA       = "TA"
)

// BuiltinProfiles returns the vendor feeds known to the service
func BuiltinProfiles() []entity.SourceProfile {
	return []entity.SourceProfile{
		bluestarProfile(),
		tripjackProfile(),
		tbo3Profile(),
		taProfile(),
	}
}

func bluestarProfile() entity.SourceProfile {
	return entity.SourceProfile{
		Name:        ProfileBluestar,
		SourceTable: "BLUESTAR",
		TargetTable: "BLUESTAR_TARGET",
		Rules: entity.SegmentationRules{
			LegColumns:           4,
			MaxLegs:              4,
			GapThreshold:         24 * time.Hour,
			Anchor:               entity.AnchorFixedStart,
			YearMin:              2010,
			YearMax:              2030,
			Overflow:             entity.OverflowDropRow,
			MaxNumericDigits:     normalize.DefaultMaxNumericDigits,
			AllowDigitLetterCode: true,
			DedupKey:             entity.DedupFlightDay,
		},
		Layout: entity.ColumnLayout{
			Shared:      []string{"BillDate", "PaxName", "PNRNo", "AirlineName", "TicketNo", "SupplierName", "PaxType"},
			SharedTypes: map[string]string{"BillDate": "TIMESTAMP"},
			KeyColumns:  []string{"PNRNo", "AirlineName", "TicketNo"},

			FlightNumberIn: "FltNo%d",
			DateIn:         "FltDate%d",
			AirportIn:      "Airport%d",
		},
	}
}

func tripjackProfile() entity.SourceProfile {
	return entity.SourceProfile{
		Name:        ProfileTripjack,
		SourceTable: "TRIPJACK",
		TargetTable: "TRIPJACK_TARGET",
		Rules: entity.SegmentationRules{
			LegColumns:           5,
			MaxLegs:              5,
			GapThreshold:         36 * time.Hour,
			Anchor:               entity.AnchorChain,
			YearMin:              2010,
			YearMax:              2030,
			Overflow:             entity.OverflowDropLeg,
			MaxNumericDigits:     normalize.DefaultMaxNumericDigits,
			AllowDigitLetterCode: true,
			DedupKey:             entity.DedupFlightDay,
			SplitRoundTrips:      true,
		},
		Layout: entity.ColumnLayout{
			Shared:            []string{"BookingId", "PaxName", "JourneyBucket", "BookingRef_PNR", "Airline", "ETicketNo"},
			KeyColumns:        []string{"BookingRef_PNR", "Airline", "ETicketNo"},
			JourneyTypeColumn: "JourneyBucket",

			FlightNumberIn: "FlightNumber%d",
			DateIn:         "DepartureDateLocal%d",
			AirportIn:      "Airport%d",
			DateOut:        "FlightDate%d",
		},
	}
}

func tbo3Profile() entity.SourceProfile {
	return entity.SourceProfile{
		Name:        ProfileTBO3,
		SourceTable: "TBO3_2021",
		TargetTable: "TBO3_2021_TARGET",
		Rules: entity.SegmentationRules{
			LegColumns:           7,
			MaxLegs:              7,
			GapThreshold:         36 * time.Hour,
			Anchor:               entity.AnchorChain,
			YearMin:              1990,
			YearMax:              2100,
			Overflow:             entity.OverflowDropLeg,
			MaxNumericDigits:     normalize.DefaultMaxNumericDigits,
			AllowDigitLetterCode: true,
			DedupKey:             entity.DedupInstant,
		},
		Layout: entity.ColumnLayout{
			Shared:     []string{"PaxName", "BookingRef", "ETicketNo", "ClientCode", "Airline", "JourneyType"},
			KeyColumns: []string{"BookingRef", "Airline", "ETicketNo"},

			FlightNumberIn: "FlightNumber%d",
			DateIn:         "DepartureDateLocal%d",
			AirportIn:      "Airport%d",
		},
	}
}

func taProfile() entity.SourceProfile {
	return entity.SourceProfile{
		Name:        ProfileTA,
		SourceTable: "TA_MASTER",
		TargetTable: "TA_MASTER_TARGET",
		Rules: entity.SegmentationRules{
			LegColumns:           6,
			MaxLegs:              6,
			GapThreshold:         36 * time.Hour,
			Anchor:               entity.AnchorChain,
			YearMin:              1990,
			YearMax:              2027,
			Overflow:             entity.OverflowDropLeg,
			MaxNumericDigits:     normalize.DefaultMaxNumericDigits,
			AllowDigitLetterCode: true,
			DedupKey:             entity.DedupInstant,
		},
		Layout: entity.ColumnLayout{
			Shared:     []string{"Pax Name", "PNR CRS", "PNR Airline", "Airlines", "Ticket Number"},
			KeyColumns: []string{"PNR CRS", "Airlines", "Ticket Number"},

			FlightNumberIn: "S%dFltNo",
			DateIn:         "S%dDate",
			AirportIn:      "Airport %d",
			AirportOut:     "Airport%d",
		},
	}
}
