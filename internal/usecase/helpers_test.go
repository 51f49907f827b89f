package usecase

import (
	"time"

	"agency-itinerary-service/internal/domain/entity"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func leg(fn string, at time.Time, seq int) entity.NormalizedLeg {
	return entity.NormalizedLeg{FlightNumber: fn, Date: at, Seq: seq}
}

func testProfile() entity.SourceProfile {
	return entity.SourceProfile{
		Name:        "TEST",
		SourceTable: "bookings",
		TargetTable: "itineraries",
		Rules: entity.SegmentationRules{
			LegColumns:           4,
			MaxLegs:              4,
			GapThreshold:         24 * time.Hour,
			Anchor:               entity.AnchorChain,
			YearMin:              2010,
			YearMax:              2030,
			Overflow:             entity.OverflowDropRow,
			MaxNumericDigits:     10,
			AllowDigitLetterCode: true,
			DedupKey:             entity.DedupFlightDay,
		},
		Layout: entity.ColumnLayout{
			Shared:            []string{"PNRNo", "AirlineName", "TicketNo", "PaxName", "JourneyType"},
			KeyColumns:        []string{"PNRNo", "AirlineName", "TicketNo"},
			JourneyTypeColumn: "JourneyType",
			FlightNumberIn:    "FltNo%d",
			DateIn:            "FltDate%d",
			AirportIn:         "Airport%d",
		},
	}
}

func testShared(pnr string) entity.SharedAttributes {
	return entity.SharedAttributes{
		Columns: []string{"PNRNo", "AirlineName", "TicketNo", "PaxName", "JourneyType"},
		Values:  []interface{}{pnr, "Turkish Airlines", "2351234567890", "DOE/JANE", nil},
	}
}

// rawRow builds a booking row from (flight, date, dep, arr) quadruples.
func rawRow(pos int64, pnr string, legs ...[4]string) entity.BookingRow {
	row := entity.BookingRow{Position: pos, Shared: testShared(pnr)}
	for i, l := range legs {
		var date interface{}
		if l[1] != "" {
			date = l[1]
		}
		row.Legs = append(row.Legs, entity.RawLeg{
			FlightNumber:     l[0],
			Date:             date,
			DepartureAirport: l[2],
			ArrivalAirport:   l[3],
			Seq:              i,
		})
	}
	return row
}
