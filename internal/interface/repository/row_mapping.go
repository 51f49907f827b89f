package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agency-itinerary-service/internal/domain/entity"
)

// RowMapper turns a source row keyed by column name into a BookingRow. The
// leg column names are expanded once per profile.
type RowMapper struct {
	shared   []string
	flights  []string
	dates    []string
	airports []string
}

// NewRowMapper creates a mapper for the input layout of a profile
func NewRowMapper(profile entity.SourceProfile) *RowMapper {
	n := profile.Rules.LegColumns
	return &RowMapper{
		shared:   profile.Layout.Shared,
		flights:  profile.Layout.FlightNumberColumns(n),
		dates:    profile.Layout.DateColumns(n),
		airports: profile.Layout.AirportColumns(n),
	}
}

// Columns returns every source column the mapper reads
func (m *RowMapper) Columns() []string {
	cols := make([]string, 0, len(m.shared)+len(m.flights)+len(m.dates)+len(m.airports))
	cols = append(cols, m.shared...)
	cols = append(cols, m.flights...)
	cols = append(cols, m.dates...)
	return append(cols, m.airports...)
}

// Map builds the booking row at position from a column -> value map.
// Missing columns read as NULL.
func (m *RowMapper) Map(position int64, values map[string]interface{}) entity.BookingRow {
	row := entity.BookingRow{
		Position: position,
		Shared: entity.SharedAttributes{
			Columns: m.shared,
			Values:  make([]interface{}, len(m.shared)),
		},
		Legs: make([]entity.RawLeg, len(m.flights)),
	}
	for i, c := range m.shared {
		row.Shared.Values[i] = plainValue(values[c])
	}
	for i := range m.flights {
		row.Legs[i] = entity.RawLeg{
			FlightNumber:     stringValue(values[m.flights[i]]),
			Date:             plainValue(values[m.dates[i]]),
			DepartureAirport: airportValue(values[m.airports[i]]),
			ArrivalAirport:   airportValue(values[m.airports[i+1]]),
			Seq:              i,
		}
	}
	return row
}

// plainValue unwraps driver byte slices into strings
func plainValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func airportValue(v interface{}) string {
	return strings.ToUpper(strings.TrimSpace(stringValue(v)))
}

// stringValue renders a scalar column value. Integral floats lose their
// fraction so 1234.0 reads as "1234".
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
