// internal/domain/entity/booking.go
package entity

// RawLeg is one positional leg column group read from a booking row.
// Airport pairing follows the source layout: leg i departs from Airport_i and
// arrives at Airport_{i+1}.
type RawLeg struct {
	FlightNumber     string
	Date             interface{} // string, time.Time or nil depending on the driver
	DepartureAirport string
	ArrivalAirport   string
	Seq              int // 0-based column group index
}

// SharedAttributes are the booking-level pass-through columns. Columns is
// shared by every row of a source; Values is aligned to it.
type SharedAttributes struct {
	Columns []string
	Values  []interface{}
}

// Get returns the value of a shared column, or nil when the column is unknown.
func (s SharedAttributes) Get(column string) interface{} {
	for i, c := range s.Columns {
		if c == column && i < len(s.Values) {
			return s.Values[i]
		}
	}
	return nil
}

// With returns a copy of s with column set to value. The receiver is not
// modified; unknown columns are ignored.
func (s SharedAttributes) With(column string, value interface{}) SharedAttributes {
	values := make([]interface{}, len(s.Values))
	copy(values, s.Values)
	for i, c := range s.Columns {
		if c == column && i < len(values) {
			values[i] = value
		}
	}
	return SharedAttributes{Columns: s.Columns, Values: values}
}

// BookingRow holds every candidate leg for one traveller's reservation.
type BookingRow struct {
	Position int64 // offset of the row within the source read
	Shared   SharedAttributes
	Legs     []RawLeg
}
