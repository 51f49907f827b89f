package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date rejection reasons
var (
	ErrEmptyDate       = errors.New("date is empty")
	ErrUnparseableDate = errors.New("date cannot be parsed")
	ErrDateOutOfRange  = errors.New("date is outside the valid year window")
)

// DefaultDateLayouts are tried in order for string values. Day-first slashes
// win over month-first ones, matching the agency exports.
var DefaultDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
}

// DateNormalizer parses raw date values and enforces an inclusive year window.
// No timezone conversion is applied; zoneless strings are read as UTC.
type DateNormalizer struct {
	yearMin int
	yearMax int
	layouts []string
}

// NewDateNormalizer creates a normalizer accepting years in [yearMin, yearMax].
// A nil layouts slice uses DefaultDateLayouts.
func NewDateNormalizer(yearMin, yearMax int, layouts []string) *DateNormalizer {
	if layouts == nil {
		layouts = DefaultDateLayouts
	}
	return &DateNormalizer{yearMin: yearMin, yearMax: yearMax, layouts: layouts}
}

// Normalize accepts time.Time, *time.Time, string and []byte values.
func (d *DateNormalizer) Normalize(raw interface{}) (time.Time, error) {
	var t time.Time
	switch v := raw.(type) {
	case nil:
		return time.Time{}, ErrEmptyDate
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return time.Time{}, ErrEmptyDate
		}
		t = *v
	case string:
		parsed, err := d.parse(v)
		if err != nil {
			return time.Time{}, err
		}
		t = parsed
	case []byte:
		parsed, err := d.parse(string(v))
		if err != nil {
			return time.Time{}, err
		}
		t = parsed
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrUnparseableDate, raw)
	}

	if t.IsZero() {
		return time.Time{}, ErrEmptyDate
	}
	if y := t.Year(); y < d.yearMin || y > d.yearMax {
		return time.Time{}, ErrDateOutOfRange
	}
	return t, nil
}

func (d *DateNormalizer) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	for _, layout := range d.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, s)
}

// Reason maps a normalizer error to a short, stable label for counters.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyFlightNumber):
		return "empty_flight_number"
	case errors.Is(err, ErrNumericOverflow):
		return "numeric_overflow"
	case errors.Is(err, ErrPlaceholderFlightNumber):
		return "placeholder_flight_number"
	case errors.Is(err, ErrMalformedFlightNumber):
		return "malformed_flight_number"
	case errors.Is(err, ErrEmptyDate):
		return "empty_date"
	case errors.Is(err, ErrUnparseableDate):
		return "unparseable_date"
	case errors.Is(err, ErrDateOutOfRange):
		return "date_out_of_range"
	default:
		return "other"
	}
}
