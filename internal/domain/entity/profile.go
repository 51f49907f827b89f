// internal/domain/entity/profile.go
package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AnchorPolicy selects the date a candidate leg is compared against when
// deciding whether it extends the current route.
type AnchorPolicy int

const (
	// AnchorChain measures the gap from the previous leg in the route.
	AnchorChain AnchorPolicy = iota
	// AnchorFixedStart measures the gap from the first leg in the route.
	AnchorFixedStart
)

func (p AnchorPolicy) String() string {
	switch p {
	case AnchorChain:
		return "chain"
	case AnchorFixedStart:
		return "fixed-start"
	default:
		return fmt.Sprintf("anchor(%d)", int(p))
	}
}

// ParseAnchorPolicy accepts "chain" or "fixed-start" (also "fixed", "start").
func ParseAnchorPolicy(s string) (AnchorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chain", "previous":
		return AnchorChain, nil
	case "fixed-start", "fixed_start", "fixed", "start":
		return AnchorFixedStart, nil
	}
	return 0, fmt.Errorf("unknown anchor policy %q", s)
}

// OverflowPolicy decides what an over-long numeric-only flight number does to
// its row.
type OverflowPolicy int

const (
	// OverflowDropLeg drops only the offending leg.
	OverflowDropLeg OverflowPolicy = iota
	// OverflowDropRow discards every leg of the row.
	OverflowDropRow
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowDropLeg:
		return "drop-leg"
	case OverflowDropRow:
		return "drop-row"
	default:
		return fmt.Sprintf("overflow(%d)", int(p))
	}
}

// ParseOverflowPolicy accepts "drop-leg" (lenient) or "drop-row" (strict).
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop-leg", "drop_leg", "leg", "lenient":
		return OverflowDropLeg, nil
	case "drop-row", "drop_row", "row", "strict":
		return OverflowDropRow, nil
	}
	return 0, fmt.Errorf("unknown overflow policy %q", s)
}

// DedupKeyPolicy selects which leg fields identify a repeated leg.
type DedupKeyPolicy int

const (
	// DedupFlightDay keys on flight number and calendar day.
	DedupFlightDay DedupKeyPolicy = iota
	// DedupFlightInstant keys on flight number and the exact timestamp.
	DedupFlightInstant
	// DedupInstant keys on the exact timestamp only.
	DedupInstant
)

func (p DedupKeyPolicy) String() string {
	switch p {
	case DedupFlightDay:
		return "flight-day"
	case DedupFlightInstant:
		return "flight-instant"
	case DedupInstant:
		return "instant"
	default:
		return fmt.Sprintf("dedup(%d)", int(p))
	}
}

// ParseDedupKeyPolicy accepts "flight-day", "flight-instant" or "instant".
func ParseDedupKeyPolicy(s string) (DedupKeyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flight-day", "flight_day", "day":
		return DedupFlightDay, nil
	case "flight-instant", "flight_instant", "exact":
		return DedupFlightInstant, nil
	case "instant", "timestamp":
		return DedupInstant, nil
	}
	return 0, fmt.Errorf("unknown dedup key policy %q", s)
}

// SegmentationRules is the immutable rule set of the segmentation engine.
type SegmentationRules struct {
	LegColumns           int // N repeated leg column groups in the source
	MaxLegs              int // leg slots per output record
	GapThreshold         time.Duration
	Anchor               AnchorPolicy
	YearMin              int
	YearMax              int
	Overflow             OverflowPolicy
	MaxNumericDigits     int
	AllowDigitLetterCode bool // airline codes like 6E or G8 may lose leading zeros too
	DedupKey             DedupKeyPolicy
	SplitRoundTrips      bool
}

// Validate checks the rules for internal consistency.
func (r SegmentationRules) Validate() error {
	var errs []error
	if r.LegColumns < 1 {
		errs = append(errs, fmt.Errorf("leg columns must be positive, got %d", r.LegColumns))
	}
	if r.MaxLegs < 1 {
		errs = append(errs, fmt.Errorf("max legs must be positive, got %d", r.MaxLegs))
	}
	if r.GapThreshold <= 0 {
		errs = append(errs, fmt.Errorf("gap threshold must be positive, got %s", r.GapThreshold))
	}
	if r.YearMin > r.YearMax {
		errs = append(errs, fmt.Errorf("valid year window is empty: %d > %d", r.YearMin, r.YearMax))
	}
	if r.MaxNumericDigits < 1 {
		errs = append(errs, fmt.Errorf("max numeric digits must be positive, got %d", r.MaxNumericDigits))
	}
	return errors.Join(errs...)
}

// ColumnLayout names the source and target columns of a profile. Patterns
// contain a single %d replaced by the 1-based slot number.
type ColumnLayout struct {
	Shared            []string          // pass-through columns, in output order
	SharedTypes       map[string]string // SQL type per shared column, TEXT when absent
	KeyColumns        []string          // shared columns that take part in the natural key
	JourneyTypeColumn string            // set on round-trip split records when non-empty

	FlightNumberIn string
	DateIn         string
	AirportIn      string

	FlightNumberOut     string
	DateOut             string
	AirportOut          string
	DepartureAirportOut string // per-leg departure airport, DefaultDepartureAirportOut when empty
}

// DefaultDepartureAirportOut names the per-leg departure airport columns
const DefaultDepartureAirportOut = "DepAirport%d"

// expand builds the n column names of a pattern.
func expand(pattern string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf(pattern, i+1)
	}
	return out
}

// FlightNumberColumns returns the n source flight number columns.
func (l ColumnLayout) FlightNumberColumns(n int) []string { return expand(l.FlightNumberIn, n) }

// DateColumns returns the n source date columns.
func (l ColumnLayout) DateColumns(n int) []string { return expand(l.DateIn, n) }

// AirportColumns returns the n+1 source airport columns.
func (l ColumnLayout) AirportColumns(n int) []string { return expand(l.AirportIn, n+1) }

// OutputFlightNumberColumns returns the maxLegs target flight number columns.
func (l ColumnLayout) OutputFlightNumberColumns(maxLegs int) []string {
	return expand(orDefault(l.FlightNumberOut, l.FlightNumberIn), maxLegs)
}

// OutputDateColumns returns the maxLegs target date columns.
func (l ColumnLayout) OutputDateColumns(maxLegs int) []string {
	return expand(orDefault(l.DateOut, l.DateIn), maxLegs)
}

// OutputAirportColumns returns the maxLegs+1 target airport columns.
func (l ColumnLayout) OutputAirportColumns(maxLegs int) []string {
	return expand(orDefault(l.AirportOut, l.AirportIn), maxLegs+1)
}

// OutputDepartureAirportColumns returns the maxLegs target columns holding
// each leg's own departure airport. It differs from the airport slot when
// legs do not chain.
func (l ColumnLayout) OutputDepartureAirportColumns(maxLegs int) []string {
	return expand(orDefault(l.DepartureAirportOut, DefaultDepartureAirportOut), maxLegs)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// SourceProfile binds a vendor feed to its rules and column layout.
type SourceProfile struct {
	Name        string
	SourceTable string
	TargetTable string
	Rules       SegmentationRules
	Layout      ColumnLayout
}

// Validate checks the rules and that every column pattern is usable.
func (p SourceProfile) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("profile name is empty"))
	}
	if err := p.Rules.Validate(); err != nil {
		errs = append(errs, err)
	}
	for name, pattern := range map[string]string{
		"flight number": p.Layout.FlightNumberIn,
		"date":          p.Layout.DateIn,
		"airport":       p.Layout.AirportIn,
	} {
		if strings.Count(pattern, "%d") != 1 {
			errs = append(errs, fmt.Errorf("%s column pattern %q needs exactly one %%d", name, pattern))
		}
	}
	if p.Layout.DepartureAirportOut != "" && strings.Count(p.Layout.DepartureAirportOut, "%d") != 1 {
		errs = append(errs, fmt.Errorf("departure airport column pattern %q needs exactly one %%d", p.Layout.DepartureAirportOut))
	}
	for _, k := range p.Layout.KeyColumns {
		if !contains(p.Layout.Shared, k) {
			errs = append(errs, fmt.Errorf("key column %q is not a shared column", k))
		}
	}
	if p.Layout.JourneyTypeColumn != "" && !contains(p.Layout.Shared, p.Layout.JourneyTypeColumn) {
		errs = append(errs, fmt.Errorf("journey type column %q is not a shared column", p.Layout.JourneyTypeColumn))
	}
	if p.Rules.SplitRoundTrips && p.Layout.JourneyTypeColumn == "" {
		errs = append(errs, errors.New("round-trip split needs a journey type column"))
	}
	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
