package repository

import (
	"fmt"
	"strings"
	"time"

	"agency-itinerary-service/internal/domain/entity"
)

// Dialect selects the SQL flavour of a sink
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectDuckDB   Dialect = "duckdb"
	DialectSQLite   Dialect = "sqlite"
)

// NaturalKeyColumn holds the hash of a record's identity tuple
const NaturalKeyColumn = "natural_key"

// Column is one column of the target table
type Column struct {
	Name string
	Type string
}

// TargetSchema is the fixed-width layout of a profile's target table
type TargetSchema struct {
	Table   string
	Columns []Column

	shared   []string
	textOnly map[string]bool
	flights  []string
	dates    []string
	deps     []string
	airports []string
}

// NewTargetSchema expands the output columns of a profile
func NewTargetSchema(profile entity.SourceProfile) *TargetSchema {
	layout := profile.Layout
	maxLegs := profile.Rules.MaxLegs

	s := &TargetSchema{
		Table:    profile.TargetTable,
		shared:   layout.Shared,
		textOnly: make(map[string]bool, len(layout.Shared)),
		flights:  layout.OutputFlightNumberColumns(maxLegs),
		dates:    layout.OutputDateColumns(maxLegs),
		deps:     layout.OutputDepartureAirportColumns(maxLegs),
		airports: layout.OutputAirportColumns(maxLegs),
	}

	for _, c := range layout.Shared {
		typ := strings.ToUpper(layout.SharedTypes[c])
		if typ == "" || typ == "TEXT" {
			typ = "TEXT"
			s.textOnly[c] = true
		}
		s.Columns = append(s.Columns, Column{Name: c, Type: typ})
	}
	for _, c := range s.flights {
		s.Columns = append(s.Columns, Column{Name: c, Type: "TEXT"})
	}
	for _, c := range s.dates {
		s.Columns = append(s.Columns, Column{Name: c, Type: "TIMESTAMP"})
	}
	for _, c := range s.deps {
		s.Columns = append(s.Columns, Column{Name: c, Type: "TEXT"})
	}
	for _, c := range s.airports {
		s.Columns = append(s.Columns, Column{Name: c, Type: "TEXT"})
	}
	s.Columns = append(s.Columns, Column{Name: NaturalKeyColumn, Type: "TEXT"})
	return s
}

// ColumnNames returns the target column names in insert order
func (s *TargetSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// CreateTableSQL returns the idempotent DDL of the target table
func (s *TargetSchema) CreateTableSQL(d Dialect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", quoteIdent(s.Table))
	for _, c := range s.Columns {
		typ := c.Type
		if c.Name == NaturalKeyColumn {
			typ = "TEXT NOT NULL UNIQUE"
		}
		fmt.Fprintf(&b, "    %s %s,\n", quoteIdent(c.Name), dialectType(d, typ))
	}
	// drop the trailing comma
	out := strings.TrimSuffix(b.String(), ",\n")
	return out + "\n)"
}

func dialectType(d Dialect, typ string) string {
	if d == DialectDuckDB && typ == "TEXT" {
		return "VARCHAR"
	}
	return typ
}

// InsertSQL returns the insert statement that skips natural key conflicts
func (s *TargetSchema) InsertSQL(d Dialect) string {
	cols := make([]string, len(s.Columns))
	params := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = quoteIdent(c.Name)
		if d == DialectPostgres {
			params[i] = fmt.Sprintf("$%d", i+1)
		} else {
			params[i] = "?"
		}
	}

	switch d {
	case DialectPostgres:
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
			quoteIdent(s.Table), strings.Join(cols, ", "), strings.Join(params, ", "), quoteIdent(NaturalKeyColumn))
	default:
		return fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
			quoteIdent(s.Table), strings.Join(cols, ", "), strings.Join(params, ", "))
	}
}

// Values flattens a record into column order. Empty slots become NULL. Every
// field of the natural key has a column of its own.
func (s *TargetSchema) Values(rec entity.ItineraryRecord) []interface{} {
	out := make([]interface{}, 0, len(s.Columns))
	for _, c := range s.shared {
		v := rec.Shared.Get(c)
		if s.textOnly[c] {
			v = textValue(v)
		}
		out = append(out, v)
	}
	for i := range s.flights {
		out = append(out, nullString(slotAt(rec.Legs, i).FlightNumber))
	}
	for i := range s.dates {
		if d := slotAt(rec.Legs, i).Date; d != nil {
			out = append(out, *d)
		} else {
			out = append(out, nil)
		}
	}
	for i := range s.deps {
		out = append(out, nullString(slotAt(rec.Legs, i).DepartureAirport))
	}
	for i := range s.airports {
		a := ""
		if i < len(rec.Airports) {
			a = rec.Airports[i]
		}
		out = append(out, nullString(a))
	}
	return append(out, rec.NaturalKey)
}

// Row is Values keyed by column name
func (s *TargetSchema) Row(rec entity.ItineraryRecord) map[string]interface{} {
	values := s.Values(rec)
	row := make(map[string]interface{}, len(values))
	for i, c := range s.Columns {
		row[c.Name] = values[i]
	}
	return row
}

func slotAt(legs []entity.LegSlot, i int) entity.LegSlot {
	if i < len(legs) {
		return legs[i]
	}
	return entity.LegSlot{}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// textValue renders a shared value for a TEXT column. NULL stays NULL.
func textValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return stringValue(v)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
