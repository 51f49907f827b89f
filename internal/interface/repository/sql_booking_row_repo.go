package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"
)

// SQLBookingRowRepository reads booking rows from an embedded DuckDB or
// SQLite database
type SQLBookingRowRepository struct {
	db      *sql.DB
	table   string
	orderBy string
	mapper  *RowMapper
}

// NewSQLBookingRowRepository creates a row source over profile.SourceTable.
// An empty orderBy pages by rowid.
func NewSQLBookingRowRepository(db *sql.DB, profile entity.SourceProfile, orderBy string) repository.BookingRowRepository {
	if strings.TrimSpace(orderBy) == "" {
		orderBy = "rowid"
	}
	return &SQLBookingRowRepository{
		db:      db,
		table:   profile.SourceTable,
		orderBy: orderBy,
		mapper:  NewRowMapper(profile),
	}
}

// Count returns the number of rows in the source table
func (r *SQLBookingRowRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(r.table))
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	return n, nil
}

// FetchBatch reads up to limit rows starting at offset
func (r *SQLBookingRowRepository) FetchBatch(ctx context.Context, offset int64, limit int) ([]entity.BookingRow, error) {
	cols := r.mapper.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT ? OFFSET ?",
		strings.Join(quoted, ", "), quoteIdent(r.table), r.orderBy)

	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	out := make([]entity.BookingRow, 0, limit)
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	position := offset
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		m := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			m[c] = values[i]
		}
		out = append(out, r.mapper.Map(position, m))
		position++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", r.table, err)
	}
	return out, nil
}
