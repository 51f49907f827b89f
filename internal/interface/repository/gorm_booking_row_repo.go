package repository

import (
	"context"
	"fmt"
	"strings"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormBookingRowRepository reads booking rows from PostgreSQL
type GormBookingRowRepository struct {
	db      *gorm.DB
	table   string
	orderBy string
	mapper  *RowMapper
}

// NewGormBookingRowRepository creates a new GORM row source. An empty
// orderBy pages by ctid.
func NewGormBookingRowRepository(db *gorm.DB, profile entity.SourceProfile, orderBy string) repository.BookingRowRepository {
	if strings.TrimSpace(orderBy) == "" {
		orderBy = "ctid"
	}
	return &GormBookingRowRepository{
		db:      db,
		table:   profile.SourceTable,
		orderBy: orderBy,
		mapper:  NewRowMapper(profile),
	}
}

// Count returns the number of rows in the source table
func (r *GormBookingRowRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Table(r.table).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	return n, nil
}

// FetchBatch reads up to limit rows starting at offset
func (r *GormBookingRowRepository) FetchBatch(ctx context.Context, offset int64, limit int) ([]entity.BookingRow, error) {
	cols := r.mapper.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}

	var results []map[string]interface{}
	err := r.db.WithContext(ctx).
		Table(r.table).
		Select(strings.Join(quoted, ", ")).
		Order(r.orderBy).
		Offset(int(offset)).
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}

	// Convert result maps to domain rows
	out := make([]entity.BookingRow, len(results))
	for i, m := range results {
		out[i] = r.mapper.Map(offset+int64(i), m)
	}
	return out, nil
}
