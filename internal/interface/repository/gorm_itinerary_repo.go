package repository

import (
	"context"
	"fmt"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormInsertChunk keeps one INSERT under the PostgreSQL parameter limit
const gormInsertChunk = 1000

// GormItineraryRepository writes itinerary records to PostgreSQL through GORM
type GormItineraryRepository struct {
	db     *gorm.DB
	schema *TargetSchema
}

// NewGormItineraryRepository creates a new GORM itinerary sink
func NewGormItineraryRepository(db *gorm.DB, profile entity.SourceProfile) repository.ItineraryRepository {
	return &GormItineraryRepository{
		db:     db,
		schema: NewTargetSchema(profile),
	}
}

// EnsureSchema creates the target table when it does not exist
func (r *GormItineraryRepository) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec(r.schema.CreateTableSQL(DialectPostgres)).Error; err != nil {
		return fmt.Errorf("create %s: %w", r.schema.Table, err)
	}
	return nil
}

// InsertIgnore inserts records, skipping natural key conflicts
func (r *GormItineraryRepository) InsertIgnore(ctx context.Context, records []entity.ItineraryRecord) (int64, error) {
	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(records); start += gormInsertChunk {
			end := min(start+gormInsertChunk, len(records))

			rows := make([]map[string]interface{}, 0, end-start)
			for _, rec := range records[start:end] {
				rows = append(rows, r.schema.Row(rec))
			}

			result := tx.Table(r.schema.Table).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: NaturalKeyColumn}},
					DoNothing: true,
				}).
				Create(&rows)
			if result.Error != nil {
				return result.Error
			}
			inserted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", r.schema.Table, err)
	}
	return inserted, nil
}
