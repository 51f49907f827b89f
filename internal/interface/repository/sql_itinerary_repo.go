package repository

import (
	"context"
	"database/sql"
	"fmt"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"
)

// SQLItineraryRepository writes itinerary records to an embedded DuckDB or
// SQLite database with INSERT OR IGNORE
type SQLItineraryRepository struct {
	db      *sql.DB
	dialect Dialect
	schema  *TargetSchema
}

// NewSQLItineraryRepository creates a sink over profile.TargetTable
func NewSQLItineraryRepository(db *sql.DB, dialect Dialect, profile entity.SourceProfile) repository.ItineraryRepository {
	return &SQLItineraryRepository{
		db:      db,
		dialect: dialect,
		schema:  NewTargetSchema(profile),
	}
}

// EnsureSchema creates the target table when it does not exist
func (r *SQLItineraryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.schema.CreateTableSQL(r.dialect)); err != nil {
		return fmt.Errorf("create %s: %w", r.schema.Table, err)
	}
	return nil
}

// InsertIgnore writes records in one transaction and returns how many were
// new
func (r *SQLItineraryRepository) InsertIgnore(ctx context.Context, records []entity.ItineraryRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.schema.InsertSQL(r.dialect))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, rec := range records {
		res, err := stmt.ExecContext(ctx, r.schema.Values(rec)...)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.schema.Table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
