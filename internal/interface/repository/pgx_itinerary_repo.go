package repository

import (
	"context"
	"fmt"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxItineraryRepository writes itinerary records to PostgreSQL with
// pipelined pgx batches
type PgxItineraryRepository struct {
	pool   *pgxpool.Pool
	schema *TargetSchema
	insert string
}

// NewPgxItineraryRepository creates a new pgx itinerary sink
func NewPgxItineraryRepository(pool *pgxpool.Pool, profile entity.SourceProfile) repository.ItineraryRepository {
	schema := NewTargetSchema(profile)
	return &PgxItineraryRepository{
		pool:   pool,
		schema: schema,
		insert: schema.InsertSQL(DialectPostgres),
	}
}

// EnsureSchema creates the target table when it does not exist
func (r *PgxItineraryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, r.schema.CreateTableSQL(DialectPostgres)); err != nil {
		return fmt.Errorf("create %s: %w", r.schema.Table, err)
	}
	return nil
}

// InsertIgnore sends all records in one transaction and returns how many
// were new
func (r *PgxItineraryRepository) InsertIgnore(ctx context.Context, records []entity.ItineraryRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(r.insert, r.schema.Values(rec)...)
	}

	br := tx.SendBatch(ctx, batch)
	var inserted int64
	for range records {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, fmt.Errorf("insert %s: %w", r.schema.Table, err)
		}
		inserted += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
