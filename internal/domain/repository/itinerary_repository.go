package repository

import (
	"context"

	"agency-itinerary-service/internal/domain/entity"
)

// ItineraryRepository stores projected itinerary records. InsertIgnore must
// skip records whose natural key already exists and report how many rows were
// actually written.
type ItineraryRepository interface {
	EnsureSchema(ctx context.Context) error
	InsertIgnore(ctx context.Context, records []entity.ItineraryRecord) (int64, error)
}
