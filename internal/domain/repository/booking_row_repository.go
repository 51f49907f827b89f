package repository

import (
	"context"

	"agency-itinerary-service/internal/domain/entity"
)

// BookingRowRepository supplies raw booking rows in offset pages
type BookingRowRepository interface {
	Count(ctx context.Context) (int64, error)
	FetchBatch(ctx context.Context, offset int64, limit int) ([]entity.BookingRow, error)
}
