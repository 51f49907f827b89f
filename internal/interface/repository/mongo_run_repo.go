package repository

import (
	"context"
	"time"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRunRepository implements RunRepository
type MongoRunRepository struct {
	collection *mongo.Collection
}

// NewMongoRunRepository creates a new run log repository
func NewMongoRunRepository(db *mongo.Database) repository.RunRepository {
	collection := db.Collection("segmentation_runs")

	// Create unique index on runId
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"runId": 1},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	// Create index on profile and start time for history queries
	historyIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "profile", Value: 1}, {Key: "startedAt", Value: -1}},
	}
	collection.Indexes().CreateOne(ctx, historyIndex)

	return &MongoRunRepository{
		collection: collection,
	}
}

// Start records a new run
func (r *MongoRunRepository) Start(ctx context.Context, run *entity.SegmentationRun) error {
	_, err := r.collection.InsertOne(ctx, run)
	return err
}

// RecordBatch appends the stats of one batch to a run
func (r *MongoRunRepository) RecordBatch(ctx context.Context, runID string, stats entity.BatchStats) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"runId": runID},
		bson.M{
			"$push": bson.M{"batches": stats},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	return err
}

// Finish stores the final status and totals of a run
func (r *MongoRunRepository) Finish(ctx context.Context, run *entity.SegmentationRun) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"runId": run.ID},
		bson.M{"$set": bson.M{
			"profile":     run.Profile,
			"sourceTable": run.SourceTable,
			"targetTable": run.TargetTable,
			"status":      run.Status,
			"startedAt":   run.StartedAt,
			"finishedAt":  run.FinishedAt,
			"totalRows":   run.TotalRows,
			"totals":      run.Totals,
			"errorDetail": run.ErrorDetail,
			"updatedAt":   time.Now().UTC(),
		}},
		opts,
	)
	return err
}
