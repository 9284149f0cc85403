package schedulerRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the schedule_entries collection.
func (repo *MongoSchedulerRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// One occupant per slot.
		{
			Keys:    bson.D{{Key: "masterId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_slot"),
		},
		// Reconciler scan.
		{
			Keys:    bson.D{{Key: "reservedAt", Value: 1}},
			Options: options.Index().SetName("reserved_at_idx"),
		},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create schedule entry indexes: %w", err)
	}
	return nil
}
