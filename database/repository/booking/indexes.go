package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salonbook/models"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (repo *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("user_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "masterId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("master_date_time_idx"),
		},
		// At most one pending booking per slot.
		{
			Keys: bson.D{{Key: "masterId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.BookingStatusPending}).
				SetName("unique_pending_slot"),
		},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
