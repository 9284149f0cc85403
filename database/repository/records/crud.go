package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salonbook/models"
)

// MongoRecordRepo implements VisitHistoryRepository using MongoDB.
type MongoRecordRepo struct {
	coll  *mongo.Collection
	clock clock.Clock
}

// NewMongoRecordRepo returns a VisitHistoryRepository backed by MongoDB.
func NewMongoRecordRepo(db *mongo.Database, clk clock.Clock) *MongoRecordRepo {
	if clk == nil {
		clk = clock.WallClock
	}
	return &MongoRecordRepo{
		coll:  db.Collection("visit_history"),
		clock: clk,
	}
}

// Append inserts a new history record. It never updates an existing one.
func (r *MongoRecordRepo) Append(ctx context.Context, record models.VisitHistoryRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = r.clock.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("error appending visit history: %w", err)
	}
	return nil
}

func (r *MongoRecordRepo) ListByMaster(ctx context.Context, masterID string) ([]models.VisitHistoryRecord, error) {
	return r.list(ctx, bson.M{"masterId": masterID})
}

func (r *MongoRecordRepo) ListByClient(ctx context.Context, clientID string) ([]models.VisitHistoryRecord, error) {
	return r.list(ctx, bson.M{"clientId": clientID})
}

func (r *MongoRecordRepo) list(ctx context.Context, filter bson.M) ([]models.VisitHistoryRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "time", Value: 1},
		{Key: "recordedAt", Value: 1},
	})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing visit history: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.VisitHistoryRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding visit history: %w", err)
	}
	return models.DedupVisits(records), nil
}

func (r *MongoRecordRepo) Exists(ctx context.Context, record models.VisitHistoryRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"masterId": record.MasterID,
		"clientId": record.ClientID,
		"date":     record.Date,
		"time":     record.Time,
		"status":   record.Status,
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking visit history: %w", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates the lookup indexes on the visit_history collection.
// No unique index: duplicate appends are tolerated.
func (r *MongoRecordRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "masterId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("master_date_time_idx"),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("client_date_time_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create visit history indexes: %w", err)
	}
	return nil
}
