package schedulerRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salonbook/models"
)

// MongoSchedulerRepo implements SchedulerRepository using MongoDB. The unique
// index on (masterId, date, time) makes the insert in Reserve the
// compare-and-set.
type MongoSchedulerRepo struct {
	coll  *mongo.Collection
	clock clock.Clock
}

// NewMongoSchedulerRepo constructs a new instance of MongoSchedulerRepo.
func NewMongoSchedulerRepo(db *mongo.Database, clk clock.Clock) *MongoSchedulerRepo {
	if clk == nil {
		clk = clock.WallClock
	}
	return &MongoSchedulerRepo{
		coll:  db.Collection("schedule_entries"),
		clock: clk,
	}
}

func slotFilter(masterID, date, at string) bson.M {
	return bson.M{"masterId": masterID, "date": date, "time": at}
}

// IsFree checks whether no entry exists for the slot.
func (repo *MongoSchedulerRepo) IsFree(ctx context.Context, masterID, date, at string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, slotFilter(masterID, date, at), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking slot %s %s %s: %w", masterID, date, at, err)
	}
	return n == 0, nil
}

// Reserve inserts the occupancy entry; a duplicate key means the slot is taken.
func (repo *MongoSchedulerRepo) Reserve(ctx context.Context, masterID, date, at, clientID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entry := models.ScheduleEntry{
		MasterID:   masterID,
		Date:       date,
		Time:       at,
		Occupant:   clientID,
		ReservedAt: repo.clock.Now().UTC(),
	}
	if _, err := repo.coll.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrSlotTaken
		}
		return fmt.Errorf("error reserving slot %s %s %s: %w", masterID, date, at, err)
	}
	return nil
}

// Release deletes the occupancy entry if present.
func (repo *MongoSchedulerRepo) Release(ctx context.Context, masterID, date, at string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.DeleteOne(ctx, slotFilter(masterID, date, at)); err != nil {
		return fmt.Errorf("error releasing slot %s %s %s: %w", masterID, date, at, err)
	}
	return nil
}

// ReleaseHeld deletes the entry only if occupant and, when given, reservedAt still match.
func (repo *MongoSchedulerRepo) ReleaseHeld(ctx context.Context, held models.ScheduleEntry) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := slotFilter(held.MasterID, held.Date, held.Time)
	filter["occupant"] = held.Occupant
	if !held.ReservedAt.IsZero() {
		filter["reservedAt"] = held.ReservedAt.UTC()
	}
	res, err := repo.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("error releasing slot %s %s %s: %w", held.MasterID, held.Date, held.Time, err)
	}
	return res.DeletedCount == 1, nil
}

// ListOccupied returns the occupied times of one master's day in ascending order.
func (repo *MongoSchedulerRepo) ListOccupied(ctx context.Context, masterID, date string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"masterId": masterID, "date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing occupied slots: %w", err)
	}
	defer cursor.Close(ctx)

	times := make([]string, 0)
	for cursor.Next(ctx) {
		var e models.ScheduleEntry
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("error decoding schedule entry: %w", err)
		}
		times = append(times, e.Time)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return times, nil
}

func (repo *MongoSchedulerRepo) ListReservedBefore(ctx context.Context, cutoff time.Time) ([]models.ScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "reservedAt", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"reservedAt": bson.M{"$lt": cutoff.UTC()}}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing stale reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.ScheduleEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("error decoding schedule entries: %w", err)
	}
	return entries, nil
}
