package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"salonbook/models"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll  *mongo.Collection
	clock clock.Clock
}

func NewMongoBookingRepo(db *mongo.Database, clk clock.Clock) *MongoBookingRepo {
	if clk == nil {
		clk = clock.WallClock
	}
	return &MongoBookingRepo{
		coll:  db.Collection("bookings"),
		clock: clk,
	}
}

// Create inserts a new pending booking. A second pending booking on the same
// slot is rejected by the partial unique index and reported as ErrSlotTaken.
func (repo *MongoBookingRepo) Create(ctx context.Context, userID, masterID, date, at string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := repo.clock.Now().UTC()
	booking := &models.Booking{
		ID:        uuid.New().String(),
		UserID:    userID,
		MasterID:  masterID,
		Date:      date,
		Time:      at,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.BookingStatusPending,
	}
	if _, err := repo.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.ErrSlotTaken
		}
		return nil, fmt.Errorf("error creating booking: %w", err)
	}
	return booking, nil
}

func (repo *MongoBookingRepo) Get(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, err)
	}
	return &booking, nil
}

func (repo *MongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return repo.find(ctx, bson.M{"userId": userID}, opts)
}

func (repo *MongoBookingRepo) ListByMaster(ctx context.Context, masterID string, includeAll bool) ([]models.Booking, error) {
	filter := bson.M{"masterId": masterID}
	if !includeAll {
		filter["status"] = models.BookingStatusPending
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "time", Value: 1},
		{Key: "createdAt", Value: 1},
	})
	return repo.find(ctx, filter, opts)
}

func (repo *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]models.Booking, 0)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// SetStatus moves a pending booking to a terminal status with a conditional
// update, so concurrent actors cannot both win the transition.
func (repo *MongoBookingRepo) SetStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if !models.BookingStatusPending.CanTransitionTo(status) {
		return models.ErrInvalidTransition
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.BookingStatusPending}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": repo.clock.Now().UTC()}}
	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		// Either missing or no longer pending.
		if _, err := repo.Get(ctx, id); err != nil {
			return err
		}
		return models.ErrInvalidTransition
	}
	return nil
}

func (repo *MongoBookingRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *MongoBookingRepo) FindPendingBySlot(ctx context.Context, masterID, date, at string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"masterId": masterID,
		"date":     date,
		"time":     at,
		"status":   models.BookingStatusPending,
	}
	var booking models.Booking
	if err := repo.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("error finding pending booking for %s %s %s: %w", masterID, date, at, err)
	}
	return &booking, nil
}
