package repository

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/juju/clock"
	"go.mongodb.org/mongo-driver/mongo"

	bookingRepo "salonbook/database/repository/booking"
	recordsRepo "salonbook/database/repository/records"
	schedulerRepo "salonbook/database/repository/scheduler"
)

// Re-export the repository interfaces.
type (
	SchedulerRepository    = schedulerRepo.SchedulerRepository
	BookingRepository      = bookingRepo.BookingRepository
	VisitHistoryRepository = recordsRepo.VisitHistoryRepository
)

// Stores bundles the three persistent components of the booking saga.
type Stores struct {
	Ledger   SchedulerRepository
	Bookings BookingRepository
	History  VisitHistoryRepository
}

// NewMemoryStores keeps everything in process.
func NewMemoryStores(clk clock.Clock) *Stores {
	return &Stores{
		Ledger:   schedulerRepo.NewMemorySchedulerRepo(clk),
		Bookings: bookingRepo.NewMemoryBookingRepo(clk),
		History:  recordsRepo.NewMemoryRecordRepo(clk),
	}
}

// NewMongoStores keeps bookings and history in db. ledgerBackend picks the
// ledger: "redis" uses ledgerClient, "mongo" uses db. Indexes are created up front.
func NewMongoStores(ctx context.Context, db *mongo.Database, ledgerBackend string, ledgerClient redis.UniversalClient, clk clock.Clock) (*Stores, error) {
	switch ledgerBackend {
	case "", "redis":
		if ledgerClient == nil {
			return nil, fmt.Errorf("redis ledger requires a redis client")
		}
	case "mongo":
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", ledgerBackend)
	}

	bookings := bookingRepo.NewMongoBookingRepo(db, clk)
	if err := bookings.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("booking indexes: %w", err)
	}
	history := recordsRepo.NewMongoRecordRepo(db, clk)
	if err := history.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("visit history indexes: %w", err)
	}

	var ledger SchedulerRepository = schedulerRepo.NewRedisSchedulerRepo(ledgerClient, clk)
	if ledgerBackend == "mongo" {
		mongoLedger := schedulerRepo.NewMongoSchedulerRepo(db, clk)
		if err := mongoLedger.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("schedule ledger indexes: %w", err)
		}
		ledger = mongoLedger
	}

	return &Stores{Ledger: ledger, Bookings: bookings, History: history}, nil
}
