package repository

import (
	"context"
	"testing"

	"github.com/juju/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryStores(t *testing.T) {
	stores := NewMemoryStores(clock.WallClock)
	ctx := context.Background()

	require.NoError(t, stores.Ledger.Reserve(ctx, "1", "2024-06-10", "14:00", "A"))
	b, err := stores.Bookings.Create(ctx, "A", "1", "2024-06-10", "14:00")
	require.NoError(t, err)

	found, err := stores.Bookings.FindPendingBySlot(ctx, "1", "2024-06-10", "14:00")
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)
}

func TestNewMongoStores_RejectsUnknownLedger(t *testing.T) {
	_, err := NewMongoStores(context.Background(), nil, "etcd", nil, clock.WallClock)
	assert.Error(t, err)
}

func TestNewMongoStores_RedisLedgerNeedsClient(t *testing.T) {
	_, err := NewMongoStores(context.Background(), nil, "redis", nil, clock.WallClock)
	assert.Error(t, err)
}
