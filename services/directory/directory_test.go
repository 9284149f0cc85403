package directory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/models"
)

func TestDirectory_Masters(t *testing.T) {
	d := New(map[string]string{"10": "Vera", "2": "Boris", "1": "Anna"}, nil, nil)

	m, ok := d.Master("1")
	require.True(t, ok)
	assert.Equal(t, "Anna", m.Name)

	_, ok = d.Master("99")
	assert.False(t, ok)

	all := d.Masters()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1", "2", "10"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestDirectory_ClientNameFallsBackToID(t *testing.T) {
	d := New(nil, NewMemoryNameStore(), nil)
	ctx := context.Background()

	assert.Equal(t, "u-1", d.ClientName(ctx, "u-1"))

	d.Remember(ctx, models.Caller{UserID: "u-1", Name: "Alice", Role: models.RoleClient})
	assert.Equal(t, "Alice", d.ClientName(ctx, "u-1"))

	// Nameless callers do not overwrite.
	d.Remember(ctx, models.Caller{UserID: "u-1"})
	assert.Equal(t, "Alice", d.ClientName(ctx, "u-1"))
}

func TestRedisNameStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisNameStore(client)
	ctx := context.Background()

	name, err := store.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, name)

	require.NoError(t, store.Set(ctx, "u-1", "Alice"))
	name, err = store.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
	assert.Equal(t, "Alice", mr.HGet(clientNamesKey, "u-1"))
}
