package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const clientNamesKey = "directory:clients"

// RedisNameStore keeps client names in a single Redis hash.
type RedisNameStore struct {
	client redis.UniversalClient
}

func NewRedisNameStore(client redis.UniversalClient) *RedisNameStore {
	return &RedisNameStore{client: client}
}

func (s *RedisNameStore) Get(ctx context.Context, clientID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	name, err := s.client.HGet(ctx, clientNamesKey, clientID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error reading client name %s: %w", clientID, err)
	}
	return name, nil
}

func (s *RedisNameStore) Set(ctx context.Context, clientID, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.client.HSet(ctx, clientNamesKey, clientID, name).Err(); err != nil {
		return fmt.Errorf("error storing client name %s: %w", clientID, err)
	}
	return nil
}

// MemoryNameStore is an in-process NameStore.
type MemoryNameStore struct {
	names sync.Map
}

func NewMemoryNameStore() *MemoryNameStore {
	return &MemoryNameStore{}
}

func (s *MemoryNameStore) Get(_ context.Context, clientID string) (string, error) {
	v, ok := s.names.Load(clientID)
	if !ok {
		return "", nil
	}
	return v.(string), nil
}

func (s *MemoryNameStore) Set(_ context.Context, clientID, name string) error {
	s.names.Store(clientID, name)
	return nil
}
