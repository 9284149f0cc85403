package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every probed dependency answered.
func (h HealthStatus) Healthy() bool {
	if !h.Mongo {
		return false
	}
	for _, ok := range h.Redis {
		if !ok {
			return false
		}
	}
	return true
}

var (
	currentHealth = HealthStatus{Mongo: true}
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth probes the given backends once and stores the result.
// A nil mongo client counts as healthy (memory backend).
func CheckHealth(ctx context.Context, redisClients []redis.UniversalClient, mongoClient *mongo.Client) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	redisHealth := make([]bool, 0, len(redisClients))
	for _, client := range redisClients {
		redisHealth = append(redisHealth, client.Ping(ctx).Err() == nil)
	}
	mongoHealthy := mongoClient == nil || mongoClient.Ping(ctx, nil) == nil

	status := HealthStatus{
		Mongo:     mongoHealthy,
		Redis:     redisHealth,
		CheckedAt: time.Now().UTC(),
	}
	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, interval time.Duration, redisClients []redis.UniversalClient, mongoClient *mongo.Client) {
	CheckHealth(ctx, redisClients, mongoClient)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, redisClients, mongoClient)
			}
		}
	}()
}
