package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"salonbook/config"
)

var (
	// LedgerClient backs the schedule ledger.
	LedgerClient *redis.Client
	// CacheClient holds sync inboxes and client display names.
	CacheClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects the ledger and cache clients.
func InitRedis() {
	LedgerClient = newRedisClient(config.AppConfig.RedisLedgerDB, "Ledger")
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
}

func GetLedgerClient() *redis.Client {
	if LedgerClient == nil {
		LedgerClient = newRedisClient(config.AppConfig.RedisLedgerDB, "Ledger")
	}
	return LedgerClient
}

func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
	}
	return CacheClient
}

// QueueRedisOpt is the asynq connection for the task queue database.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
