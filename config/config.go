package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// StoreBackend selects "mongo" (bookings and history in MongoDB)
	// or "memory" (everything in process, for local runs).
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	// LedgerBackend selects "redis" or "mongo" for the schedule ledger when
	// StoreBackend is "mongo".
	LedgerBackend string `mapstructure:"LEDGER_BACKEND"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLedgerDB int    `mapstructure:"REDIS_LEDGER_DB"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Daily slot grid.
	SlotStartHour int   `mapstructure:"SLOT_START_HOUR"`
	SlotEndHour   int   `mapstructure:"SLOT_END_HOUR"`
	WorkingDays   []int `mapstructure:"WORKING_DAYS"`

	// Saga and reconciliation.
	ReservationTimeout time.Duration `mapstructure:"RESERVATION_TIMEOUT"`
	ReconcileInterval  time.Duration `mapstructure:"RECONCILE_INTERVAL"`
	HistoryRetries     int           `mapstructure:"HISTORY_RETRIES"`
	HistoryRetryDelay  time.Duration `mapstructure:"HISTORY_RETRY_DELAY"`

	// Recommendation policy.
	RevisitIntervalDays           int  `mapstructure:"REVISIT_INTERVAL_DAYS"`
	RecommendationMaxAttempts     int  `mapstructure:"RECOMMENDATION_MAX_ATTEMPTS"`
	RecommendationPreserveWeekday bool `mapstructure:"RECOMMENDATION_PRESERVE_WEEKDAY"`

	// Masters is the static master directory (id -> name).
	Masters map[string]string `mapstructure:"MASTERS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("STORE_BACKEND", "mongo")
	viper.SetDefault("LEDGER_BACKEND", "redis")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "salon")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_LEDGER_DB", 0)
	viper.SetDefault("REDIS_CACHE_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)

	viper.SetDefault("SLOT_START_HOUR", 10)
	viper.SetDefault("SLOT_END_HOUR", 17)
	viper.SetDefault("WORKING_DAYS", []int{1, 2, 3, 4, 5})

	viper.SetDefault("RESERVATION_TIMEOUT", 2*time.Minute)
	viper.SetDefault("RECONCILE_INTERVAL", time.Minute)
	viper.SetDefault("HISTORY_RETRIES", 3)
	viper.SetDefault("HISTORY_RETRY_DELAY", 200*time.Millisecond)

	viper.SetDefault("REVISIT_INTERVAL_DAYS", 30)
	viper.SetDefault("RECOMMENDATION_MAX_ATTEMPTS", 7)
	viper.SetDefault("RECOMMENDATION_PRESERVE_WEEKDAY", false)

	viper.SetDefault("MASTERS", map[string]string{
		"1": "Anna",
		"2": "Boris",
	})
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
