package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"salonbook/config"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// InitDB connects to MongoDB and returns the configured database.
func InitDB(ctx context.Context, logger *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.AppConfig.DatabaseURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	MongoClient = client
	logger.Info("Connected to MongoDB", zap.String("database", config.AppConfig.DatabaseName))
	return client.Database(config.AppConfig.DatabaseName), nil
}

// CloseDB disconnects the global client if one was opened.
func CloseDB(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	return MongoClient.Disconnect(ctx)
}
