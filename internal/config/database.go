package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DB is the global database instance
var DB *mongo.Database

var mongoClient *mongo.Client

// ConnectDatabase establishes connection to MongoDB
func ConnectDatabase(cfg *Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Mongo.TimeoutSeconds)*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	// Set global DB instance
	mongoClient = client
	DB = client.Database(cfg.Mongo.Database)

	log.Printf("✅ Database connected successfully [%s]", cfg.Mongo.Database)

	return DB, nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if mongoClient == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return mongoClient.Disconnect(ctx)
}

// HealthCheck checks if database is healthy
func HealthCheck() error {
	if mongoClient == nil {
		return fmt.Errorf("database not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return mongoClient.Ping(ctx, readpref.Primary())
}
