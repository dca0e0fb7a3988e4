package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection  = "users"
	photosCollection = "photos"
)

// MongoStore owns the document store connection
type MongoStore struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongoStore connects to the document store and verifies the connection
func NewMongoStore(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI).SetTimeout(timeout)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		Client: client,
		DB:     client.Database(database),
	}, nil
}

// EnsureIndexes creates the secondary indexes used by the ledger and session purge
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.DB.Collection(photosCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "photo_owner", Value: 1}, {Key: "google_location_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create photo owner index: %w", err)
	}

	_, err = m.DB.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_last_accessed", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create last accessed index: %w", err)
	}
	return nil
}

// Close disconnects from the document store
func (m *MongoStore) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
