package database

import (
	"context"
	"fmt"

	"seva-kendra/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names
const (
	UsersCollection    = "users"
	VendorsCollection  = "vendors"
	ServicesCollection = "services"
)

// Connect opens a pooled client and verifies it with a ping
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	zap.L().Info("Connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

// EnsureIndexes creates the uniqueness constraints and the sort/filter
// indexes used by the admin views. Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	}
	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("create users indexes: %w", err)
	}

	vendors := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user_id"),
		},
		{
			Keys:    bson.D{{Key: "verificationStatus", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("status_created_at"),
		},
	}
	if _, err := db.Collection(VendorsCollection).Indexes().CreateMany(ctx, vendors); err != nil {
		return fmt.Errorf("create vendors indexes: %w", err)
	}
	return nil
}
