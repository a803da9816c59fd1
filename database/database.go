package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectAttempts = 3
	connectBackoff  = 2 * time.Second
)

type MongoDB struct {
	Client *mongo.Client
	Users  *mongo.Collection
	Posts  *mongo.Collection

	useTransactions bool
	logger          *slog.Logger
}

// NewMongoDB wraps an already connected client.
func NewMongoDB(client *mongo.Client, dbName string, useTransactions bool, logger *slog.Logger) *MongoDB {
	if logger == nil {
		logger = slog.Default()
	}
	db := client.Database(dbName)
	return &MongoDB{
		Client:          client,
		Users:           db.Collection("users"),
		Posts:           db.Collection("posts"),
		useTransactions: useTransactions,
		logger:          logger,
	}
}

// Connect dials and pings MongoDB, retrying a few times before giving up.
func Connect(ctx context.Context, uri, dbName string, useTransactions bool, logger *slog.Logger) (*MongoDB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := dial(ctx, uri)
		if err == nil {
			logger.Info("connected to mongodb", "db", dbName, "attempt", attempt)
			return NewMongoDB(client, dbName, useTransactions, logger), nil
		}

		lastErr = err
		logger.Warn("mongodb connection attempt failed", "attempt", attempt, "error", err)

		if attempt < connectAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(connectBackoff):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", connectAttempts, lastErr)
}

func dial(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the handlers rely on. Failures are
// logged per index so one bad index (e.g. pre-existing duplicate usernames)
// doesn't block the rest.
func (m *MongoDB) EnsureIndexes(ctx context.Context) {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.Users, mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		}},
		{m.Users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email"),
		}},
		{m.Posts, mongo.IndexModel{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("tags"),
		}},
		{m.Posts, mongo.IndexModel{
			Keys:    bson.D{{Key: "date", Value: -1}},
			Options: options.Index().SetName("date_desc"),
		}},
	}

	for _, idx := range indexes {
		name, err := idx.coll.Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			m.logger.Warn("failed to create index", "collection", idx.coll.Name(), "error", err)
			continue
		}
		m.logger.Debug("index ready", "collection", idx.coll.Name(), "index", name)
	}
}

func (m *MongoDB) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	if err := m.Client.Disconnect(ctx); err != nil {
		return err
	}
	m.logger.Info("disconnected from mongodb")
	return nil
}
