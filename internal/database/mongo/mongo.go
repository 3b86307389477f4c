package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"study-service/internal/config"
	"study-service/internal/logger"
)

const (
	SessionsCollection  = "study_sessions"
	QuestionsCollection = "questions"
	ProvidersCollection = "providers"
	ExamsCollection     = "exams"
	TopicsCollection    = "topics"
	GoalsCollection     = "goals"
	SnapshotsCollection = "analytics_snapshots"
)

// Connect opens a client and verifies it with a ping.
func Connect(cfg *config.MongoDBConfig, log *logger.Logger) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.PoolSize).
		SetTimeout(cfg.Timeout)

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Info("connected to MongoDB", "database", cfg.Database)
	return client, client.Database(cfg.Database), nil
}

// Close disconnects the client
func Close(client *mongo.Client, log *logger.Logger) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error("error disconnecting from MongoDB", "error", err)
	}
}

// EnsureIndexes creates the indexes the repositories query on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		SessionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		QuestionsCollection: {
			{Keys: bson.D{{Key: "exam_id", Value: 1}, {Key: "topic_id", Value: 1}}},
			{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "exam_id", Value: 1}, {Key: "number", Value: 1}}},
		},
		ExamsCollection: {
			{Keys: bson.D{{Key: "provider_id", Value: 1}}},
		},
		TopicsCollection: {
			{Keys: bson.D{{Key: "exam_id", Value: 1}}},
		},
		GoalsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		SnapshotsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
