package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	dbmongo "study-service/internal/database/mongo"
	"study-service/internal/models"
)

// SnapshotRepository persists per-user, per-day analytics snapshots.
type SnapshotRepository struct {
	collection *mongo.Collection
}

func NewSnapshotRepository(db *mongo.Database) *SnapshotRepository {
	return &SnapshotRepository{collection: db.Collection(dbmongo.SnapshotsCollection)}
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.AnalyticsSnapshot) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": snapshot.ID}, snapshot, opts); err != nil {
		return fmt.Errorf("failed to save analytics snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Get(ctx context.Context, userID, date string) (*models.AnalyticsSnapshot, error) {
	var snapshot models.AnalyticsSnapshot
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics snapshot: %w", err)
	}
	return &snapshot, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, userID, date string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "date": date}); err != nil {
		return fmt.Errorf("failed to delete analytics snapshot: %w", err)
	}
	return nil
}
