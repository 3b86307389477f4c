package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"study-service/internal/apperr"
	dbmongo "study-service/internal/database/mongo"
	"study-service/internal/models"
)

type GoalRepository struct {
	collection *mongo.Collection
}

func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{collection: db.Collection(dbmongo.GoalsCollection)}
}

func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if _, err := r.collection.InsertOne(ctx, goal); err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	var goal models.Goal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find goal: %w", err)
	}
	return &goal, nil
}

func (r *GoalRepository) FindByUser(ctx context.Context, userID string, status models.GoalStatus) ([]models.Goal, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find goals: %w", err)
	}
	defer cursor.Close(ctx)

	goals := []models.Goal{}
	if err = cursor.All(ctx, &goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}
	return goals, nil
}

// UpdateStatus moves a goal to status only while it is still in from.
func (r *GoalRepository) UpdateStatus(ctx context.Context, id string, from, to models.GoalStatus) error {
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return fmt.Errorf("failed to update goal status: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.Conflict("goal %s is no longer %s", id, from)
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("goal %s not found", id)
	}
	return nil
}
