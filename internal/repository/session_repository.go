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

type SessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{
		collection: db.Collection(dbmongo.SessionsCollection),
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.StudySession, error) {
	var session models.StudySession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func sessionFilter(userID string, f models.SessionFilter) bson.M {
	filter := bson.M{"user_id": userID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ProviderID != "" {
		filter["provider_id"] = f.ProviderID
	}
	if f.ExamID != "" {
		filter["exam_id"] = f.ExamID
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = *f.From
		}
		if f.To != nil {
			rng["$lte"] = *f.To
		}
		filter["start_time"] = rng
	}
	return filter
}

// FindByUser returns one page of a user's sessions, newest first, and the total count.
func (r *SessionRepository) FindByUser(ctx context.Context, userID string, f models.SessionFilter) ([]*models.StudySession, int64, error) {
	filter := sessionFilter(userID, f)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, pageOptions(f.Page, f.Limit, bson.D{{Key: "start_time", Value: -1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []*models.StudySession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, total, nil
}

// FindAllByUser returns every session of a user in chronological order.
func (r *SessionRepository) FindAllByUser(ctx context.Context, userID string) ([]*models.StudySession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []*models.StudySession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

// Update replaces the stored session only if it still carries expectedVersion.
// On success session.Version is expectedVersion+1. A missing document yields
// a NotFound error, a version mismatch a Conflict error.
func (r *SessionRepository) Update(ctx context.Context, session *models.StudySession, expectedVersion int64) error {
	session.Version = expectedVersion + 1
	session.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": session.ID, "version": expectedVersion}, session)
	if err != nil {
		session.Version = expectedVersion
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	session.Version = expectedVersion
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": session.ID})
	if err != nil {
		return fmt.Errorf("failed to check session existence: %w", err)
	}
	if count == 0 {
		return apperr.NotFound("session %s not found", session.ID)
	}
	return apperr.Conflict("session %s was modified concurrently", session.ID)
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("session %s not found", id)
	}
	return nil
}
