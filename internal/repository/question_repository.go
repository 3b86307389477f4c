package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"study-service/internal/apperr"
	dbmongo "study-service/internal/database/mongo"
	"study-service/internal/models"
)

type QuestionRepository struct {
	collection *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{
		collection: db.Collection(dbmongo.QuestionsCollection),
	}
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, question); err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a question by id, keeping its creation time.
func (r *QuestionRepository) Upsert(ctx context.Context, question *models.Question) error {
	now := time.Now()
	question.UpdatedAt = now
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": question.ID}, question, opts); err != nil {
		return fmt.Errorf("failed to upsert question %s: %w", question.ID, err)
	}
	return nil
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return &question, nil
}

func questionFilter(f models.QuestionFilter) bson.M {
	filter := bson.M{}
	if f.ProviderID != "" {
		filter["provider_id"] = f.ProviderID
	}
	if f.ExamID != "" {
		filter["exam_id"] = f.ExamID
	}
	if len(f.TopicIDs) > 0 {
		filter["topic_id"] = bson.M{"$in": f.TopicIDs}
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}
	if f.Search != "" {
		filter["question_text"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	return filter
}

// FindAll returns every question matching the filter, ignoring pagination.
func (r *QuestionRepository) FindAll(ctx context.Context, f models.QuestionFilter) ([]models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cursor, err := r.collection.Find(ctx, questionFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

// FindPage returns one page of matching questions and the total count.
func (r *QuestionRepository) FindPage(ctx context.Context, f models.QuestionFilter) ([]models.Question, int64, error) {
	filter := questionFilter(f)
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, pageOptions(f.Page, f.Limit, bson.D{{Key: "exam_id", Value: 1}, {Key: "number", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find questions: %w", err)
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, total, nil
}

func (r *QuestionRepository) Update(ctx context.Context, question *models.Question) error {
	question.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"topic_id":       question.TopicID,
		"number":         question.Number,
		"question_text":  question.QuestionText,
		"options":        question.Options,
		"correct_answer": question.CorrectAnswer,
		"explanation":    question.Explanation,
		"difficulty":     question.Difficulty,
		"tags":           question.Tags,
		"updated_at":     question.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": question.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("question %s not found", question.ID)
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFound("question %s not found", id)
	}
	return nil
}
