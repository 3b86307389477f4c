package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	dbmongo "study-service/internal/database/mongo"
	"study-service/internal/models"
)

type ProviderRepository struct {
	collection *mongo.Collection
}

func NewProviderRepository(db *mongo.Database) *ProviderRepository {
	return &ProviderRepository{collection: db.Collection(dbmongo.ProvidersCollection)}
}

// Upsert inserts or replaces a provider by id.
func (r *ProviderRepository) Upsert(ctx context.Context, provider *models.Provider) error {
	stamp(&provider.CreatedAt, &provider.UpdatedAt)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": provider.ID}, provider, opts); err != nil {
		return fmt.Errorf("failed to save provider: %w", err)
	}
	return nil
}

func (r *ProviderRepository) FindByID(ctx context.Context, id string) (*models.Provider, error) {
	var provider models.Provider
	if err := findOne(ctx, r.collection, id, &provider); err != nil {
		return nil, err
	}
	if provider.ID == "" {
		return nil, nil
	}
	return &provider, nil
}

func (r *ProviderRepository) FindAll(ctx context.Context, f models.CatalogFilter) ([]models.Provider, error) {
	providers := []models.Provider{}
	err := findMany(ctx, r.collection, bson.M{}, f, bson.D{{Key: "name", Value: 1}}, &providers)
	return providers, err
}

type ExamRepository struct {
	collection *mongo.Collection
}

func NewExamRepository(db *mongo.Database) *ExamRepository {
	return &ExamRepository{collection: db.Collection(dbmongo.ExamsCollection)}
}

func (r *ExamRepository) Upsert(ctx context.Context, exam *models.Exam) error {
	stamp(&exam.CreatedAt, &exam.UpdatedAt)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": exam.ID}, exam, opts); err != nil {
		return fmt.Errorf("failed to save exam: %w", err)
	}
	return nil
}

func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	if err := findOne(ctx, r.collection, id, &exam); err != nil {
		return nil, err
	}
	if exam.ID == "" {
		return nil, nil
	}
	return &exam, nil
}

func (r *ExamRepository) FindAll(ctx context.Context, f models.CatalogFilter) ([]models.Exam, error) {
	filter := bson.M{}
	if f.ProviderID != "" {
		filter["provider_id"] = f.ProviderID
	}
	exams := []models.Exam{}
	err := findMany(ctx, r.collection, filter, f, bson.D{{Key: "code", Value: 1}}, &exams)
	return exams, err
}

type TopicRepository struct {
	collection *mongo.Collection
}

func NewTopicRepository(db *mongo.Database) *TopicRepository {
	return &TopicRepository{collection: db.Collection(dbmongo.TopicsCollection)}
}

func (r *TopicRepository) Upsert(ctx context.Context, topic *models.Topic) error {
	stamp(&topic.CreatedAt, &topic.UpdatedAt)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": topic.ID}, topic, opts); err != nil {
		return fmt.Errorf("failed to save topic: %w", err)
	}
	return nil
}

func (r *TopicRepository) FindByID(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	if err := findOne(ctx, r.collection, id, &topic); err != nil {
		return nil, err
	}
	if topic.ID == "" {
		return nil, nil
	}
	return &topic, nil
}

func (r *TopicRepository) FindAll(ctx context.Context, f models.CatalogFilter) ([]models.Topic, error) {
	filter := bson.M{}
	if f.ProviderID != "" {
		filter["provider_id"] = f.ProviderID
	}
	if f.ExamID != "" {
		filter["exam_id"] = f.ExamID
	}
	topics := []models.Topic{}
	err := findMany(ctx, r.collection, filter, f, bson.D{{Key: "_id", Value: 1}}, &topics)
	return topics, err
}

func stamp(createdAt, updatedAt *time.Time) {
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// findOne decodes the document with the given id into dest, leaving dest
// untouched when there is none.
func findOne(ctx context.Context, collection *mongo.Collection, id string, dest any) error {
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find %s %s: %w", collection.Name(), id, err)
	}
	return nil
}

func findMany(ctx context.Context, collection *mongo.Collection, filter bson.M, f models.CatalogFilter, sort bson.D, dest any) error {
	cursor, err := collection.Find(ctx, filter, pageOptions(f.Page, f.Limit, sort))
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", collection.Name(), err)
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection.Name(), err)
	}
	return nil
}
