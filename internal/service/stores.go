package service

import (
	"context"
	"time"

	"study-service/internal/models"
)

type SessionStore interface {
	Create(ctx context.Context, session *models.StudySession) error
	FindByID(ctx context.Context, id string) (*models.StudySession, error)
	FindByUser(ctx context.Context, userID string, filter models.SessionFilter) ([]*models.StudySession, int64, error)
	FindAllByUser(ctx context.Context, userID string) ([]*models.StudySession, error)
	Update(ctx context.Context, session *models.StudySession, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
}

type QuestionStore interface {
	Create(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, id string) (*models.Question, error)
	FindAll(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)
	FindPage(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int64, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
}

type ProviderStore interface {
	Upsert(ctx context.Context, provider *models.Provider) error
	FindAll(ctx context.Context, filter models.CatalogFilter) ([]models.Provider, error)
}

type ExamStore interface {
	Upsert(ctx context.Context, exam *models.Exam) error
	FindAll(ctx context.Context, filter models.CatalogFilter) ([]models.Exam, error)
}

type TopicStore interface {
	Upsert(ctx context.Context, topic *models.Topic) error
	FindAll(ctx context.Context, filter models.CatalogFilter) ([]models.Topic, error)
}

type GoalStore interface {
	Create(ctx context.Context, goal *models.Goal) error
	FindByID(ctx context.Context, id string) (*models.Goal, error)
	FindByUser(ctx context.Context, userID string, status models.GoalStatus) ([]models.Goal, error)
	UpdateStatus(ctx context.Context, id string, from, to models.GoalStatus) error
	Delete(ctx context.Context, id string) error
}

type SnapshotStore interface {
	Save(ctx context.Context, snapshot *models.AnalyticsSnapshot) error
	Get(ctx context.Context, userID, date string) (*models.AnalyticsSnapshot, error)
	Delete(ctx context.Context, userID, date string) error
}

// Lookup resolves catalog entities, usually through a cache. A missing
// entity is (nil, nil).
type Lookup interface {
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
	GetExam(ctx context.Context, id string) (*models.Exam, error)
	Invalidate(ctx context.Context, keys ...string)
}

type ReportStore interface {
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
