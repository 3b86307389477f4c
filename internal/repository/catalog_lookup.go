package repository

import (
	"context"

	"study-service/internal/cache"
	"study-service/internal/logger"
	"study-service/internal/models"
)

type questionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Question, error)
}

type topicFinder interface {
	FindByID(ctx context.Context, id string) (*models.Topic, error)
}

type providerFinder interface {
	FindByID(ctx context.Context, id string) (*models.Provider, error)
}

type examFinder interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
}

// CatalogLookup reads questions, topics, providers and exams through the
// injected cache. Entries live for the cache TTL; writers call the matching
// Invalidate method. Cache errors are logged and fall through to the store.
type CatalogLookup struct {
	questions questionFinder
	topics    topicFinder
	providers providerFinder
	exams     examFinder
	cache     cache.Cache
	log       *logger.Logger
}

func NewCatalogLookup(questions questionFinder, topics topicFinder, providers providerFinder, exams examFinder, c cache.Cache, log *logger.Logger) *CatalogLookup {
	return &CatalogLookup{
		questions: questions,
		topics:    topics,
		providers: providers,
		exams:     exams,
		cache:     c,
		log:       log,
	}
}

func QuestionKey(id string) string { return "question:" + id }
func TopicKey(id string) string    { return "topic:" + id }
func ProviderKey(id string) string { return "provider:" + id }
func ExamKey(id string) string     { return "exam:" + id }

// readThrough returns the cached value for key or loads and caches it. load
// returns nil when the entity does not exist; misses are not cached.
func readThrough[T any](ctx context.Context, l *CatalogLookup, key string, load func() (*T, error)) (*T, error) {
	var cached T
	ok, err := l.cache.Get(ctx, key, &cached)
	if err != nil {
		l.log.Warn("catalog cache read failed", "key", key, "error", err)
	}
	if ok {
		return &cached, nil
	}

	value, err := load()
	if err != nil || value == nil {
		return value, err
	}
	if err := l.cache.Set(ctx, key, value, 0); err != nil {
		l.log.Warn("catalog cache write failed", "key", key, "error", err)
	}
	return value, nil
}

func (l *CatalogLookup) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return readThrough(ctx, l, QuestionKey(id), func() (*models.Question, error) {
		return l.questions.FindByID(ctx, id)
	})
}

func (l *CatalogLookup) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	return readThrough(ctx, l, TopicKey(id), func() (*models.Topic, error) {
		return l.topics.FindByID(ctx, id)
	})
}

func (l *CatalogLookup) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	return readThrough(ctx, l, ProviderKey(id), func() (*models.Provider, error) {
		return l.providers.FindByID(ctx, id)
	})
}

func (l *CatalogLookup) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	return readThrough(ctx, l, ExamKey(id), func() (*models.Exam, error) {
		return l.exams.FindByID(ctx, id)
	})
}

// Invalidate drops cached entries for the given keys.
func (l *CatalogLookup) Invalidate(ctx context.Context, keys ...string) {
	if err := l.cache.Invalidate(ctx, keys...); err != nil {
		l.log.Warn("catalog cache invalidate failed", "keys", keys, "error", err)
	}
}
