package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-service/internal/apperr"
	"study-service/internal/dataset"
	"study-service/internal/event"
	"study-service/internal/logger"
	"study-service/internal/models"
)

type memStore[T any] struct {
	items []T
}

func (m *memStore[T]) Upsert(ctx context.Context, item *T) error {
	m.items = append(m.items, *item)
	return nil
}

func (m *memStore[T]) FindAll(ctx context.Context, filter models.CatalogFilter) ([]T, error) {
	return m.items, nil
}

type fakeQuestionStore struct {
	questions map[string]models.Question
}

func (f *fakeQuestionStore) Create(ctx context.Context, q *models.Question) error {
	f.questions[q.ID] = *q
	return nil
}

func (f *fakeQuestionStore) FindByID(ctx context.Context, id string) (*models.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (f *fakeQuestionStore) FindAll(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	out := []models.Question{}
	for _, q := range f.questions {
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeQuestionStore) FindPage(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int64, error) {
	out, _ := f.FindAll(ctx, filter)
	return out, int64(len(out)), nil
}

func (f *fakeQuestionStore) Update(ctx context.Context, q *models.Question) error {
	if _, ok := f.questions[q.ID]; !ok {
		return apperr.NotFound("question %s not found", q.ID)
	}
	f.questions[q.ID] = *q
	return nil
}

func (f *fakeQuestionStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.questions[id]; !ok {
		return apperr.NotFound("question %s not found", id)
	}
	delete(f.questions, id)
	return nil
}

func TestCatalogServiceSaveInvalidatesCache(t *testing.T) {
	lookup := newFakeLookup()
	svc := NewCatalogService(&memStore[models.Provider]{}, &memStore[models.Exam]{}, &memStore[models.Topic]{}, lookup)
	ctx := context.Background()

	provider, err := svc.SaveProvider(ctx, &models.Provider{Name: "Amazon Web Services"})
	require.NoError(t, err)
	assert.Equal(t, "amazon-web-services", provider.ID)
	assert.Equal(t, "active", provider.Status)

	exam, err := svc.SaveExam(ctx, &models.Exam{ProviderID: provider.ID, Code: "SAA-C03", Name: "Solutions Architect Associate"})
	require.NoError(t, err)
	assert.Equal(t, "saa-c03", exam.ID)

	topic, err := svc.SaveTopic(ctx, &models.Topic{ExamID: exam.ID, Name: "Design Resilient Architectures"})
	require.NoError(t, err)
	assert.Equal(t, "saa-c03-design-resilient-architectures", topic.ID)

	assert.Equal(t, []string{"provider:amazon-web-services", "exam:saa-c03", "topic:saa-c03-design-resilient-architectures"}, lookup.invalidated)

	_, err = svc.SaveExam(ctx, &models.Exam{Name: "No provider"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.GetTopic(ctx, "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestQuestionService(t *testing.T) {
	store := &fakeQuestionStore{questions: map[string]models.Question{}}
	lookup := newFakeLookup()
	svc := NewQuestionService(store, lookup)
	ctx := context.Background()

	q := &models.Question{
		ProviderID:    "aws",
		ExamID:        "saa-c03",
		QuestionText:  "Pick two",
		Options:       []models.Option{{Letter: "a", Text: "one"}, {Letter: "B", Text: "two"}, {Letter: "C", Text: "three"}},
		CorrectAnswer: []string{"c", "a", "A"},
		Difficulty:    "HARD",
	}
	created, err := svc.CreateQuestion(ctx, q)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"A", "C"}, created.CorrectAnswer)
	assert.Equal(t, models.DifficultyHard, created.Difficulty)
	assert.Equal(t, "A", created.Options[0].Letter)

	bad := &models.Question{ProviderID: "aws", ExamID: "saa-c03", QuestionText: "x", Options: []models.Option{{Letter: "A"}}, CorrectAnswer: []string{"D"}}
	_, err = svc.CreateQuestion(ctx, bad)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	created.QuestionText = "Pick exactly two"
	_, err = svc.UpdateQuestion(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Contains(t, lookup.invalidated, "question:"+created.ID)

	require.NoError(t, svc.DeleteQuestion(ctx, created.ID))
	err = svc.DeleteQuestion(ctx, created.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

type fakeImporter struct {
	result *dataset.ImportResult
}

func (f *fakeImporter) ImportExam(ctx context.Context, providerID, examID string) (*dataset.ImportResult, error) {
	return f.result, nil
}

func TestDatasetService(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}

	_, err := NewDatasetService(nil, publisher, logger.Nop()).ImportExam(ctx, "aws", "saa-c03")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	svc := NewDatasetService(&fakeImporter{result: &dataset.ImportResult{Objects: 2, Imported: 40, Skipped: 1, Topics: 4}}, publisher, logger.Nop())

	_, err = svc.ImportExam(ctx, "", "saa-c03")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	result, err := svc.ImportExam(ctx, "aws", "saa-c03")
	require.NoError(t, err)
	assert.Equal(t, 40, result.Imported)
	require.Len(t, publisher.datasets, 1)
	assert.Equal(t, event.EventTypeDatasetImported, publisher.datasets[0].EventType)
	assert.Equal(t, 4, publisher.datasets[0].Topics)

	empty := NewDatasetService(&fakeImporter{result: &dataset.ImportResult{}}, publisher, logger.Nop())
	_, err = empty.ImportExam(ctx, "aws", "saa-c03")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
