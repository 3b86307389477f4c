package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"study-service/internal/apperr"
	"study-service/internal/models"
	"study-service/internal/repository"
	"study-service/internal/scoring"
)

// CatalogService manages providers, exams and topics. Reads go through the
// cached lookup; writes drop the cached entry.
type CatalogService struct {
	providers ProviderStore
	exams     ExamStore
	topics    TopicStore
	lookup    Lookup
}

func NewCatalogService(providers ProviderStore, exams ExamStore, topics TopicStore, lookup Lookup) *CatalogService {
	return &CatalogService{providers: providers, exams: exams, topics: topics, lookup: lookup}
}

func (s *CatalogService) SaveProvider(ctx context.Context, provider *models.Provider) (*models.Provider, error) {
	provider.Name = strings.TrimSpace(provider.Name)
	if provider.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if provider.ID == "" {
		provider.ID = slug(provider.Name)
	}
	if provider.Status == "" {
		provider.Status = "active"
	}
	if err := s.providers.Upsert(ctx, provider); err != nil {
		return nil, err
	}
	s.lookup.Invalidate(ctx, repository.ProviderKey(provider.ID))
	return provider, nil
}

func (s *CatalogService) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	provider, err := s.lookup.GetProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, apperr.NotFound("provider %s not found", id)
	}
	return provider, nil
}

func (s *CatalogService) ListProviders(ctx context.Context, filter models.CatalogFilter) ([]models.Provider, error) {
	return s.providers.FindAll(ctx, filter)
}

func (s *CatalogService) SaveExam(ctx context.Context, exam *models.Exam) (*models.Exam, error) {
	exam.Name = strings.TrimSpace(exam.Name)
	if exam.Name == "" || exam.ProviderID == "" {
		return nil, apperr.Validation("name and provider_id are required")
	}
	if exam.PassingScore < 0 || exam.PassingScore > 100 {
		return nil, apperr.Validation("passing_score must be a percentage")
	}
	if exam.ID == "" {
		exam.ID = slug(exam.Code)
		if exam.ID == "" {
			exam.ID = slug(exam.Name)
		}
	}
	if err := s.exams.Upsert(ctx, exam); err != nil {
		return nil, err
	}
	s.lookup.Invalidate(ctx, repository.ExamKey(exam.ID))
	return exam, nil
}

func (s *CatalogService) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.lookup.GetExam(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, apperr.NotFound("exam %s not found", id)
	}
	return exam, nil
}

func (s *CatalogService) ListExams(ctx context.Context, filter models.CatalogFilter) ([]models.Exam, error) {
	return s.exams.FindAll(ctx, filter)
}

func (s *CatalogService) SaveTopic(ctx context.Context, topic *models.Topic) (*models.Topic, error) {
	topic.Name = strings.TrimSpace(topic.Name)
	if topic.Name == "" || topic.ExamID == "" {
		return nil, apperr.Validation("name and exam_id are required")
	}
	if topic.ID == "" {
		topic.ID = topic.ExamID + "-" + slug(topic.Name)
	}
	if err := s.topics.Upsert(ctx, topic); err != nil {
		return nil, err
	}
	s.lookup.Invalidate(ctx, repository.TopicKey(topic.ID))
	return topic, nil
}

func (s *CatalogService) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	topic, err := s.lookup.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, apperr.NotFound("topic %s not found", id)
	}
	return topic, nil
}

func (s *CatalogService) ListTopics(ctx context.Context, filter models.CatalogFilter) ([]models.Topic, error) {
	return s.topics.FindAll(ctx, filter)
}

// slug lower-cases s and joins its words with dashes.
func slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

type QuestionService struct {
	questions QuestionStore
	lookup    Lookup
}

func NewQuestionService(questions QuestionStore, lookup Lookup) *QuestionService {
	return &QuestionService{questions: questions, lookup: lookup}
}

func validateQuestion(q *models.Question) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return apperr.Validation("question_text is required")
	}
	if q.ProviderID == "" || q.ExamID == "" {
		return apperr.Validation("provider_id and exam_id are required")
	}
	if len(q.CorrectAnswer) == 0 {
		return apperr.Validation("correct_answer must not be empty")
	}
	if len(q.Options) > 0 {
		letters := map[string]bool{}
		for _, o := range q.Options {
			letters[o.Letter] = true
		}
		for _, a := range q.CorrectAnswer {
			if !letters[a] {
				return apperr.Validation("correct answer %s is not an option", a)
			}
		}
	}
	return nil
}

func normalizeQuestion(q *models.Question) {
	q.CorrectAnswer = scoring.NormalizeAnswer(q.CorrectAnswer)
	for i := range q.Options {
		q.Options[i].Letter = strings.ToUpper(strings.TrimSpace(q.Options[i].Letter))
	}
	q.Difficulty = models.ParseDifficulty(string(q.Difficulty))
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if q.Options == nil {
		q.Options = []models.Option{}
	}
}

func (s *QuestionService) CreateQuestion(ctx context.Context, q *models.Question) (*models.Question, error) {
	normalizeQuestion(q)
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	q, err := s.lookup.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, apperr.NotFound("question %s not found", id)
	}
	return q, nil
}

func (s *QuestionService) ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, int64, error) {
	return s.questions.FindPage(ctx, filter)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, q *models.Question) (*models.Question, error) {
	q.ID = id
	normalizeQuestion(q)
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.questions.Update(ctx, q); err != nil {
		return nil, err
	}
	s.lookup.Invalidate(ctx, repository.QuestionKey(id))
	return q, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}
	s.lookup.Invalidate(ctx, repository.QuestionKey(id))
	return nil
}
