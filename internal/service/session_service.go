package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"study-service/internal/analytics"
	"study-service/internal/apperr"
	"study-service/internal/event"
	"study-service/internal/lifecycle"
	"study-service/internal/logger"
	"study-service/internal/metrics"
	"study-service/internal/models"
	"study-service/internal/scoring"
	"study-service/internal/selection"
)

type CreateSessionRequest struct {
	UserID         string                        `json:"-"`
	ProviderID     string                        `json:"provider_id"`
	ExamID         string                        `json:"exam_id"`
	TopicIDs       []string                      `json:"topic_ids"`
	QuestionCount  int                           `json:"question_count"`
	IsAdaptive     bool                          `json:"is_adaptive"`
	AdaptiveConfig *models.AdaptiveSessionConfig `json:"adaptive_config,omitempty"`
}

type SubmitAnswerRequest struct {
	QuestionID      string   `json:"question_id"`
	Answer          []string `json:"answer"`
	TimeSpent       int      `json:"time_spent"`
	Skipped         bool     `json:"skipped"`
	MarkedForReview bool     `json:"marked_for_review"`
}

type SessionResults struct {
	Results         models.DetailedSessionResults `json:"results"`
	Recommendations models.StudyRecommendations   `json:"recommendations"`
}

type ReportExport struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionServiceConfig struct {
	Sessions       SessionStore
	Pool           *selection.PoolManager
	Lookup         Lookup
	Snapshots      SnapshotStore
	Reports        ReportStore
	ReportBucket   string
	PresignExpiry  time.Duration
	Publisher      event.Publisher
	Scorer         *scoring.Scorer
	TargetAccuracy float64
	Logger         *logger.Logger
}

type SessionService struct {
	sessions       SessionStore
	pool           *selection.PoolManager
	lookup         Lookup
	snapshots      SnapshotStore
	reports        ReportStore
	reportBucket   string
	presignExpiry  time.Duration
	publisher      event.Publisher
	scorer         *scoring.Scorer
	targetAccuracy float64
	enricher       *enricher
	log            *logger.Logger
	now            func() time.Time
}

func NewSessionService(cfg SessionServiceConfig) *SessionService {
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = scoring.NewScorer(nil)
	}
	target := cfg.TargetAccuracy
	if target <= 0 {
		target = analytics.DefaultSettings().TargetAccuracy
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &SessionService{
		sessions:       cfg.Sessions,
		pool:           cfg.Pool,
		lookup:         cfg.Lookup,
		snapshots:      cfg.Snapshots,
		reports:        cfg.Reports,
		reportBucket:   cfg.ReportBucket,
		presignExpiry:  cfg.PresignExpiry,
		publisher:      cfg.Publisher,
		scorer:         scorer,
		targetAccuracy: target,
		enricher:       &enricher{lookup: cfg.Lookup, log: log},
		log:            log,
		now:            time.Now,
	}
}

func validateAdaptiveConfig(cfg models.AdaptiveSessionConfig) error {
	for _, v := range []float64{cfg.Easy, cfg.Medium, cfg.Hard} {
		if v < 0 || math.IsNaN(v) {
			return apperr.Validation("adaptive config proportions must be non-negative")
		}
	}
	if cfg.Easy+cfg.Medium+cfg.Hard <= 0 {
		return apperr.Validation("adaptive config proportions must not all be zero")
	}
	return nil
}

// CreateSession selects the question set and stores a new active session.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.StudySession, error) {
	if req.ProviderID == "" || req.ExamID == "" {
		return nil, apperr.Validation("provider_id and exam_id are required")
	}
	if req.QuestionCount <= 0 {
		return nil, apperr.Validation("question_count must be positive")
	}

	adaptiveConfig := models.DefaultAdaptiveSessionConfig()
	if req.AdaptiveConfig != nil {
		if err := validateAdaptiveConfig(*req.AdaptiveConfig); err != nil {
			return nil, err
		}
		adaptiveConfig = *req.AdaptiveConfig
	}

	pool, err := s.pool.GetPool(ctx, req.ProviderID, req.ExamID, req.TopicIDs)
	if err != nil {
		return nil, err
	}
	if pool.TotalCount == 0 {
		return nil, apperr.NotFound("no questions available for exam %s", req.ExamID)
	}

	selected := s.pool.SelectSessionQuestions(pool, req.QuestionCount, req.IsAdaptive, adaptiveConfig)

	questions := make([]models.SessionQuestion, 0, len(selected.Questions))
	for _, q := range selected.Questions {
		questions = append(questions, models.SessionQuestion{
			QuestionID:    q.ID,
			TopicID:       q.TopicID,
			Difficulty:    models.ParseDifficulty(string(q.Difficulty)),
			CorrectAnswer: scoring.NormalizeAnswer(q.CorrectAnswer),
		})
	}

	now := s.now()
	session := &models.StudySession{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		ProviderID:     req.ProviderID,
		ExamID:         req.ExamID,
		StartTime:      now,
		Status:         models.SessionActive,
		IsAdaptive:     req.IsAdaptive,
		TotalQuestions: len(questions),
		MaxScore:       s.scorer.MaxScore(questions),
		Questions:      questions,
		CreatedAt:      now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	metrics.SessionsCreated.WithLabelValues(strconv.FormatBool(req.IsAdaptive)).Inc()
	s.publish(ctx, event.EventTypeSessionCreated, session, nil)
	s.log.Info("Session created", "session_id", session.ID, "user_id", session.UserID, "questions", session.TotalQuestions, "adaptive", session.IsAdaptive)
	return session, nil
}

// PoolInfo describes the questions a new session for an exam would draw from.
type PoolInfo struct {
	ProviderID     string                    `json:"provider_id"`
	ExamID         string                    `json:"exam_id"`
	TopicIDs       []string                  `json:"topic_ids,omitempty"`
	TotalQuestions int                       `json:"total_questions"`
	Distribution   map[models.Difficulty]int `json:"distribution"`
}

func (s *SessionService) GetPoolInfo(ctx context.Context, providerID, examID string, topicIDs []string) (*PoolInfo, error) {
	if providerID == "" || examID == "" {
		return nil, apperr.Validation("provider_id and exam_id are required")
	}
	pool, err := s.pool.GetPool(ctx, providerID, examID, topicIDs)
	if err != nil {
		return nil, err
	}
	return &PoolInfo{
		ProviderID:     providerID,
		ExamID:         examID,
		TopicIDs:       topicIDs,
		TotalQuestions: pool.TotalCount,
		Distribution:   s.pool.GetDifficultyDistribution(pool),
	}, nil
}

// load fetches a session visible to userID. Sessions owned by someone else
// are reported as missing.
func (s *SessionService) load(ctx context.Context, userID, id string) (*models.StudySession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.NotFound("session %s not found", id)
	}
	if userID != "" && session.UserID != "" && session.UserID != userID {
		return nil, apperr.NotFound("session %s not found", id)
	}
	return session, nil
}

// save writes updated over the stored version of original.
func (s *SessionService) save(ctx context.Context, original, updated *models.StudySession) error {
	if err := s.sessions.Update(ctx, updated, original.Version); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			metrics.SessionWriteConflicts.Inc()
			s.log.Warn("Session write conflict", "session_id", original.ID, "version", original.Version)
		}
		return err
	}
	return nil
}

func (s *SessionService) GetSession(ctx context.Context, userID, id string) (*models.StudySession, error) {
	return s.load(ctx, userID, id)
}

func (s *SessionService) ListSessions(ctx context.Context, userID string, filter models.SessionFilter) ([]*models.StudySession, int64, error) {
	if filter.Status != "" {
		switch filter.Status {
		case models.SessionActive, models.SessionPaused, models.SessionCompleted, models.SessionAbandoned:
		default:
			return nil, 0, apperr.Validation("unknown session status %q", filter.Status)
		}
	}
	return s.sessions.FindByUser(ctx, userID, filter)
}

func (s *SessionService) DeleteSession(ctx context.Context, userID, id string) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

func validateSubmission(req SubmitAnswerRequest) error {
	if req.QuestionID == "" {
		return apperr.Validation("question_id is required")
	}
	if req.TimeSpent < 0 {
		return apperr.Validation("time_spent must not be negative")
	}
	if !req.Skipped && len(scoring.NormalizeAnswer(req.Answer)) == 0 {
		return apperr.Validation("answer must not be empty")
	}
	return nil
}

// SubmitAnswer grades one answer and stores the updated session. A
// resubmission replaces the earlier answer and its points.
func (s *SessionService) SubmitAnswer(ctx context.Context, userID, id string, req SubmitAnswerRequest) (*models.SubmitAnswerResult, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, apperr.InvalidState("cannot submit answers to inactive session")
	}
	idx := session.QuestionIndex(req.QuestionID)
	if idx < 0 {
		return nil, apperr.NotFound("question not in session")
	}

	now := s.now()
	updated := session.Clone()
	q := &updated.Questions[idx]

	answer := scoring.NormalizeAnswer(req.Answer)
	isCorrect := false
	if req.Skipped {
		answer = []string{}
	} else {
		isCorrect = scoring.IsCorrect(answer, q.CorrectAnswer)
	}

	q.UserAnswer = answer
	q.IsCorrect = &isCorrect
	q.TimeSpent += req.TimeSpent
	q.Skipped = req.Skipped
	q.MarkedForReview = req.MarkedForReview
	q.AnsweredAt = &now
	q.PointsEarned = s.scorer.Points(models.ParseDifficulty(string(q.Difficulty)), q.TimeSpent, isCorrect, req.Skipped)

	updated.CorrectAnswers = lifecycle.CountCorrect(updated.Questions)
	if idx >= updated.CurrentQuestionIndex {
		updated.CurrentQuestionIndex = idx + 1
		if updated.CurrentQuestionIndex > len(updated.Questions) {
			updated.CurrentQuestionIndex = len(updated.Questions)
		}
	}

	if err := s.save(ctx, session, updated); err != nil {
		return nil, err
	}

	recordAnswer(req.Skipped, isCorrect)
	s.publish(ctx, event.EventTypeSessionAnswerSubmitted, updated, q)

	result := &models.SubmitAnswerResult{
		Success:  true,
		Session:  updated,
		Progress: lifecycle.CalculateProgress(updated, now),
	}

	next := lifecycle.NextUnanswered(updated, idx)
	display := s.displayData(ctx, q, next, updated)

	result.Feedback = models.AnswerFeedback{
		QuestionID:    q.QuestionID,
		IsCorrect:     isCorrect,
		UserAnswer:    q.UserAnswer,
		CorrectAnswer: q.CorrectAnswer,
		PointsEarned:  q.PointsEarned,
		MaxPoints:     s.scorer.MaxPoints(models.ParseDifficulty(string(q.Difficulty))),
		TimeSpent:     q.TimeSpent,
		Difficulty:    models.ParseDifficulty(string(q.Difficulty)),
		TopicID:       q.TopicID,
		TopicName:     display.topicName,
		Skipped:       q.Skipped,
	}
	if display.current != nil {
		result.Feedback.Explanation = display.current.Explanation
	}
	if next >= 0 {
		nq := updated.Questions[next]
		result.NextQuestion = &models.NextQuestion{
			QuestionID: nq.QuestionID,
			Index:      next,
			Difficulty: models.ParseDifficulty(string(nq.Difficulty)),
			TopicID:    nq.TopicID,
		}
		if display.next != nil {
			result.NextQuestion.QuestionText = display.next.QuestionText
			result.NextQuestion.Options = display.next.Options
		}
	}
	return result, nil
}

type answerDisplay struct {
	current   *models.Question
	next      *models.Question
	topicName string
}

// displayData fetches the answered question, its topic and the next question
// in parallel. Any of them may be missing; display data is optional.
func (s *SessionService) displayData(ctx context.Context, q *models.SessionQuestion, next int, session *models.StudySession) answerDisplay {
	var display answerDisplay
	if s.lookup == nil {
		return display
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		question, err := s.lookup.GetQuestion(gctx, q.QuestionID)
		if err != nil {
			s.log.Warn("Question lookup failed", "question_id", q.QuestionID, "error", err)
			return nil
		}
		display.current = question
		return nil
	})
	if q.TopicID != "" {
		g.Go(func() error {
			topic, err := s.lookup.GetTopic(gctx, q.TopicID)
			if err != nil {
				s.log.Warn("Topic lookup failed", "topic_id", q.TopicID, "error", err)
				return nil
			}
			if topic != nil {
				display.topicName = topic.Name
			}
			return nil
		})
	}
	if next >= 0 {
		nextID := session.Questions[next].QuestionID
		g.Go(func() error {
			question, err := s.lookup.GetQuestion(gctx, nextID)
			if err != nil {
				s.log.Warn("Question lookup failed", "question_id", nextID, "error", err)
				return nil
			}
			display.next = question
			return nil
		})
	}
	_ = g.Wait()
	return display
}

func recordAnswer(skipped, correct bool) {
	result := "incorrect"
	switch {
	case skipped:
		result = "skipped"
	case correct:
		result = "correct"
	}
	metrics.AnswersSubmitted.WithLabelValues(result).Inc()
}

// CompleteSession grades the session and moves it to completed. A second
// call fails with InvalidState and leaves the stored score untouched.
func (s *SessionService) CompleteSession(ctx context.Context, userID, id string) (*models.CompleteSessionResult, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckTransition(session.Status, models.SessionCompleted); err != nil {
		return nil, err
	}

	now := s.now()
	updated := session.Clone()
	updated.EndTime = &now
	updated.Status = models.SessionCompleted
	updated.CorrectAnswers = lifecycle.CountCorrect(updated.Questions)
	lifecycle.Grade(updated, s.scorer)

	results := lifecycle.BuildResults(updated, s.scorer, s.enricher.enrich(ctx, updated))
	recs := lifecycle.Recommend(results, s.targetAccuracy)

	if err := s.save(ctx, session, updated); err != nil {
		return nil, err
	}

	metrics.SessionsCompleted.WithLabelValues(strconv.FormatBool(results.Passed)).Inc()
	s.publish(ctx, event.EventTypeSessionCompleted, updated, nil)
	s.invalidateSnapshot(ctx, updated.UserID, now)
	s.log.Info("Session completed", "session_id", updated.ID, "score", results.Score, "max_score", results.MaxScore, "passed", results.Passed)

	return &models.CompleteSessionResult{
		Session:         updated,
		Results:         results,
		Recommendations: recs,
	}, nil
}

func (s *SessionService) invalidateSnapshot(ctx context.Context, userID string, now time.Time) {
	if s.snapshots == nil || userID == "" {
		return
	}
	if err := s.snapshots.Delete(ctx, userID, models.SnapshotDate(now)); err != nil {
		s.log.Warn("Failed to invalidate analytics snapshot", "user_id", userID, "error", err)
	}
}

func (s *SessionService) transition(ctx context.Context, userID, id string, to models.SessionStatus, eventType string) (*models.StudySession, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckTransition(session.Status, to); err != nil {
		return nil, err
	}

	updated := session.Clone()
	updated.Status = to
	if to == models.SessionAbandoned {
		now := s.now()
		updated.EndTime = &now
	}
	if err := s.save(ctx, session, updated); err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, updated, nil)
	return updated, nil
}

func (s *SessionService) PauseSession(ctx context.Context, userID, id string) (*models.StudySession, error) {
	return s.transition(ctx, userID, id, models.SessionPaused, event.EventTypeSessionPaused)
}

func (s *SessionService) ResumeSession(ctx context.Context, userID, id string) (*models.StudySession, error) {
	return s.transition(ctx, userID, id, models.SessionActive, event.EventTypeSessionResumed)
}

func (s *SessionService) AbandonSession(ctx context.Context, userID, id string) (*models.StudySession, error) {
	return s.transition(ctx, userID, id, models.SessionAbandoned, event.EventTypeSessionAbandoned)
}

// Navigate moves the current question pointer of an active session.
func (s *SessionService) Navigate(ctx context.Context, userID, id string, index int) (*models.StudySession, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, apperr.InvalidState("cannot navigate an inactive session")
	}
	if index < 0 || index > session.TotalQuestions {
		return nil, apperr.Validation("index must be between 0 and %d", session.TotalQuestions)
	}
	if index == session.CurrentQuestionIndex {
		return session, nil
	}

	updated := session.Clone()
	updated.CurrentQuestionIndex = index
	if err := s.save(ctx, session, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SessionService) GetProgress(ctx context.Context, userID, id string) (*models.SessionProgress, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	progress := lifecycle.CalculateProgress(session, s.now())
	return &progress, nil
}

func (s *SessionService) GetResults(ctx context.Context, userID, id string) (*SessionResults, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.results(ctx, session)
}

func (s *SessionService) results(ctx context.Context, session *models.StudySession) (*SessionResults, error) {
	if session.Status != models.SessionCompleted {
		return nil, apperr.InvalidState("session %s is not completed", session.ID)
	}

	results := lifecycle.BuildResults(session, s.scorer, s.enricher.enrich(ctx, session))
	return &SessionResults{
		Results:         results,
		Recommendations: lifecycle.Recommend(results, s.targetAccuracy),
	}, nil
}

func (s *SessionService) GetSessionAnalytics(ctx context.Context, userID, id string) (*models.SessionAnalyticsData, error) {
	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	data := analytics.TransformSession(session, s.enricher.enrich(ctx, session))
	return &data, nil
}

// ReportKey is the object key of a session's exported report.
func ReportKey(userID, sessionID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return fmt.Sprintf("reports/%s/%s.json", userID, sessionID)
}

// ExportReport stores the session's results in object storage and returns a
// presigned download URL.
func (s *SessionService) ExportReport(ctx context.Context, userID, id string) (*ReportExport, error) {
	if s.reports == nil {
		return nil, apperr.InvalidState("report storage is not configured")
	}

	session, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	results, err := s.results(ctx, session)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	key := ReportKey(session.UserID, session.ID)
	if err := s.reports.PutObject(ctx, s.reportBucket, key, data, "application/json"); err != nil {
		return nil, err
	}

	url, err := s.reports.PresignedURL(ctx, s.reportBucket, key, s.presignExpiry)
	if err != nil {
		return nil, err
	}

	return &ReportExport{
		Bucket:    s.reportBucket,
		Key:       key,
		URL:       url,
		ExpiresAt: s.now().Add(s.presignExpiry),
	}, nil
}

func (s *SessionService) publish(ctx context.Context, eventType string, session *models.StudySession, q *models.SessionQuestion) {
	if s.publisher == nil {
		return
	}
	e := event.NewSessionEvent(eventType, session, s.now().Unix())
	if q != nil {
		e.QuestionID = q.QuestionID
		e.IsCorrect = q.IsCorrect
		e.PointsEarned = q.PointsEarned
	}
	if err := s.publisher.PublishSessionEvent(ctx, e); err != nil {
		s.log.Warn("Failed to publish session event", "event_type", eventType, "session_id", session.ID, "error", err)
	}
}
