package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-service/internal/apperr"
	"study-service/internal/event"
	"study-service/internal/logger"
	"study-service/internal/models"
	"study-service/internal/selection"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func bankQuestions() []models.Question {
	return []models.Question{
		{ID: "q-easy", ProviderID: "aws", ExamID: "saa-c03", TopicID: "iam", Difficulty: models.DifficultyEasy, CorrectAnswer: []string{"A"}, QuestionText: "Easy one", Explanation: "because"},
		{ID: "q-medium", ProviderID: "aws", ExamID: "saa-c03", TopicID: "vpc", Difficulty: models.DifficultyMedium, CorrectAnswer: []string{"A"}, QuestionText: "Medium one"},
		{ID: "q-hard", ProviderID: "aws", ExamID: "saa-c03", TopicID: "vpc", Difficulty: models.DifficultyHard, CorrectAnswer: []string{"A"}, QuestionText: "Hard one"},
	}
}

type sessionFixture struct {
	svc       *SessionService
	store     *fakeSessionStore
	lookup    *fakeLookup
	snapshots *fakeSnapshotStore
	publisher *recordingPublisher
	reports   *fakeReports
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	bank := bankQuestions()
	lookup := newFakeLookup()
	for i := range bank {
		lookup.questions[bank[i].ID] = &bank[i]
	}
	lookup.topics["iam"] = &models.Topic{ID: "iam", Name: "Identity and Access"}
	lookup.topics["vpc"] = &models.Topic{ID: "vpc", Name: "Networking"}

	f := &sessionFixture{
		store:     newFakeSessionStore(),
		lookup:    lookup,
		snapshots: newFakeSnapshotStore(),
		publisher: &recordingPublisher{},
		reports:   &fakeReports{objects: map[string][]byte{}},
	}
	pool := selection.NewPoolManager(&fakeQuestionSource{questions: bank}, selection.NewWeightedSelectorWithRand(rand.New(rand.NewSource(7))))
	f.svc = NewSessionService(SessionServiceConfig{
		Sessions:      f.store,
		Pool:          pool,
		Lookup:        lookup,
		Snapshots:     f.snapshots,
		Reports:       f.reports,
		ReportBucket:  "study-reports",
		PresignExpiry: time.Hour,
		Publisher:     f.publisher,
		Logger:        logger.Nop(),
	})
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *sessionFixture) create(t *testing.T) *models.StudySession {
	t.Helper()
	s, err := f.svc.CreateSession(context.Background(), CreateSessionRequest{
		UserID:        "user-1",
		ProviderID:    "aws",
		ExamID:        "saa-c03",
		QuestionCount: 3,
	})
	require.NoError(t, err)
	return s
}

func countCorrect(s *models.StudySession) int {
	n := 0
	for _, q := range s.Questions {
		if q.IsCorrect != nil && *q.IsCorrect {
			n++
		}
	}
	return n
}

func TestSessionEndToEnd(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	s := f.create(t)
	require.Len(t, s.Questions, 3)
	assert.Equal(t, models.SessionActive, s.Status)
	assert.Equal(t, 3, s.TotalQuestions)

	for _, q := range s.Questions {
		res, err := f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: q.QuestionID, Answer: []string{"A"}, TimeSpent: 30})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, res.Feedback.IsCorrect)
		assert.Equal(t, countCorrect(res.Session), res.Session.CorrectAnswers)
	}

	stored := f.store.stored(s.ID)
	assert.Equal(t, 3, stored.CorrectAnswers)

	points := map[models.Difficulty]float64{}
	for _, q := range stored.Questions {
		points[q.Difficulty] = q.PointsEarned
	}
	assert.Less(t, points[models.DifficultyEasy], points[models.DifficultyMedium])
	assert.Less(t, points[models.DifficultyMedium], points[models.DifficultyHard])

	done, err := f.svc.CompleteSession(ctx, "user-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, done.Session.Status)
	require.NotNil(t, done.Session.Passed)
	assert.True(t, *done.Session.Passed)
	assert.True(t, done.Results.Passed)
	assert.Equal(t, 37.0, done.Results.Score)
	assert.Equal(t, 100.0, done.Results.Accuracy)

	total := 0
	for _, tb := range done.Results.TopicBreakdown {
		total += tb.QuestionsTotal
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, models.TierExcellent, done.Recommendations.OverallPerformance)
	assert.True(t, done.Recommendations.ReadyForExam)
	assert.Empty(t, done.Recommendations.FocusAreas)

	assert.Equal(t, event.EventTypeSessionCreated, f.publisher.sessions[0])
	assert.Equal(t, event.EventTypeSessionCompleted, f.publisher.sessions[len(f.publisher.sessions)-1])
}

func TestSubmitAnswerFeedbackAndNextQuestion(t *testing.T) {
	f := newSessionFixture(t)
	s := f.create(t)
	first := s.Questions[0]

	res, err := f.svc.SubmitAnswer(context.Background(), "user-1", s.ID, SubmitAnswerRequest{QuestionID: first.QuestionID, Answer: []string{" a "}, TimeSpent: 20})
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, res.Feedback.UserAnswer)
	assert.Equal(t, first.TopicID, res.Feedback.TopicID)
	assert.NotEmpty(t, res.Feedback.TopicName)
	assert.Equal(t, 1, res.Progress.AnsweredQuestions)
	assert.Equal(t, 100.0, res.Progress.Accuracy)
	assert.Equal(t, 1, res.Session.CurrentQuestionIndex)
	require.NotNil(t, res.NextQuestion)
	assert.Equal(t, 1, res.NextQuestion.Index)
	assert.Equal(t, s.Questions[1].QuestionID, res.NextQuestion.QuestionID)
	assert.NotEmpty(t, res.NextQuestion.QuestionText)
}

func TestResubmissionDoesNotDoubleCount(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.create(t)
	qid := s.Questions[0].QuestionID

	res, err := f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: qid, Answer: []string{"A"}, TimeSpent: 30})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Session.CorrectAnswers)

	res, err = f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: qid, Answer: []string{"A"}, TimeSpent: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Session.CorrectAnswers)

	res, err = f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: qid, Answer: []string{"B"}, TimeSpent: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Session.CorrectAnswers)
	assert.Equal(t, 0.0, res.Feedback.PointsEarned)
	assert.Equal(t, 40, res.Feedback.TimeSpent)

	stored := f.store.stored(s.ID)
	assert.Equal(t, countCorrect(stored), stored.CorrectAnswers)
}

func TestSubmitSkippedAnswer(t *testing.T) {
	f := newSessionFixture(t)
	s := f.create(t)

	res, err := f.svc.SubmitAnswer(context.Background(), "user-1", s.ID, SubmitAnswerRequest{QuestionID: s.Questions[0].QuestionID, Skipped: true, TimeSpent: 3})
	require.NoError(t, err)

	q := res.Session.Questions[0]
	assert.Equal(t, []string{}, q.UserAnswer)
	require.NotNil(t, q.IsCorrect)
	assert.False(t, *q.IsCorrect)
	assert.Equal(t, 0.0, q.PointsEarned)
	assert.True(t, res.Feedback.Skipped)
	assert.Equal(t, 1, res.Progress.AnsweredQuestions)
}

func TestSubmitAnswerPreconditions(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.create(t)
	qid := s.Questions[0].QuestionID

	_, err := f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: qid, Answer: []string{"A"}, TimeSpent: -1})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: qid, Answer: []string{" "}})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.svc.SubmitAnswer(ctx, "user-1", "missing", SubmitAnswerRequest{QuestionID: qid, Answer: []string{"A"}})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.svc.SubmitAnswer(ctx, "user-2", s.ID, SubmitAnswerRequest{QuestionID: qid, Answer: []string{"A"}})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: "q-other", Answer: []string{"A"}})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), "question not in session")

	_, err = f.svc.PauseSession(ctx, "user-1", s.ID)
	require.NoError(t, err)
	_, err = f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: qid, Answer: []string{"A"}})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
	assert.Contains(t, err.Error(), "inactive session")

	stored := f.store.stored(s.ID)
	assert.Nil(t, stored.Questions[0].UserAnswer)
}

func TestSubmitAnswerConflict(t *testing.T) {
	f := newSessionFixture(t)
	s := f.create(t)

	f.store.afterFind = func(id string) {
		f.store.mu.Lock()
		f.store.sessions[id].Version++
		f.store.mu.Unlock()
	}

	_, err := f.svc.SubmitAnswer(context.Background(), "user-1", s.ID, SubmitAnswerRequest{QuestionID: s.Questions[0].QuestionID, Answer: []string{"A"}, TimeSpent: 10})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	stored := f.store.stored(s.ID)
	assert.Nil(t, stored.Questions[0].UserAnswer)
	assert.Equal(t, 0, stored.CorrectAnswers)
}

func TestCompleteSessionIsNotRepeatable(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.create(t)

	_, err := f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: s.Questions[0].QuestionID, Answer: []string{"A"}, TimeSpent: 10})
	require.NoError(t, err)

	first, err := f.svc.CompleteSession(ctx, "user-1", s.ID)
	require.NoError(t, err)
	updates := f.store.updates

	_, err = f.svc.CompleteSession(ctx, "user-1", s.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	stored := f.store.stored(s.ID)
	assert.Equal(t, updates, f.store.updates)
	require.NotNil(t, stored.Score)
	assert.Equal(t, *first.Session.Score, *stored.Score)
}

func TestCompleteSessionInvalidatesSnapshot(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.create(t)

	require.NoError(t, f.snapshots.Save(ctx, &models.AnalyticsSnapshot{UserID: "user-1", Date: models.SnapshotDate(fixedNow)}))

	_, err := f.svc.CompleteSession(ctx, "user-1", s.ID)
	require.NoError(t, err)

	snapshot, err := f.snapshots.Get(ctx, "user-1", models.SnapshotDate(fixedNow))
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestSessionTransitions(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.create(t)

	paused, err := f.svc.PauseSession(ctx, "user-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPaused, paused.Status)

	_, err = f.svc.PauseSession(ctx, "user-1", s.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	_, err = f.svc.Navigate(ctx, "user-1", s.ID, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	resumed, err := f.svc.ResumeSession(ctx, "user-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, resumed.Status)

	moved, err := f.svc.Navigate(ctx, "user-1", s.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, moved.CurrentQuestionIndex)

	_, err = f.svc.Navigate(ctx, "user-1", s.ID, 4)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	abandoned, err := f.svc.AbandonSession(ctx, "user-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbandoned, abandoned.Status)
	assert.NotNil(t, abandoned.EndTime)

	_, err = f.svc.CompleteSession(ctx, "user-1", s.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
	_, err = f.svc.ResumeSession(ctx, "user-1", s.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestCreateSessionValidation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateSession(ctx, CreateSessionRequest{ProviderID: "aws", ExamID: "saa-c03"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.svc.CreateSession(ctx, CreateSessionRequest{ProviderID: "aws", ExamID: "unknown", QuestionCount: 5})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.svc.CreateSession(ctx, CreateSessionRequest{
		ProviderID:     "aws",
		ExamID:         "saa-c03",
		QuestionCount:  2,
		IsAdaptive:     true,
		AdaptiveConfig: &models.AdaptiveSessionConfig{Easy: -1, Medium: 1},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	s, err := f.svc.CreateSession(ctx, CreateSessionRequest{ProviderID: "aws", ExamID: "saa-c03", QuestionCount: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalQuestions)
	assert.Equal(t, 37.0, s.MaxScore)
}

func TestResultsAndReport(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.create(t)

	_, err := f.svc.GetResults(ctx, "user-1", s.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	_, err = f.svc.SubmitAnswer(ctx, "user-1", s.ID, SubmitAnswerRequest{QuestionID: s.Questions[0].QuestionID, Answer: []string{"C"}, TimeSpent: 10})
	require.NoError(t, err)
	_, err = f.svc.CompleteSession(ctx, "user-1", s.ID)
	require.NoError(t, err)

	results, err := f.svc.GetResults(ctx, "user-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, results.Results.Score)
	assert.False(t, results.Results.Passed)
	assert.NotEmpty(t, results.Recommendations.FocusAreas)

	report, err := f.svc.ExportReport(ctx, "user-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, "reports/user-1/"+s.ID+".json", report.Key)
	assert.Contains(t, report.URL, report.Key)
	assert.Equal(t, fixedNow.Add(time.Hour), report.ExpiresAt)
	assert.Contains(t, f.reports.objects, "study-reports/"+report.Key)
}

func TestSessionAnalyticsUsesTopicNames(t *testing.T) {
	f := newSessionFixture(t)
	s := f.create(t)

	data, err := f.svc.GetSessionAnalytics(context.Background(), "user-1", s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, data.QuestionsTotal)
	for _, tb := range data.TopicBreakdown {
		assert.NotEqual(t, tb.TopicID, tb.TopicName)
	}
}

func TestDeleteSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	s := f.create(t)

	assert.True(t, apperr.IsKind(f.svc.DeleteSession(ctx, "user-2", s.ID), apperr.KindNotFound))
	require.NoError(t, f.svc.DeleteSession(ctx, "user-1", s.ID))
	_, err := f.svc.GetSession(ctx, "user-1", s.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetPoolInfo(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	info, err := f.svc.GetPoolInfo(ctx, "aws", "saa-c03", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, info.TotalQuestions)
	assert.Equal(t, map[models.Difficulty]int{
		models.DifficultyEasy:   1,
		models.DifficultyMedium: 1,
		models.DifficultyHard:   1,
	}, info.Distribution)

	empty, err := f.svc.GetPoolInfo(ctx, "aws", "dva-c02", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalQuestions)
	assert.Equal(t, 0, empty.Distribution[models.DifficultyHard])

	_, err = f.svc.GetPoolInfo(ctx, "", "saa-c03", nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
