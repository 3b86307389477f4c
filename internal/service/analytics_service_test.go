package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-service/internal/analytics"
	"study-service/internal/apperr"
	"study-service/internal/logger"
	"study-service/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func historySession(id string, start time.Time, minutes int, topic string, results ...bool) *models.StudySession {
	end := start.Add(time.Duration(minutes) * time.Minute)
	s := &models.StudySession{
		ID:         id,
		UserID:     "user-1",
		ProviderID: "aws",
		ExamID:     "saa-c03",
		StartTime:  start,
		EndTime:    &end,
		Status:     models.SessionCompleted,
	}
	for i, correct := range results {
		answer := []string{"A"}
		if !correct {
			answer = []string{"B"}
		}
		s.Questions = append(s.Questions, models.SessionQuestion{
			QuestionID:    id + "-" + string(rune('a'+i)),
			TopicID:       topic,
			Difficulty:    models.DifficultyMedium,
			UserAnswer:    answer,
			CorrectAnswer: []string{"A"},
			IsCorrect:     boolPtr(correct),
			TimeSpent:     40,
		})
		if correct {
			s.CorrectAnswers++
		}
	}
	s.TotalQuestions = len(s.Questions)
	return s
}

type analyticsFixture struct {
	svc       *AnalyticsService
	sessions  *fakeSessionStore
	snapshots *fakeSnapshotStore
	lookup    *fakeLookup
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	f := &analyticsFixture{
		sessions:  newFakeSessionStore(),
		snapshots: newFakeSnapshotStore(),
		lookup:    newFakeLookup(),
	}
	f.lookup.topics["iam"] = &models.Topic{ID: "iam", Name: "Identity and Access"}
	f.lookup.providers["aws"] = &models.Provider{ID: "aws", Name: "Amazon Web Services"}

	ctx := context.Background()
	require.NoError(t, f.sessions.Create(ctx, historySession("recent", fixedNow.Add(-24*time.Hour), 20, "iam", true, true, true, false)))
	require.NoError(t, f.sessions.Create(ctx, historySession("older", fixedNow.Add(-40*24*time.Hour), 10, "vpc", true, true)))

	f.svc = NewAnalyticsService(f.sessions, f.snapshots, f.lookup, analytics.Settings{}, logger.Nop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestGetUserAnalyticsCachesSnapshot(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetUserAnalytics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.snapshots.saves)
	assert.Equal(t, models.SnapshotDate(fixedNow), first.Date)
	assert.Equal(t, 2, first.Overview.TotalSessions)
	assert.Equal(t, 6, first.Overview.QuestionsAnswered)
	assert.Equal(t, 5, first.Overview.CorrectAnswers)
	assert.Equal(t, 30, first.Overview.StudyMinutes)

	require.Len(t, first.TopicCompetencies, 2)
	names := map[string]string{}
	for _, tc := range first.TopicCompetencies {
		names[tc.TopicID] = tc.TopicName
	}
	assert.Equal(t, "Identity and Access", names["iam"])
	assert.Equal(t, "vpc", names["vpc"])

	require.Len(t, first.ProviderCompetencies, 1)
	assert.Equal(t, "Amazon Web Services", first.ProviderCompetencies[0].ProviderName)

	second, err := f.svc.GetUserAnalytics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.snapshots.saves)
	assert.Same(t, first, second)
}

func TestGetUserAnalyticsWithoutSnapshotStore(t *testing.T) {
	f := newAnalyticsFixture(t)
	svc := NewAnalyticsService(f.sessions, nil, nil, analytics.DefaultSettings(), nil)
	svc.now = func() time.Time { return fixedNow }

	overview, err := svc.GetOverview(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, overview.CompletedSessions)
}

func TestGetTrends(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()

	trends, err := f.svc.GetTrends(ctx, "user-1", models.TrendQuery{Timeframe: models.TimeframeMonth, Metric: models.MetricAccuracy})
	require.NoError(t, err)
	require.Len(t, trends, 2)
	assert.Equal(t, "2026-01", trends[0].Period)
	assert.Equal(t, 100.0, trends[0].Value)
	assert.Equal(t, 0.0, trends[0].Change)
	assert.Equal(t, "2026-03", trends[1].Period)
	assert.Equal(t, 75.0, trends[1].Value)
	assert.Equal(t, -25.0, trends[1].Change)

	_, err = f.svc.GetTrends(ctx, "user-1", models.TrendQuery{Timeframe: "decade"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.svc.GetTrends(ctx, "user-1", models.TrendQuery{Metric: "score"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	from, to := fixedNow, fixedNow.Add(-time.Hour)
	_, err = f.svc.GetTrends(ctx, "user-1", models.TrendQuery{From: &from, To: &to})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAnalyticsIgnoresUnfinishedSessions(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()

	active := historySession("active", fixedNow.Add(-2*time.Hour), 0, "iam", false)
	active.Status = models.SessionActive
	active.EndTime = nil
	active.Questions = append(active.Questions, models.SessionQuestion{QuestionID: "active-b", TopicID: "iam", CorrectAnswer: []string{"A"}})
	active.TotalQuestions = len(active.Questions)
	require.NoError(t, f.sessions.Create(ctx, active))

	abandoned := historySession("abandoned", fixedNow.Add(-3*time.Hour), 5, "iam", false, false)
	abandoned.Status = models.SessionAbandoned
	require.NoError(t, f.sessions.Create(ctx, abandoned))

	trends, err := f.svc.GetTrends(ctx, "user-1", models.TrendQuery{Timeframe: models.TimeframeMonth, Metric: models.MetricAccuracy})
	require.NoError(t, err)
	require.Len(t, trends, 2)
	assert.Equal(t, 75.0, trends[1].Value)
	assert.Equal(t, 1, trends[1].DataPoints)

	snapshot, err := f.svc.GetUserAnalytics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Overview.TotalSessions)
	assert.Equal(t, 6, snapshot.Overview.QuestionsAnswered)
	assert.Equal(t, 5, snapshot.Overview.CorrectAnswers)
}

func TestGetInsights(t *testing.T) {
	f := newAnalyticsFixture(t)

	insights, err := f.svc.GetInsights(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, insights.Insights)
	assert.NotEmpty(t, insights.Recommendations)
}

func newGoalFixture(t *testing.T) (*GoalService, *fakeGoalStore) {
	t.Helper()
	f := newAnalyticsFixture(t)
	goals := newFakeGoalStore()
	svc := NewGoalService(goals, f.svc, logger.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc, goals
}

func TestCreateGoalValidation(t *testing.T) {
	svc, _ := newGoalFixture(t)
	ctx := context.Background()
	past := fixedNow.Add(-time.Hour)

	cases := []CreateGoalRequest{
		{Type: models.GoalAccuracy, TargetValue: 80},
		{Title: "x", Type: "streak", TargetValue: 1},
		{Title: "x", Type: models.GoalSessionCount, TargetValue: 0},
		{Title: "x", Type: models.GoalAccuracy, TargetValue: 120},
		{Title: "x", Type: models.GoalSessionCount, TargetValue: 1, Deadline: &past},
	}
	for _, req := range cases {
		_, err := svc.CreateGoal(ctx, "user-1", req)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), "%+v", req)
	}
}

func TestGoalProgressFlipsToAchieved(t *testing.T) {
	svc, goals := newGoalFixture(t)
	ctx := context.Background()

	goal := &models.Goal{
		ID:          "g1",
		UserID:      "user-1",
		Title:       "One more session",
		Type:        models.GoalSessionCount,
		TargetValue: 1,
		ProviderID:  "aws",
		Status:      models.GoalActive,
		CreatedAt:   fixedNow.Add(-48 * time.Hour),
	}
	require.NoError(t, goals.Create(ctx, goal))

	progress, err := svc.GetProgress(ctx, "user-1", "g1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, progress.CurrentValue)
	assert.True(t, progress.Achieved)
	assert.Equal(t, 100.0, progress.Percentage)

	stored, err := goals.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, models.GoalAchieved, stored.Status)

	_, err = svc.GetProgress(ctx, "user-2", "g1")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.UpdateStatus(ctx, "user-1", "g1", models.GoalAbandoned)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestGoalLifecycle(t *testing.T) {
	svc, _ := newGoalFixture(t)
	ctx := context.Background()
	deadline := fixedNow.Add(72 * time.Hour)

	goal, err := svc.CreateGoal(ctx, "user-1", CreateGoalRequest{Title: " Accuracy ", Type: models.GoalAccuracy, TargetValue: 90, Deadline: &deadline})
	require.NoError(t, err)
	assert.Equal(t, "Accuracy", goal.Title)
	assert.Equal(t, models.GoalActive, goal.Status)

	progress, err := svc.GetProgress(ctx, "user-1", goal.ID)
	require.NoError(t, err)
	assert.False(t, progress.Achieved)
	require.NotNil(t, progress.DaysLeft)
	assert.Equal(t, 3, *progress.DaysLeft)

	listed, err := svc.ListGoals(ctx, "user-1", models.GoalActive)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = svc.ListGoals(ctx, "user-1", "paused")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	updated, err := svc.UpdateStatus(ctx, "user-1", goal.ID, models.GoalAbandoned)
	require.NoError(t, err)
	assert.Equal(t, models.GoalAbandoned, updated.Status)

	require.NoError(t, svc.DeleteGoal(ctx, "user-1", goal.ID))
	_, err = svc.GetGoal(ctx, "user-1", goal.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
