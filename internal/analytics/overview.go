package analytics

import (
	"fmt"
	"sort"
	"time"

	"study-service/internal/models"
	"study-service/internal/scoring"
)

// BuildOverview summarizes a user's whole session history.
func BuildOverview(sessions []models.SessionAnalyticsData, now time.Time) models.PerformanceOverview {
	var overview models.PerformanceOverview
	overview.TotalSessions = len(sessions)

	scoreSum := 0.0
	scored := 0
	var last time.Time
	days := map[string]bool{}

	for _, s := range sessions {
		if s.Status == models.SessionCompleted {
			overview.CompletedSessions++
			if s.MaxScore > 0 {
				scoreSum += s.Score / s.MaxScore * 100
				scored++
			}
		}
		overview.QuestionsAnswered += s.QuestionsAnswered
		overview.CorrectAnswers += s.CorrectAnswers
		overview.StudyMinutes += s.Duration
		if s.StartTime.IsZero() {
			continue
		}
		days[PeriodKey(s.StartTime, models.TimeframeDay)] = true
		if s.StartTime.After(last) {
			last = s.StartTime
		}
	}

	overview.OverallAccuracy = scoring.SafePercent(float64(overview.CorrectAnswers), float64(overview.QuestionsAnswered))
	if scored > 0 {
		overview.AverageScore = scoring.Round2(scoreSum / float64(scored))
	}
	overview.StudyStreakDays = StudyStreak(days, now)
	if !last.IsZero() {
		overview.LastStudyDate = &last
	}
	return overview
}

// StudyStreak counts consecutive study days ending today, or yesterday when
// nothing has been studied yet today.
func StudyStreak(days map[string]bool, now time.Time) int {
	day := now.UTC()
	if !days[PeriodKey(day, models.TimeframeDay)] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for days[PeriodKey(day, models.TimeframeDay)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

const (
	strengthAccuracy   = 85.0
	strengthMinAnswers = 10
	weaknessAccuracy   = 60.0
	weaknessMinAnswers = 5
	trendThreshold     = 10.0
	streakThreshold    = 3
)

// GenerateInsights derives strengths, weaknesses, trend and streak insights.
func GenerateInsights(topics []models.TopicCompetency, providers []models.ProviderCompetency, overview models.PerformanceOverview) []models.LearningInsight {
	insights := []models.LearningInsight{}

	for _, t := range topics {
		switch {
		case t.Accuracy >= strengthAccuracy && t.QuestionsAnswered >= strengthMinAnswers:
			insights = append(insights, models.LearningInsight{
				Type:        models.InsightStrength,
				Title:       fmt.Sprintf("Strong in %s", t.TopicName),
				Description: fmt.Sprintf("%.1f%% accuracy over %d questions", t.Accuracy, t.QuestionsAnswered),
				TopicID:     t.TopicID,
				Value:       t.Accuracy,
				Priority:    models.PriorityLow,
			})
		case t.Accuracy < weaknessAccuracy && t.QuestionsAnswered >= weaknessMinAnswers:
			priority := models.PriorityMedium
			if t.Accuracy < 40 {
				priority = models.PriorityHigh
			}
			insights = append(insights, models.LearningInsight{
				Type:        models.InsightWeakness,
				Title:       fmt.Sprintf("Needs work: %s", t.TopicName),
				Description: fmt.Sprintf("%.1f%% accuracy over %d questions", t.Accuracy, t.QuestionsAnswered),
				TopicID:     t.TopicID,
				Value:       t.Accuracy,
				Priority:    priority,
			})
		}
	}

	for _, p := range providers {
		switch {
		case p.ImprovementRate >= trendThreshold:
			insights = append(insights, models.LearningInsight{
				Type:        models.InsightImproving,
				Title:       fmt.Sprintf("Improving on %s", p.ProviderName),
				Description: fmt.Sprintf("Accuracy up %.1f%% on the previous period", p.ImprovementRate),
				ProviderID:  p.ProviderID,
				Value:       p.ImprovementRate,
				Priority:    models.PriorityLow,
			})
		case p.ImprovementRate <= -trendThreshold:
			insights = append(insights, models.LearningInsight{
				Type:        models.InsightDeclining,
				Title:       fmt.Sprintf("Slipping on %s", p.ProviderName),
				Description: fmt.Sprintf("Accuracy down %.1f%% on the previous period", -p.ImprovementRate),
				ProviderID:  p.ProviderID,
				Value:       p.ImprovementRate,
				Priority:    models.PriorityHigh,
			})
		}
	}

	if overview.StudyStreakDays >= streakThreshold {
		insights = append(insights, models.LearningInsight{
			Type:        models.InsightStreak,
			Title:       fmt.Sprintf("%d day study streak", overview.StudyStreakDays),
			Description: "Keep the daily habit going",
			Value:       float64(overview.StudyStreakDays),
			Priority:    models.PriorityLow,
		})
	}
	return insights
}

// GenerateRecommendations turns competencies into short study suggestions.
func GenerateRecommendations(topics []models.TopicCompetency, overview models.PerformanceOverview, settings Settings) []string {
	recs := []string{}
	if overview.TotalSessions == 0 {
		return append(recs, "Start a practice session to build your baseline")
	}

	weak := make([]models.TopicCompetency, 0)
	for _, t := range topics {
		if t.QuestionsAnswered > 0 && t.Accuracy < settings.TargetAccuracy {
			weak = append(weak, t)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Accuracy < weak[j].Accuracy })
	for i, t := range weak {
		if i == 3 {
			break
		}
		recs = append(recs, fmt.Sprintf("Review %s: %.1f%% against a %.0f%% target", t.TopicName, t.Accuracy, settings.TargetAccuracy))
	}

	for _, t := range topics {
		if t.QuestionsAnswered > 0 && t.QuestionsAnswered < strengthMinAnswers {
			recs = append(recs, fmt.Sprintf("Answer more %s questions to get a reliable score", t.TopicName))
			break
		}
	}

	if overview.StudyStreakDays == 0 {
		recs = append(recs, "Study a little every day to build a streak")
	}
	if overview.OverallAccuracy >= settings.TargetAccuracy && len(weak) == 0 {
		recs = append(recs, "Take a full-length practice exam to confirm readiness")
	}
	return recs
}
