package analytics

import (
	"math"
	"time"

	"study-service/internal/models"
	"study-service/internal/scoring"
)

// EvaluateGoal measures progress from completed sessions started after the
// goal was created, scoped by the goal's provider, exam and topic.
func EvaluateGoal(goal models.Goal, sessions []models.SessionAnalyticsData, now time.Time) models.GoalProgress {
	var answered, correct, minutes, count int

	for _, s := range sessions {
		if s.Status != models.SessionCompleted || s.StartTime.Before(goal.CreatedAt) {
			continue
		}
		if goal.ProviderID != "" && s.ProviderID != goal.ProviderID {
			continue
		}
		if goal.ExamID != "" && s.ExamID != goal.ExamID {
			continue
		}
		if goal.TopicID != "" {
			found := false
			for _, tb := range s.TopicBreakdown {
				if tb.TopicID == goal.TopicID {
					answered += tb.QuestionsAnswered
					correct += tb.QuestionsCorrect
					found = true
				}
			}
			if !found {
				continue
			}
		} else {
			answered += s.QuestionsAnswered
			correct += s.CorrectAnswers
		}
		minutes += s.Duration
		count++
	}

	var current float64
	switch goal.Type {
	case models.GoalAccuracy:
		current = scoring.SafePercent(float64(correct), float64(answered))
	case models.GoalQuestionsAnswered:
		current = float64(answered)
	case models.GoalStudyTime:
		current = float64(minutes)
	case models.GoalSessionCount:
		current = float64(count)
	}

	progress := models.GoalProgress{
		GoalID:       goal.ID,
		CurrentValue: current,
		TargetValue:  goal.TargetValue,
		Achieved:     goal.TargetValue > 0 && current >= goal.TargetValue,
		Remaining:    scoring.Round2(math.Max(0, goal.TargetValue-current)),
	}
	if goal.TargetValue > 0 {
		progress.Percentage = math.Min(100, scoring.SafePercent(current, goal.TargetValue))
	}
	if goal.Deadline != nil {
		days := int(math.Ceil(goal.Deadline.Sub(now).Hours() / 24))
		if days < 0 {
			days = 0
		}
		progress.DaysLeft = &days
	}
	return progress
}
