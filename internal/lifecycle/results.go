package lifecycle

import (
	"fmt"
	"sort"

	"study-service/internal/analytics"
	"study-service/internal/models"
	"study-service/internal/scoring"
)

// Grade fills score, max score, passing score and the passed flag from the
// per-question points already recorded on the session.
func Grade(s *models.StudySession, scorer *scoring.Scorer) {
	score, maxScore := scorer.FinalScore(s.Questions)
	passing := scorer.PassingScore(maxScore)
	passed := maxScore > 0 && score >= passing

	s.Score = &score
	s.MaxScore = maxScore
	s.PassingScore = &passing
	s.Passed = &passed
}

// BuildResults projects a graded session into its detailed results.
func BuildResults(s *models.StudySession, scorer *scoring.Scorer, enrich *analytics.Enrichment) models.DetailedSessionResults {
	score, maxScore := scorer.FinalScore(s.Questions)
	if s.Score != nil {
		score = *s.Score
	}
	passing := scorer.PassingScore(maxScore)
	if s.PassingScore != nil {
		passing = *s.PassingScore
	}

	results := models.DetailedSessionResults{
		SessionID:      s.ID,
		Score:          score,
		MaxScore:       maxScore,
		PassingScore:   passing,
		Passed:         maxScore > 0 && score >= passing,
		TotalQuestions: len(s.Questions),
		CorrectAnswers: CountCorrect(s.Questions),
		Questions:      make([]models.QuestionResult, 0, len(s.Questions)),
		TopicBreakdown: analytics.TopicBreakdown(s.Questions, enrich),
		CompletedAt:    s.EndTime,
	}
	if s.Passed != nil {
		results.Passed = *s.Passed
	}
	results.ScorePercentage = scoring.SafePercent(score, maxScore)

	perDifficulty := map[models.Difficulty]*models.DifficultyPerformance{}
	difficultyTime := map[models.Difficulty]int{}
	for _, d := range models.Difficulties {
		perDifficulty[d] = &models.DifficultyPerformance{Difficulty: d}
	}

	for _, q := range s.Questions {
		d := models.ParseDifficulty(string(q.Difficulty))
		answered := q.Answered()
		timeSpent := q.TimeSpent
		if timeSpent < 0 {
			timeSpent = 0
		}

		results.Questions = append(results.Questions, models.QuestionResult{
			QuestionID:      q.QuestionID,
			TopicID:         q.TopicID,
			Difficulty:      d,
			UserAnswer:      q.UserAnswer,
			CorrectAnswer:   q.CorrectAnswer,
			IsCorrect:       q.Correct(),
			Answered:        answered,
			Skipped:         q.Skipped,
			MarkedForReview: q.MarkedForReview,
			PointsEarned:    q.PointsEarned,
			MaxPoints:       scorer.MaxPoints(d),
			TimeSpent:       timeSpent,
		})

		perf := perDifficulty[d]
		perf.QuestionsTotal++
		perf.Points += q.PointsEarned
		results.TotalTime += timeSpent

		if q.Skipped {
			results.SkippedQuestions++
		}
		if !answered {
			results.TimeDistribution.Unanswered++
			continue
		}
		results.AnsweredQuestions++
		perf.QuestionsAnswered++
		difficultyTime[d] += timeSpent
		if q.Correct() {
			perf.QuestionsCorrect++
		}

		allotted := scorer.AllottedTime(d)
		switch {
		case timeSpent*2 < allotted:
			results.TimeDistribution.Fast++
		case timeSpent <= allotted:
			results.TimeDistribution.Normal++
		default:
			results.TimeDistribution.Slow++
		}
	}

	results.Accuracy = scoring.SafePercent(float64(results.CorrectAnswers), float64(results.TotalQuestions))
	if results.AnsweredQuestions > 0 {
		results.AverageTime = scoring.Round2(float64(results.TotalTime) / float64(results.AnsweredQuestions))
	}

	results.DifficultyBreakdown = []models.DifficultyPerformance{}
	for _, d := range models.Difficulties {
		perf := perDifficulty[d]
		if perf.QuestionsTotal == 0 {
			continue
		}
		perf.Accuracy = scoring.SafePercent(float64(perf.QuestionsCorrect), float64(perf.QuestionsAnswered))
		if perf.QuestionsAnswered > 0 {
			perf.AverageTime = scoring.Round2(float64(difficultyTime[d]) / float64(perf.QuestionsAnswered))
		}
		perf.Points = scoring.Round2(perf.Points)
		results.DifficultyBreakdown = append(results.DifficultyBreakdown, *perf)
	}
	return results
}

// PerformanceTier maps overall accuracy to a qualitative tier.
func PerformanceTier(accuracy float64) models.PerformanceTier {
	switch {
	case accuracy >= 90:
		return models.TierExcellent
	case accuracy >= 75:
		return models.TierGood
	case accuracy >= 60:
		return models.TierNeedsImprovement
	default:
		return models.TierRequiresFocusedStudy
	}
}

func focusPriority(accuracy float64) models.Priority {
	switch {
	case accuracy < 50:
		return models.PriorityHigh
	case accuracy < 70:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// Recommend builds study recommendations. Focus areas are the topics below
// the target accuracy, weakest first.
func Recommend(results models.DetailedSessionResults, targetAccuracy float64) models.StudyRecommendations {
	recs := models.StudyRecommendations{
		OverallPerformance: PerformanceTier(results.Accuracy),
		ReadyForExam:       results.Accuracy >= targetAccuracy,
		FocusAreas:         []models.FocusArea{},
		NextSteps:          []string{},
	}

	for _, t := range results.TopicBreakdown {
		if t.Accuracy >= targetAccuracy {
			continue
		}
		recs.FocusAreas = append(recs.FocusAreas, models.FocusArea{
			TopicID:        t.TopicID,
			TopicName:      t.TopicName,
			Accuracy:       t.Accuracy,
			TargetAccuracy: targetAccuracy,
			Gap:            scoring.Round2(targetAccuracy - t.Accuracy),
			Priority:       focusPriority(t.Accuracy),
		})
	}
	sort.SliceStable(recs.FocusAreas, func(i, j int) bool {
		return recs.FocusAreas[i].Accuracy < recs.FocusAreas[j].Accuracy
	})

	switch recs.OverallPerformance {
	case models.TierExcellent:
		recs.NextSteps = append(recs.NextSteps, "Schedule the exam or take a full-length timed practice test")
	case models.TierGood:
		recs.NextSteps = append(recs.NextSteps, "Close the remaining gaps, then retake a full session")
	case models.TierNeedsImprovement:
		recs.NextSteps = append(recs.NextSteps, "Review explanations for every missed question before the next session")
	default:
		recs.NextSteps = append(recs.NextSteps, "Work through the study material topic by topic before practicing again")
	}
	for i, area := range recs.FocusAreas {
		if i == 3 {
			break
		}
		recs.NextSteps = append(recs.NextSteps, fmt.Sprintf("Focus on %s (%.1f%%, %.1f points below target)", area.TopicName, area.Accuracy, area.Gap))
	}
	if results.TimeDistribution.Slow > results.TimeDistribution.Fast+results.TimeDistribution.Normal {
		recs.NextSteps = append(recs.NextSteps, "Practice under time pressure; most answers ran past the allotted time")
	}
	if results.SkippedQuestions > 0 {
		recs.NextSteps = append(recs.NextSteps, fmt.Sprintf("Revisit the %d skipped questions", results.SkippedQuestions))
	}
	return recs
}
