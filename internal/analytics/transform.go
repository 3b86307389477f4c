// Package analytics turns study sessions into the aggregates served by the
// reporting endpoints. Everything here is pure; callers supply sessions,
// lookup results and the current time.
package analytics

import (
	"math"
	"time"

	"study-service/internal/models"
	"study-service/internal/scoring"
)

const UnknownTopic = "unknown"

// QuestionMeta is the subset of a bank question needed to place an answer.
type QuestionMeta struct {
	TopicID    string
	Difficulty models.Difficulty
}

// Enrichment carries lookup results resolved ahead of a transform. A nil
// Enrichment, or missing entries, fall back to what the session holds.
type Enrichment struct {
	Questions  map[string]QuestionMeta
	TopicNames map[string]string
}

func (e *Enrichment) topicOf(q models.SessionQuestion) string {
	if q.TopicID != "" {
		return q.TopicID
	}
	if e != nil {
		if meta, ok := e.Questions[q.QuestionID]; ok && meta.TopicID != "" {
			return meta.TopicID
		}
	}
	return UnknownTopic
}

func (e *Enrichment) difficultyOf(q models.SessionQuestion) models.Difficulty {
	if q.Difficulty != "" {
		return models.ParseDifficulty(string(q.Difficulty))
	}
	if e != nil {
		if meta, ok := e.Questions[q.QuestionID]; ok && meta.Difficulty != "" {
			return models.ParseDifficulty(string(meta.Difficulty))
		}
	}
	return models.DifficultyMedium
}

// TopicName resolves a display name, using the id when no name is known.
func (e *Enrichment) TopicName(topicID string) string {
	if e != nil {
		if name, ok := e.TopicNames[topicID]; ok && name != "" {
			return name
		}
	}
	return topicID
}

// hasAnswer reports a non-empty recorded answer; skips do not count.
func hasAnswer(q models.SessionQuestion) bool {
	return len(q.UserAnswer) > 0
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// DurationMinutes is the rounded number of minutes between start and end.
func DurationMinutes(start time.Time, end *time.Time) int {
	if end == nil || start.IsZero() || end.Before(start) {
		return 0
	}
	return int(math.Round(end.Sub(start).Minutes()))
}

// TransformSession flattens a session for aggregation. It never fails:
// absent or malformed fields degrade to zero values.
func TransformSession(s *models.StudySession, enrich *Enrichment) models.SessionAnalyticsData {
	data := models.SessionAnalyticsData{
		TopicBreakdown: []models.SessionTopicAnalyticsData{},
	}
	if s == nil {
		return data
	}

	data.SessionID = s.ID
	data.UserID = s.UserID
	data.ProviderID = s.ProviderID
	data.ExamID = s.ExamID
	data.Status = s.Status
	data.StartTime = s.StartTime
	data.EndTime = s.EndTime
	data.Duration = DurationMinutes(s.StartTime, s.EndTime)

	total := nonNegative(s.TotalQuestions)
	if total == 0 {
		total = len(s.Questions)
	}
	data.QuestionsTotal = total
	data.CorrectAnswers = nonNegative(s.CorrectAnswers)

	for _, q := range s.Questions {
		if !hasAnswer(q) {
			continue
		}
		data.QuestionsAnswered++
		stats := data.DifficultyBreakdown.Stats(enrich.difficultyOf(q))
		stats.Answered++
		if q.Correct() {
			stats.Correct++
		}
	}
	finalizeBreakdown(&data.DifficultyBreakdown)

	// A session that never recorded its size has accuracy 0, even when
	// questions are present.
	data.Accuracy = scoring.SafePercent(float64(data.CorrectAnswers), float64(nonNegative(s.TotalQuestions)))
	if s.Score != nil && !math.IsNaN(*s.Score) {
		data.Score = *s.Score
	} else {
		for _, q := range s.Questions {
			data.Score += q.PointsEarned
		}
		data.Score = scoring.Round2(data.Score)
	}
	if !math.IsNaN(s.MaxScore) && s.MaxScore > 0 {
		data.MaxScore = s.MaxScore
	}
	data.TopicBreakdown = TopicBreakdown(s.Questions, enrich)
	return data
}

// TopicBreakdown groups questions by topic in order of first appearance.
func TopicBreakdown(questions []models.SessionQuestion, enrich *Enrichment) []models.SessionTopicAnalyticsData {
	breakdown := []models.SessionTopicAnalyticsData{}
	index := map[string]int{}
	totalTime := map[string]int{}

	for _, q := range questions {
		topicID := enrich.topicOf(q)
		i, ok := index[topicID]
		if !ok {
			i = len(breakdown)
			index[topicID] = i
			breakdown = append(breakdown, models.SessionTopicAnalyticsData{
				TopicID:   topicID,
				TopicName: enrich.TopicName(topicID),
			})
		}

		entry := &breakdown[i]
		entry.QuestionsTotal++
		entry.TotalScore += q.PointsEarned
		totalTime[topicID] += nonNegative(q.TimeSpent)
		if hasAnswer(q) {
			entry.QuestionsAnswered++
			stats := entry.DifficultyBreakdown.Stats(enrich.difficultyOf(q))
			stats.Answered++
			if q.Correct() {
				entry.QuestionsCorrect++
				stats.Correct++
			}
		}
	}

	for i := range breakdown {
		entry := &breakdown[i]
		entry.Accuracy = scoring.SafePercent(float64(entry.QuestionsCorrect), float64(entry.QuestionsAnswered))
		if entry.QuestionsTotal > 0 {
			entry.AverageTime = scoring.Round2(float64(totalTime[entry.TopicID]) / float64(entry.QuestionsTotal))
		}
		entry.TotalScore = scoring.Round2(entry.TotalScore)
		finalizeBreakdown(&entry.DifficultyBreakdown)
	}
	return breakdown
}

func finalizeBreakdown(b *models.DifficultyBreakdown) {
	for _, d := range models.Difficulties {
		stats := b.Stats(d)
		stats.Accuracy = scoring.SafePercent(float64(stats.Correct), float64(stats.Answered))
	}
}

func addBreakdown(dst *models.DifficultyBreakdown, src models.DifficultyBreakdown) {
	for _, d := range models.Difficulties {
		s := src.Stats(d)
		t := dst.Stats(d)
		t.Answered += s.Answered
		t.Correct += s.Correct
	}
}
