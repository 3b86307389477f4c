package analytics

import (
	"math"
	"sort"
	"time"

	"study-service/internal/models"
	"study-service/internal/scoring"
)

// Settings tunes competency and insight computation.
type Settings struct {
	TargetAccuracy   float64
	ComparisonWindow time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		TargetAccuracy:   80,
		ComparisonWindow: 30 * 24 * time.Hour,
	}
}

const confidenceSampleSize = 50

var masteryLadder = []struct {
	level       models.MasteryLevel
	minAccuracy float64
	minAnswered int
}{
	{models.MasteryExpert, 90, 50},
	{models.MasteryAdvanced, 80, 30},
	{models.MasteryIntermediate, 70, 20},
	{models.MasteryBeginner, 60, 10},
}

// CalculateMasteryLevel walks the ladder from the top; the first tier whose
// accuracy and sample thresholds are both met wins.
func CalculateMasteryLevel(accuracy float64, questionsAnswered int) models.MasteryLevel {
	if questionsAnswered < 5 {
		return models.MasteryNovice
	}
	for _, tier := range masteryLadder {
		if accuracy >= tier.minAccuracy && questionsAnswered >= tier.minAnswered {
			return tier.level
		}
	}
	return models.MasteryNovice
}

// CalculateConfidence combines sample size with consistency of per-session
// accuracy. Result is in [0, 1].
func CalculateConfidence(questionsAnswered int, sessionAccuracies []float64) float64 {
	sample := math.Min(1, float64(questionsAnswered)/confidenceSampleSize)
	consistency := 1 - stddev(sessionAccuracies)/100
	c := sample * consistency
	if c < 0 || math.IsNaN(c) {
		return 0
	}
	if c > 1 {
		return 1
	}
	return scoring.Round2(c)
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// sample is one session's contribution to a competency.
type sample struct {
	at       time.Time
	answered int
	correct  int
}

// ImprovementRate compares accuracy of the latest window against the window
// before it. Either window being empty yields 0.
func ImprovementRate(samples []sample, now time.Time, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	currentStart := now.Add(-window)
	previousStart := now.Add(-2 * window)

	var curAnswered, curCorrect, prevAnswered, prevCorrect int
	for _, s := range samples {
		switch {
		case !s.at.Before(currentStart) && !s.at.After(now):
			curAnswered += s.answered
			curCorrect += s.correct
		case !s.at.Before(previousStart) && s.at.Before(currentStart):
			prevAnswered += s.answered
			prevCorrect += s.correct
		}
	}
	if curAnswered == 0 || prevAnswered == 0 {
		return 0
	}
	current := float64(curCorrect) / float64(curAnswered) * 100
	previous := float64(prevCorrect) / float64(prevAnswered) * 100
	if previous == 0 {
		return 0
	}
	return scoring.Round2((current - previous) / previous * 100)
}

type competencyAcc struct {
	samples    []sample
	accuracies []float64
	answered   int
	correct    int
	breakdown  models.DifficultyBreakdown
	last       time.Time
	exams      map[string]bool
	providerID string
	examID     string
}

func (a *competencyAcc) add(at time.Time, answered, correct int, breakdown models.DifficultyBreakdown) {
	a.samples = append(a.samples, sample{at: at, answered: answered, correct: correct})
	if answered > 0 {
		a.accuracies = append(a.accuracies, float64(correct)/float64(answered)*100)
	}
	a.answered += answered
	a.correct += correct
	addBreakdown(&a.breakdown, breakdown)
	if at.After(a.last) {
		a.last = at
	}
}

func (a *competencyAcc) lastStudied() *time.Time {
	if a.last.IsZero() {
		return nil
	}
	t := a.last
	return &t
}

// TopicCompetencies aggregates per-topic performance across sessions.
// Sorted by accuracy descending, then topic id.
func TopicCompetencies(sessions []models.SessionAnalyticsData, names map[string]string, settings Settings, now time.Time) []models.TopicCompetency {
	accs := map[string]*competencyAcc{}
	for _, s := range sessions {
		for _, tb := range s.TopicBreakdown {
			acc, ok := accs[tb.TopicID]
			if !ok {
				acc = &competencyAcc{providerID: s.ProviderID, examID: s.ExamID}
				accs[tb.TopicID] = acc
			}
			acc.add(s.StartTime, tb.QuestionsAnswered, tb.QuestionsCorrect, tb.DifficultyBreakdown)
		}
	}

	out := make([]models.TopicCompetency, 0, len(accs))
	for topicID, acc := range accs {
		finalizeBreakdown(&acc.breakdown)
		accuracy := scoring.SafePercent(float64(acc.correct), float64(acc.answered))
		name := names[topicID]
		if name == "" {
			name = topicID
		}
		out = append(out, models.TopicCompetency{
			TopicID:             topicID,
			TopicName:           name,
			ProviderID:          acc.providerID,
			ExamID:              acc.examID,
			Accuracy:            accuracy,
			QuestionsAnswered:   acc.answered,
			QuestionsCorrect:    acc.correct,
			Sessions:            len(acc.samples),
			ImprovementRate:     ImprovementRate(acc.samples, now, settings.ComparisonWindow),
			MasteryLevel:        CalculateMasteryLevel(accuracy, acc.answered),
			Confidence:          CalculateConfidence(acc.answered, acc.accuracies),
			DifficultyBreakdown: acc.breakdown,
			LastStudied:         acc.lastStudied(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy > out[j].Accuracy
		}
		return out[i].TopicID < out[j].TopicID
	})
	return out
}

// ProviderCompetencies aggregates per-provider performance across sessions.
func ProviderCompetencies(sessions []models.SessionAnalyticsData, names map[string]string, settings Settings, now time.Time) []models.ProviderCompetency {
	accs := map[string]*competencyAcc{}
	for _, s := range sessions {
		if s.ProviderID == "" {
			continue
		}
		acc, ok := accs[s.ProviderID]
		if !ok {
			acc = &competencyAcc{exams: map[string]bool{}}
			accs[s.ProviderID] = acc
		}
		if s.ExamID != "" {
			acc.exams[s.ExamID] = true
		}
		acc.add(s.StartTime, s.QuestionsAnswered, s.CorrectAnswers, s.DifficultyBreakdown)
	}

	out := make([]models.ProviderCompetency, 0, len(accs))
	for providerID, acc := range accs {
		finalizeBreakdown(&acc.breakdown)
		accuracy := scoring.SafePercent(float64(acc.correct), float64(acc.answered))
		name := names[providerID]
		if name == "" {
			name = providerID
		}
		out = append(out, models.ProviderCompetency{
			ProviderID:          providerID,
			ProviderName:        name,
			Accuracy:            accuracy,
			QuestionsAnswered:   acc.answered,
			QuestionsCorrect:    acc.correct,
			Sessions:            len(acc.samples),
			ExamsStudied:        len(acc.exams),
			ImprovementRate:     ImprovementRate(acc.samples, now, settings.ComparisonWindow),
			MasteryLevel:        CalculateMasteryLevel(accuracy, acc.answered),
			Confidence:          CalculateConfidence(acc.answered, acc.accuracies),
			DifficultyBreakdown: acc.breakdown,
			LastStudied:         acc.lastStudied(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy > out[j].Accuracy
		}
		return out[i].ProviderID < out[j].ProviderID
	})
	return out
}
