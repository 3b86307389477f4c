package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"study-service/internal/models"
	"study-service/internal/scoring"
)

// PeriodKey maps a timestamp to its trend bucket. Keys sort chronologically
// as plain strings. Weeks start on Sunday; week 1 holds January 1st.
func PeriodKey(t time.Time, timeframe models.Timeframe) string {
	t = t.UTC()
	switch timeframe {
	case models.TimeframeWeek:
		jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		dayOfYear := t.YearDay() - 1
		week := int(math.Ceil(float64(dayOfYear+int(jan1.Weekday())+1) / 7))
		return fmt.Sprintf("%04d-W%02d", t.Year(), week)
	case models.TimeframeMonth:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
	case models.TimeframeQuarter:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case models.TimeframeYear:
		return fmt.Sprintf("%04d", t.Year())
	default:
		return t.Format("2006-01-02")
	}
}

// FilterSessions keeps sessions inside the query's time range and scope.
func FilterSessions(sessions []models.SessionAnalyticsData, q models.TrendQuery) []models.SessionAnalyticsData {
	out := make([]models.SessionAnalyticsData, 0, len(sessions))
	for _, s := range sessions {
		if q.From != nil && s.StartTime.Before(*q.From) {
			continue
		}
		if q.To != nil && s.StartTime.After(*q.To) {
			continue
		}
		if q.ProviderID != "" && s.ProviderID != q.ProviderID {
			continue
		}
		if q.ExamID != "" && s.ExamID != q.ExamID {
			continue
		}
		out = append(out, s)
	}
	return out
}

// CalculateTrends buckets sessions by period and reduces the metric per
// bucket. Change is the percent delta from the preceding bucket.
func CalculateTrends(sessions []models.SessionAnalyticsData, q models.TrendQuery) []models.TrendData {
	buckets := map[string][]models.SessionAnalyticsData{}
	for _, s := range FilterSessions(sessions, q) {
		key := PeriodKey(s.StartTime, q.Timeframe)
		buckets[key] = append(buckets[key], s)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]float64, len(keys))
	trends := make([]models.TrendData, len(keys))
	for i, k := range keys {
		values[i] = reduceMetric(buckets[k], q.Metric)
		trends[i] = models.TrendData{
			Period:     k,
			Value:      scoring.Round2(values[i]),
			DataPoints: len(buckets[k]),
		}
	}
	for i, change := range PercentChanges(values) {
		trends[i].Change = change
	}
	return trends
}

// PercentChanges returns the change of each value against its predecessor,
// 0 for the first value or when the predecessor is 0.
func PercentChanges(values []float64) []float64 {
	changes := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		changes[i] = scoring.Round2((values[i] - prev) / prev * 100)
	}
	return changes
}

func reduceMetric(sessions []models.SessionAnalyticsData, metric models.TrendMetric) float64 {
	switch metric {
	case models.MetricStudyTime:
		total := 0
		for _, s := range sessions {
			total += s.Duration
		}
		return float64(total)
	case models.MetricSessionCount:
		return float64(len(sessions))
	case models.MetricQuestionsAnswered:
		total := 0
		for _, s := range sessions {
			total += s.QuestionsAnswered
		}
		return float64(total)
	default:
		if len(sessions) == 0 {
			return 0
		}
		sum := 0.0
		for _, s := range sessions {
			sum += s.Accuracy
		}
		return sum / float64(len(sessions))
	}
}

// ValidTimeframe reports whether tf names a known bucket size. Empty means daily.
func ValidTimeframe(tf models.Timeframe) bool {
	switch tf {
	case "", models.TimeframeDay, models.TimeframeWeek, models.TimeframeMonth, models.TimeframeQuarter, models.TimeframeYear:
		return true
	}
	return false
}

// ValidMetric reports whether m names a known metric. Empty means accuracy.
func ValidMetric(m models.TrendMetric) bool {
	switch m {
	case "", models.MetricAccuracy, models.MetricStudyTime, models.MetricSessionCount, models.MetricQuestionsAnswered:
		return true
	}
	return false
}
