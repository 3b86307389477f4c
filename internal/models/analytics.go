package models

import "time"

// SessionTopicAnalyticsData is the per-topic rollup of one session.
type SessionTopicAnalyticsData struct {
	TopicID             string              `bson:"topic_id" json:"topic_id"`
	TopicName           string              `bson:"topic_name" json:"topic_name"`
	QuestionsTotal      int                 `bson:"questions_total" json:"questions_total"`
	QuestionsAnswered   int                 `bson:"questions_answered" json:"questions_answered"`
	QuestionsCorrect    int                 `bson:"questions_correct" json:"questions_correct"`
	Accuracy            float64             `bson:"accuracy" json:"accuracy"`
	AverageTime         float64             `bson:"average_time" json:"average_time"`
	TotalScore          float64             `bson:"total_score" json:"total_score"`
	DifficultyBreakdown DifficultyBreakdown `bson:"difficulty_breakdown" json:"difficulty_breakdown"`
}

type DifficultyStats struct {
	Answered int     `bson:"answered" json:"answered"`
	Correct  int     `bson:"correct" json:"correct"`
	Accuracy float64 `bson:"accuracy" json:"accuracy"`
}

type DifficultyBreakdown struct {
	Easy   DifficultyStats `bson:"easy" json:"easy"`
	Medium DifficultyStats `bson:"medium" json:"medium"`
	Hard   DifficultyStats `bson:"hard" json:"hard"`
}

// Stats returns a pointer to the bucket for d.
func (b *DifficultyBreakdown) Stats(d Difficulty) *DifficultyStats {
	switch d {
	case DifficultyEasy:
		return &b.Easy
	case DifficultyHard:
		return &b.Hard
	default:
		return &b.Medium
	}
}

// SessionAnalyticsData is a flattened StudySession used by aggregation.
type SessionAnalyticsData struct {
	SessionID           string                      `json:"session_id"`
	UserID              string                      `json:"user_id,omitempty"`
	ProviderID          string                      `json:"provider_id"`
	ExamID              string                      `json:"exam_id"`
	Status              SessionStatus               `json:"status"`
	StartTime           time.Time                   `json:"start_time"`
	EndTime             *time.Time                  `json:"end_time,omitempty"`
	Duration            int                         `json:"duration"`
	QuestionsTotal      int                         `json:"questions_total"`
	QuestionsAnswered   int                         `json:"questions_answered"`
	CorrectAnswers      int                         `json:"correct_answers"`
	Accuracy            float64                     `json:"accuracy"`
	Score               float64                     `json:"score"`
	MaxScore            float64                     `json:"max_score"`
	TopicBreakdown      []SessionTopicAnalyticsData `json:"topic_breakdown"`
	DifficultyBreakdown DifficultyBreakdown         `json:"difficulty_breakdown"`
}

type Timeframe string

const (
	TimeframeDay     Timeframe = "day"
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
	TimeframeQuarter Timeframe = "quarter"
	TimeframeYear    Timeframe = "year"
)

type TrendMetric string

const (
	MetricAccuracy          TrendMetric = "accuracy"
	MetricStudyTime         TrendMetric = "studyTime"
	MetricSessionCount      TrendMetric = "sessionCount"
	MetricQuestionsAnswered TrendMetric = "questionsAnswered"
)

type TrendData struct {
	Period     string  `bson:"period" json:"period"`
	Value      float64 `bson:"value" json:"value"`
	Change     float64 `bson:"change" json:"change"`
	DataPoints int     `bson:"data_points" json:"data_points"`
}

type TrendQuery struct {
	Timeframe  Timeframe
	Metric     TrendMetric
	From       *time.Time
	To         *time.Time
	ProviderID string
	ExamID     string
}

type MasteryLevel string

const (
	MasteryNovice       MasteryLevel = "novice"
	MasteryBeginner     MasteryLevel = "beginner"
	MasteryIntermediate MasteryLevel = "intermediate"
	MasteryAdvanced     MasteryLevel = "advanced"
	MasteryExpert       MasteryLevel = "expert"
)

type TopicCompetency struct {
	TopicID             string              `bson:"topic_id" json:"topic_id"`
	TopicName           string              `bson:"topic_name" json:"topic_name"`
	ProviderID          string              `bson:"provider_id" json:"provider_id"`
	ExamID              string              `bson:"exam_id" json:"exam_id"`
	Accuracy            float64             `bson:"accuracy" json:"accuracy"`
	QuestionsAnswered   int                 `bson:"questions_answered" json:"questions_answered"`
	QuestionsCorrect    int                 `bson:"questions_correct" json:"questions_correct"`
	Sessions            int                 `bson:"sessions" json:"sessions"`
	ImprovementRate     float64             `bson:"improvement_rate" json:"improvement_rate"`
	MasteryLevel        MasteryLevel        `bson:"mastery_level" json:"mastery_level"`
	Confidence          float64             `bson:"confidence" json:"confidence"`
	DifficultyBreakdown DifficultyBreakdown `bson:"difficulty_breakdown" json:"difficulty_breakdown"`
	LastStudied         *time.Time          `bson:"last_studied,omitempty" json:"last_studied,omitempty"`
}

type ProviderCompetency struct {
	ProviderID          string              `bson:"provider_id" json:"provider_id"`
	ProviderName        string              `bson:"provider_name" json:"provider_name"`
	Accuracy            float64             `bson:"accuracy" json:"accuracy"`
	QuestionsAnswered   int                 `bson:"questions_answered" json:"questions_answered"`
	QuestionsCorrect    int                 `bson:"questions_correct" json:"questions_correct"`
	Sessions            int                 `bson:"sessions" json:"sessions"`
	ExamsStudied        int                 `bson:"exams_studied" json:"exams_studied"`
	ImprovementRate     float64             `bson:"improvement_rate" json:"improvement_rate"`
	MasteryLevel        MasteryLevel        `bson:"mastery_level" json:"mastery_level"`
	Confidence          float64             `bson:"confidence" json:"confidence"`
	DifficultyBreakdown DifficultyBreakdown `bson:"difficulty_breakdown" json:"difficulty_breakdown"`
	LastStudied         *time.Time          `bson:"last_studied,omitempty" json:"last_studied,omitempty"`
}

type InsightType string

const (
	InsightStrength  InsightType = "strength"
	InsightWeakness  InsightType = "weakness"
	InsightImproving InsightType = "improving"
	InsightDeclining InsightType = "declining"
	InsightStreak    InsightType = "streak"
)

type LearningInsight struct {
	Type        InsightType `bson:"type" json:"type"`
	Title       string      `bson:"title" json:"title"`
	Description string      `bson:"description" json:"description"`
	TopicID     string      `bson:"topic_id,omitempty" json:"topic_id,omitempty"`
	ProviderID  string      `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	Value       float64     `bson:"value" json:"value"`
	Priority    Priority    `bson:"priority" json:"priority"`
}

type PerformanceOverview struct {
	TotalSessions     int        `bson:"total_sessions" json:"total_sessions"`
	CompletedSessions int        `bson:"completed_sessions" json:"completed_sessions"`
	QuestionsAnswered int        `bson:"questions_answered" json:"questions_answered"`
	CorrectAnswers    int        `bson:"correct_answers" json:"correct_answers"`
	OverallAccuracy   float64    `bson:"overall_accuracy" json:"overall_accuracy"`
	StudyMinutes      int        `bson:"study_minutes" json:"study_minutes"`
	AverageScore      float64    `bson:"average_score" json:"average_score"`
	StudyStreakDays   int        `bson:"study_streak_days" json:"study_streak_days"`
	LastStudyDate     *time.Time `bson:"last_study_date,omitempty" json:"last_study_date,omitempty"`
}

// AnalyticsSnapshot caches a user's computed analytics for one calendar day.
type AnalyticsSnapshot struct {
	ID                   string               `bson:"_id" json:"id"`
	UserID               string               `bson:"user_id" json:"user_id"`
	Date                 string               `bson:"date" json:"date"`
	Overview             PerformanceOverview  `bson:"overview" json:"overview"`
	TopicCompetencies    []TopicCompetency    `bson:"topic_competencies" json:"topic_competencies"`
	ProviderCompetencies []ProviderCompetency `bson:"provider_competencies" json:"provider_competencies"`
	Insights             []LearningInsight    `bson:"insights" json:"insights"`
	Recommendations      []string             `bson:"recommendations" json:"recommendations"`
	CreatedAt            time.Time            `bson:"created_at" json:"created_at"`
}

// SnapshotDate is the calendar-day key used for snapshots.
func SnapshotDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SnapshotID builds the snapshot key for a user and day.
func SnapshotID(userID string, t time.Time) string {
	return userID + ":" + SnapshotDate(t)
}
