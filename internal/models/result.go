package models

import "time"

type AnswerFeedback struct {
	QuestionID    string     `json:"question_id"`
	IsCorrect     bool       `json:"is_correct"`
	UserAnswer    []string   `json:"user_answer"`
	CorrectAnswer []string   `json:"correct_answer"`
	Explanation   string     `json:"explanation,omitempty"`
	PointsEarned  float64    `json:"points_earned"`
	MaxPoints     float64    `json:"max_points"`
	TimeSpent     int        `json:"time_spent"`
	Skipped       bool       `json:"skipped"`
	Difficulty    Difficulty `json:"difficulty"`
	TopicID       string     `json:"topic_id,omitempty"`
	TopicName     string     `json:"topic_name,omitempty"`
}

type SessionProgress struct {
	CurrentQuestion   int     `json:"current_question"`
	TotalQuestions    int     `json:"total_questions"`
	AnsweredQuestions int     `json:"answered_questions"`
	CorrectAnswers    int     `json:"correct_answers"`
	TimeElapsed       int     `json:"time_elapsed"`
	Accuracy          float64 `json:"accuracy"`
}

type NextQuestion struct {
	QuestionID   string     `json:"question_id"`
	Index        int        `json:"index"`
	QuestionText string     `json:"question_text,omitempty"`
	Options      []Option   `json:"options,omitempty"`
	Difficulty   Difficulty `json:"difficulty"`
	TopicID      string     `json:"topic_id,omitempty"`
}

type SubmitAnswerResult struct {
	Success      bool            `json:"success"`
	Feedback     AnswerFeedback  `json:"feedback"`
	Session      *StudySession   `json:"session"`
	Progress     SessionProgress `json:"progress"`
	NextQuestion *NextQuestion   `json:"next_question,omitempty"`
}

type QuestionResult struct {
	QuestionID      string     `json:"question_id"`
	TopicID         string     `json:"topic_id"`
	Difficulty      Difficulty `json:"difficulty"`
	UserAnswer      []string   `json:"user_answer,omitempty"`
	CorrectAnswer   []string   `json:"correct_answer"`
	IsCorrect       bool       `json:"is_correct"`
	Answered        bool       `json:"answered"`
	Skipped         bool       `json:"skipped"`
	MarkedForReview bool       `json:"marked_for_review"`
	PointsEarned    float64    `json:"points_earned"`
	MaxPoints       float64    `json:"max_points"`
	TimeSpent       int        `json:"time_spent"`
}

type DifficultyPerformance struct {
	Difficulty        Difficulty `json:"difficulty"`
	QuestionsTotal    int        `json:"questions_total"`
	QuestionsAnswered int        `json:"questions_answered"`
	QuestionsCorrect  int        `json:"questions_correct"`
	Accuracy          float64    `json:"accuracy"`
	AverageTime       float64    `json:"average_time"`
	Points            float64    `json:"points"`
}

type TimeDistribution struct {
	Fast       int `json:"fast"`
	Normal     int `json:"normal"`
	Slow       int `json:"slow"`
	Unanswered int `json:"unanswered"`
}

type DetailedSessionResults struct {
	SessionID           string                      `json:"session_id"`
	Score               float64                     `json:"score"`
	MaxScore            float64                     `json:"max_score"`
	ScorePercentage     float64                     `json:"score_percentage"`
	PassingScore        float64                     `json:"passing_score"`
	Passed              bool                        `json:"passed"`
	TotalQuestions      int                         `json:"total_questions"`
	AnsweredQuestions   int                         `json:"answered_questions"`
	CorrectAnswers      int                         `json:"correct_answers"`
	SkippedQuestions    int                         `json:"skipped_questions"`
	Accuracy            float64                     `json:"accuracy"`
	TotalTime           int                         `json:"total_time"`
	AverageTime         float64                     `json:"average_time"`
	Questions           []QuestionResult            `json:"questions"`
	DifficultyBreakdown []DifficultyPerformance     `json:"difficulty_breakdown"`
	TopicBreakdown      []SessionTopicAnalyticsData `json:"topic_breakdown"`
	TimeDistribution    TimeDistribution            `json:"time_distribution"`
	CompletedAt         *time.Time                  `json:"completed_at,omitempty"`
}

type PerformanceTier string

const (
	TierExcellent            PerformanceTier = "excellent"
	TierGood                 PerformanceTier = "good"
	TierNeedsImprovement     PerformanceTier = "needs_improvement"
	TierRequiresFocusedStudy PerformanceTier = "requires_focused_study"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type FocusArea struct {
	TopicID        string   `json:"topic_id"`
	TopicName      string   `json:"topic_name"`
	Accuracy       float64  `json:"accuracy"`
	TargetAccuracy float64  `json:"target_accuracy"`
	Gap            float64  `json:"gap"`
	Priority       Priority `json:"priority"`
}

type StudyRecommendations struct {
	OverallPerformance PerformanceTier `json:"overall_performance"`
	ReadyForExam       bool            `json:"ready_for_exam"`
	FocusAreas         []FocusArea     `json:"focus_areas"`
	NextSteps          []string        `json:"next_steps"`
}

type CompleteSessionResult struct {
	Session         *StudySession          `json:"session"`
	Results         DetailedSessionResults `json:"results"`
	Recommendations StudyRecommendations   `json:"recommendations"`
}
