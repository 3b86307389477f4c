package models

import "time"

type GoalType string

const (
	GoalAccuracy          GoalType = "accuracy"
	GoalQuestionsAnswered GoalType = "questions_answered"
	GoalStudyTime         GoalType = "study_time"
	GoalSessionCount      GoalType = "session_count"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalAccuracy, GoalQuestionsAnswered, GoalStudyTime, GoalSessionCount:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalAchieved  GoalStatus = "achieved"
	GoalAbandoned GoalStatus = "abandoned"
)

func (s GoalStatus) Valid() bool {
	return s == GoalActive || s == GoalAchieved || s == GoalAbandoned
}

type Goal struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"user_id" json:"user_id"`
	Title       string     `bson:"title" json:"title"`
	Type        GoalType   `bson:"type" json:"type"`
	TargetValue float64    `bson:"target_value" json:"target_value"`
	ProviderID  string     `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	ExamID      string     `bson:"exam_id,omitempty" json:"exam_id,omitempty"`
	TopicID     string     `bson:"topic_id,omitempty" json:"topic_id,omitempty"`
	Deadline    *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Status      GoalStatus `bson:"status" json:"status"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

type GoalProgress struct {
	GoalID       string  `json:"goal_id"`
	CurrentValue float64 `json:"current_value"`
	TargetValue  float64 `json:"target_value"`
	Percentage   float64 `json:"percentage"`
	Achieved     bool    `json:"achieved"`
	Remaining    float64 `json:"remaining"`
	DaysLeft     *int    `json:"days_left,omitempty"`
}
