package models

import "time"

type Provider struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type Exam struct {
	ID              string    `bson:"_id" json:"id"`
	ProviderID      string    `bson:"provider_id" json:"provider_id"`
	Code            string    `bson:"code" json:"code"`
	Name            string    `bson:"name" json:"name"`
	PassingScore    float64   `bson:"passing_score" json:"passing_score"`
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
	TotalQuestions  int       `bson:"total_questions" json:"total_questions"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

type Topic struct {
	ID          string    `bson:"_id" json:"id"`
	ProviderID  string    `bson:"provider_id" json:"provider_id"`
	ExamID      string    `bson:"exam_id" json:"exam_id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type CatalogFilter struct {
	ProviderID string
	ExamID     string
	Page       int
	Limit      int
}
