package models

import (
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers from easiest to hardest.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty normalizes a stored difficulty, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

type Option struct {
	Letter string `bson:"letter" json:"letter"`
	Text   string `bson:"text" json:"text"`
}

type Question struct {
	ID            string     `bson:"_id" json:"id"`
	ProviderID    string     `bson:"provider_id" json:"provider_id"`
	ExamID        string     `bson:"exam_id" json:"exam_id"`
	TopicID       string     `bson:"topic_id" json:"topic_id"`
	Number        int        `bson:"number" json:"number"`
	QuestionText  string     `bson:"question_text" json:"question_text"`
	Options       []Option   `bson:"options" json:"options"`
	CorrectAnswer []string   `bson:"correct_answer" json:"correct_answer"`
	Explanation   string     `bson:"explanation" json:"explanation"`
	Difficulty    Difficulty `bson:"difficulty" json:"difficulty"`
	Tags          []string   `bson:"tags" json:"tags"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
}

type QuestionFilter struct {
	ProviderID string
	ExamID     string
	TopicIDs   []string
	Difficulty Difficulty
	Search     string
	Page       int
	Limit      int
}
