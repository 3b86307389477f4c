package models

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether no further transition is allowed.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// SessionQuestion is one selected question inside a session. CorrectAnswer,
// TopicID and Difficulty are copied from the question bank at creation time
// and are authoritative for this session.
type SessionQuestion struct {
	QuestionID      string     `bson:"question_id" json:"question_id"`
	TopicID         string     `bson:"topic_id" json:"topic_id"`
	Difficulty      Difficulty `bson:"difficulty" json:"difficulty"`
	UserAnswer      []string   `bson:"user_answer" json:"user_answer,omitempty"`
	CorrectAnswer   []string   `bson:"correct_answer" json:"correct_answer"`
	IsCorrect       *bool      `bson:"is_correct,omitempty" json:"is_correct,omitempty"`
	PointsEarned    float64    `bson:"points_earned" json:"points_earned"`
	TimeSpent       int        `bson:"time_spent" json:"time_spent"`
	Skipped         bool       `bson:"skipped" json:"skipped"`
	MarkedForReview bool       `bson:"marked_for_review" json:"marked_for_review"`
	AnsweredAt      *time.Time `bson:"answered_at,omitempty" json:"answered_at,omitempty"`
}

// Answered reports whether an answer (possibly a skip) has been recorded.
func (q SessionQuestion) Answered() bool {
	return q.UserAnswer != nil
}

// Correct reports isCorrect == true.
func (q SessionQuestion) Correct() bool {
	return q.IsCorrect != nil && *q.IsCorrect
}

type StudySession struct {
	ID                   string            `bson:"_id" json:"id"`
	UserID               string            `bson:"user_id,omitempty" json:"user_id,omitempty"`
	ExamID               string            `bson:"exam_id" json:"exam_id"`
	ProviderID           string            `bson:"provider_id" json:"provider_id"`
	StartTime            time.Time         `bson:"start_time" json:"start_time"`
	EndTime              *time.Time        `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Status               SessionStatus     `bson:"status" json:"status"`
	IsAdaptive           bool              `bson:"is_adaptive" json:"is_adaptive"`
	CurrentQuestionIndex int               `bson:"current_question_index" json:"current_question_index"`
	TotalQuestions       int               `bson:"total_questions" json:"total_questions"`
	CorrectAnswers       int               `bson:"correct_answers" json:"correct_answers"`
	Score                *float64          `bson:"score,omitempty" json:"score,omitempty"`
	MaxScore             float64           `bson:"max_score" json:"max_score"`
	PassingScore         *float64          `bson:"passing_score,omitempty" json:"passing_score,omitempty"`
	Passed               *bool             `bson:"passed,omitempty" json:"passed,omitempty"`
	Questions            []SessionQuestion `bson:"questions" json:"questions"`
	Version              int64             `bson:"version" json:"version"`
	CreatedAt            time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time         `bson:"updated_at" json:"updated_at"`
}

// QuestionIndex returns the position of questionID, or -1.
func (s *StudySession) QuestionIndex(questionID string) int {
	for i := range s.Questions {
		if s.Questions[i].QuestionID == questionID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so a mutation can be computed without touching
// the caller's value.
func (s *StudySession) Clone() *StudySession {
	if s == nil {
		return nil
	}
	c := *s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	c.Score = cloneFloat(s.Score)
	c.PassingScore = cloneFloat(s.PassingScore)
	if s.Passed != nil {
		p := *s.Passed
		c.Passed = &p
	}
	if s.Questions != nil {
		c.Questions = make([]SessionQuestion, len(s.Questions))
		for i, q := range s.Questions {
			c.Questions[i] = q.clone()
		}
	}
	return &c
}

func (q SessionQuestion) clone() SessionQuestion {
	c := q
	if q.UserAnswer != nil {
		c.UserAnswer = append([]string{}, q.UserAnswer...)
	}
	if q.CorrectAnswer != nil {
		c.CorrectAnswer = append([]string{}, q.CorrectAnswer...)
	}
	if q.IsCorrect != nil {
		v := *q.IsCorrect
		c.IsCorrect = &v
	}
	if q.AnsweredAt != nil {
		t := *q.AnsweredAt
		c.AnsweredAt = &t
	}
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

type SessionFilter struct {
	Status     SessionStatus
	ProviderID string
	ExamID     string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

// AdaptiveSessionConfig is the target share of each difficulty tier.
type AdaptiveSessionConfig struct {
	Easy   float64 `json:"easy"`
	Medium float64 `json:"medium"`
	Hard   float64 `json:"hard"`
}

// Distribution returns the proportions keyed by difficulty.
func (c AdaptiveSessionConfig) Distribution() map[Difficulty]float64 {
	return map[Difficulty]float64{
		DifficultyEasy:   c.Easy,
		DifficultyMedium: c.Medium,
		DifficultyHard:   c.Hard,
	}
}

func DefaultAdaptiveSessionConfig() AdaptiveSessionConfig {
	return AdaptiveSessionConfig{Easy: 0.3, Medium: 0.5, Hard: 0.2}
}
