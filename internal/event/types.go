package event

import "study-service/internal/models"

const (
	EventTypeSessionCreated         = "session.created"
	EventTypeSessionAnswerSubmitted = "session.answer_submitted"
	EventTypeSessionCompleted       = "session.completed"
	EventTypeSessionPaused          = "session.paused"
	EventTypeSessionResumed         = "session.resumed"
	EventTypeSessionAbandoned       = "session.abandoned"

	EventTypeDatasetImported = "dataset.imported"
)

type SessionEvent struct {
	EventType      string               `json:"eventType"`
	SessionID      string               `json:"sessionId"`
	UserID         string               `json:"userId,omitempty"`
	ProviderID     string               `json:"providerId"`
	ExamID         string               `json:"examId"`
	Status         models.SessionStatus `json:"status"`
	Timestamp      int64                `json:"timestamp"`
	QuestionID     string               `json:"questionId,omitempty"`
	IsCorrect      *bool                `json:"isCorrect,omitempty"`
	PointsEarned   float64              `json:"pointsEarned,omitempty"`
	CorrectAnswers int                  `json:"correctAnswers"`
	TotalQuestions int                  `json:"totalQuestions"`
	Score          *float64             `json:"score,omitempty"`
	Passed         *bool                `json:"passed,omitempty"`
}

type DatasetEvent struct {
	EventType  string `json:"eventType"`
	ProviderID string `json:"providerId"`
	ExamID     string `json:"examId"`
	Objects    int    `json:"objects"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	Topics     int    `json:"topics"`
	Timestamp  int64  `json:"timestamp"`
}

// NewSessionEvent fills the common session fields.
func NewSessionEvent(eventType string, s *models.StudySession, timestamp int64) *SessionEvent {
	return &SessionEvent{
		EventType:      eventType,
		SessionID:      s.ID,
		UserID:         s.UserID,
		ProviderID:     s.ProviderID,
		ExamID:         s.ExamID,
		Status:         s.Status,
		Timestamp:      timestamp,
		CorrectAnswers: s.CorrectAnswers,
		TotalQuestions: s.TotalQuestions,
		Score:          s.Score,
		Passed:         s.Passed,
	}
}
