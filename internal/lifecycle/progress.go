// Package lifecycle holds the pure parts of a study session's life: state
// transitions, live progress, final results and study recommendations.
package lifecycle

import (
	"time"

	"study-service/internal/apperr"
	"study-service/internal/models"
	"study-service/internal/scoring"
)

var transitions = map[models.SessionStatus][]models.SessionStatus{
	models.SessionActive: {models.SessionPaused, models.SessionCompleted, models.SessionAbandoned},
	models.SessionPaused: {models.SessionActive, models.SessionCompleted, models.SessionAbandoned},
}

// CheckTransition returns an InvalidState error when from cannot move to to.
func CheckTransition(from, to models.SessionStatus) error {
	if from.Terminal() {
		if from == models.SessionCompleted && to == models.SessionCompleted {
			return apperr.InvalidState("session already completed")
		}
		return apperr.InvalidState("session is %s", from)
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return apperr.InvalidState("cannot move session from %s to %s", from, to)
}

// CalculateProgress computes live progress. It never divides by zero.
func CalculateProgress(s *models.StudySession, now time.Time) models.SessionProgress {
	progress := models.SessionProgress{
		TotalQuestions: len(s.Questions),
		CorrectAnswers: s.CorrectAnswers,
	}

	current := s.CurrentQuestionIndex + 1
	if current > progress.TotalQuestions && progress.TotalQuestions > 0 {
		current = progress.TotalQuestions
	}
	progress.CurrentQuestion = current

	for _, q := range s.Questions {
		if q.Answered() {
			progress.AnsweredQuestions++
		}
	}

	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if !s.StartTime.IsZero() && end.After(s.StartTime) {
		progress.TimeElapsed = int(end.Sub(s.StartTime).Seconds())
	}

	progress.Accuracy = scoring.SafePercent(float64(s.CorrectAnswers), float64(progress.AnsweredQuestions))
	return progress
}

// CountCorrect is the number of questions whose isCorrect is true.
func CountCorrect(questions []models.SessionQuestion) int {
	n := 0
	for _, q := range questions {
		if q.Correct() {
			n++
		}
	}
	return n
}

// NextUnanswered returns the first unanswered question after index from,
// wrapping around, or -1 when every question has an answer.
func NextUnanswered(s *models.StudySession, from int) int {
	n := len(s.Questions)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if !s.Questions[i].Answered() {
			return i
		}
	}
	return -1
}
