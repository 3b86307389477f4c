package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"study-service/internal/analytics"
	"study-service/internal/apperr"
	"study-service/internal/logger"
	"study-service/internal/models"
)

type CreateGoalRequest struct {
	Title       string          `json:"title"`
	Type        models.GoalType `json:"type"`
	TargetValue float64         `json:"target_value"`
	ProviderID  string          `json:"provider_id"`
	ExamID      string          `json:"exam_id"`
	TopicID     string          `json:"topic_id"`
	Deadline    *time.Time      `json:"deadline"`
}

type GoalService struct {
	goals     GoalStore
	analytics *AnalyticsService
	log       *logger.Logger
	now       func() time.Time
}

func NewGoalService(goals GoalStore, analyticsService *AnalyticsService, log *logger.Logger) *GoalService {
	if log == nil {
		log = logger.Nop()
	}
	return &GoalService{goals: goals, analytics: analyticsService, log: log, now: time.Now}
}

func (s *GoalService) CreateGoal(ctx context.Context, userID string, req CreateGoalRequest) (*models.Goal, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if !req.Type.Valid() {
		return nil, apperr.Validation("unknown goal type %q", req.Type)
	}
	if req.TargetValue <= 0 {
		return nil, apperr.Validation("target_value must be positive")
	}
	if req.Type == models.GoalAccuracy && req.TargetValue > 100 {
		return nil, apperr.Validation("accuracy target must not exceed 100")
	}

	now := s.now()
	if req.Deadline != nil && req.Deadline.Before(now) {
		return nil, apperr.Validation("deadline must be in the future")
	}

	goal := &models.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Type:        req.Type,
		TargetValue: req.TargetValue,
		ProviderID:  req.ProviderID,
		ExamID:      req.ExamID,
		TopicID:     req.TopicID,
		Deadline:    req.Deadline,
		Status:      models.GoalActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) GetGoal(ctx context.Context, userID, id string) (*models.Goal, error) {
	goal, err := s.goals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal == nil || goal.UserID != userID {
		return nil, apperr.NotFound("goal %s not found", id)
	}
	return goal, nil
}

func (s *GoalService) ListGoals(ctx context.Context, userID string, status models.GoalStatus) ([]models.Goal, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("unknown goal status %q", status)
	}
	return s.goals.FindByUser(ctx, userID, status)
}

// GetProgress evaluates the goal against the user's sessions. An active goal
// that has been reached is marked achieved.
func (s *GoalService) GetProgress(ctx context.Context, userID, id string) (*models.GoalProgress, error) {
	goal, err := s.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	data, err := s.analytics.sessionData(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := analytics.EvaluateGoal(*goal, data, s.now())
	if progress.Achieved && goal.Status == models.GoalActive {
		err := s.goals.UpdateStatus(ctx, goal.ID, models.GoalActive, models.GoalAchieved)
		switch {
		case err == nil:
			s.log.Info("Goal achieved", "goal_id", goal.ID, "user_id", userID)
		case apperr.IsKind(err, apperr.KindConflict):
			s.log.Debug("Goal status changed concurrently", "goal_id", goal.ID)
		default:
			s.log.Warn("Failed to mark goal achieved", "goal_id", goal.ID, "error", err)
		}
	}
	return &progress, nil
}

func (s *GoalService) UpdateStatus(ctx context.Context, userID, id string, status models.GoalStatus) (*models.Goal, error) {
	if !status.Valid() {
		return nil, apperr.Validation("unknown goal status %q", status)
	}
	goal, err := s.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if goal.Status == status {
		return goal, nil
	}
	if goal.Status != models.GoalActive {
		return nil, apperr.InvalidState("goal is already %s", goal.Status)
	}

	if err := s.goals.UpdateStatus(ctx, id, goal.Status, status); err != nil {
		return nil, err
	}
	goal.Status = status
	goal.UpdatedAt = s.now()
	return goal, nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, userID, id string) error {
	if _, err := s.GetGoal(ctx, userID, id); err != nil {
		return err
	}
	return s.goals.Delete(ctx, id)
}
