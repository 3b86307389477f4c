package selection

import (
	"context"
	"fmt"

	"study-service/internal/models"
)

// QuestionSource lists questions matching a filter
type QuestionSource interface {
	FindAll(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)
}

// PoolManager manages question pools and selection
type PoolManager struct {
	questions QuestionSource
	selector  *WeightedSelector
}

// NewPoolManager creates a new pool manager
func NewPoolManager(questions QuestionSource, selector *WeightedSelector) *PoolManager {
	if selector == nil {
		selector = NewWeightedSelector()
	}
	return &PoolManager{
		questions: questions,
		selector:  selector,
	}
}

// GetPool retrieves every question of an exam, optionally narrowed to topics
func (pm *PoolManager) GetPool(ctx context.Context, providerID, examID string, topicIDs []string) (*QuestionPool, error) {
	questions, err := pm.questions.FindAll(ctx, models.QuestionFilter{
		ProviderID: providerID,
		ExamID:     examID,
		TopicIDs:   topicIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return &QuestionPool{
		ProviderID: providerID,
		ExamID:     examID,
		TopicIDs:   topicIDs,
		Questions:  questions,
		TotalCount: len(questions),
	}, nil
}

// SelectSessionQuestions selects the question set for a new session. Adaptive
// sessions follow cfg's difficulty distribution; others sample uniformly.
func (pm *PoolManager) SelectSessionQuestions(
	pool *QuestionPool,
	count int,
	adaptive bool,
	cfg models.AdaptiveSessionConfig,
) *SelectionResult {
	criteria := &SelectionCriteria{Count: count}
	if adaptive {
		criteria.Distribution = cfg.Distribution()
	}
	return pm.selector.SelectQuestions(pool.Questions, criteria)
}

// GetDifficultyDistribution counts pool questions per difficulty
func (pm *PoolManager) GetDifficultyDistribution(pool *QuestionPool) map[models.Difficulty]int {
	counts := map[models.Difficulty]int{
		models.DifficultyEasy:   0,
		models.DifficultyMedium: 0,
		models.DifficultyHard:   0,
	}
	for _, q := range pool.Questions {
		counts[models.ParseDifficulty(string(q.Difficulty))]++
	}
	return counts
}
