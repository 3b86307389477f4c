package selection

import "study-service/internal/models"

// QuestionPool is the candidate set for one exam or topic selection
type QuestionPool struct {
	ProviderID string            `json:"provider_id"`
	ExamID     string            `json:"exam_id"`
	TopicIDs   []string          `json:"topic_ids,omitempty"`
	Questions  []models.Question `json:"questions"`
	TotalCount int               `json:"total_count"`
}

// WeightedQuestion represents a question with its selection weight
type WeightedQuestion struct {
	Question models.Question `json:"question"`
	Weight   float64         `json:"weight"`
}

// SelectionCriteria defines criteria for selecting questions
type SelectionCriteria struct {
	Count      int      `json:"count"`
	ExcludeIDs []string `json:"exclude_ids"`

	// Distribution holds target difficulty proportions. Nil means uniform sampling.
	Distribution map[models.Difficulty]float64 `json:"distribution,omitempty"`
}

// SelectionResult contains the selected questions and metadata
type SelectionResult struct {
	Questions       []models.Question         `json:"questions"`
	TotalCandidates int                       `json:"total_candidates"`
	LevelCounts     map[models.Difficulty]int `json:"level_counts"`
}
