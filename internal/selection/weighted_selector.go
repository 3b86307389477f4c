package selection

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"study-service/internal/models"
)

// WeightedSelector handles weighted random selection of questions. It is safe
// for concurrent use; rand is only touched with mu held.
type WeightedSelector struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewWeightedSelector creates a new weighted selector
func NewWeightedSelector() *WeightedSelector {
	return NewWeightedSelectorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWeightedSelectorWithRand uses the given source, for reproducible selection
func NewWeightedSelectorWithRand(r *rand.Rand) *WeightedSelector {
	return &WeightedSelector{rand: r}
}

// SelectQuestions picks criteria.Count questions from the pool. When the pool
// holds fewer candidates than requested, all of them are returned.
func (s *WeightedSelector) SelectQuestions(questions []models.Question, criteria *SelectionCriteria) *SelectionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	weighted := s.calculateWeights(questions, criteria)

	result := &SelectionResult{
		Questions:       []models.Question{},
		TotalCandidates: len(weighted),
		LevelCounts:     map[models.Difficulty]int{},
	}
	if len(weighted) == 0 || criteria.Count <= 0 {
		return result
	}

	var selected []WeightedQuestion
	if len(weighted) <= criteria.Count {
		selected = weighted
	} else if len(criteria.Distribution) > 0 {
		groups := s.groupByDifficulty(weighted)
		selected = s.selectWithDistribution(groups, criteria.Distribution, criteria.Count)
	} else {
		selected = s.weightedRandomSelect(weighted, criteria.Count)
	}

	s.rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	result.Questions = make([]models.Question, len(selected))
	for i, wq := range selected {
		result.Questions[i] = wq.Question
		result.LevelCounts[models.ParseDifficulty(string(wq.Question.Difficulty))]++
	}
	return result
}

// calculateWeights drops excluded questions and weights the rest by how much
// their difficulty is wanted.
func (s *WeightedSelector) calculateWeights(questions []models.Question, criteria *SelectionCriteria) []WeightedQuestion {
	excluded := make(map[string]bool, len(criteria.ExcludeIDs))
	for _, id := range criteria.ExcludeIDs {
		excluded[id] = true
	}

	weighted := make([]WeightedQuestion, 0, len(questions))
	for _, q := range questions {
		if excluded[q.ID] {
			continue
		}
		weighted = append(weighted, WeightedQuestion{
			Question: q,
			Weight:   s.getDifficultyWeight(q.Difficulty, criteria.Distribution),
		})
	}
	return weighted
}

// getDifficultyWeight scales a target proportion into the 0.1 to 2.0 range
func (s *WeightedSelector) getDifficultyWeight(d models.Difficulty, distribution map[models.Difficulty]float64) float64 {
	if len(distribution) == 0 {
		return 1.0
	}
	if weight, ok := distribution[models.ParseDifficulty(string(d))]; ok {
		return 0.1 + (weight * 1.9)
	}
	return 0.1
}

func (s *WeightedSelector) groupByDifficulty(questions []WeightedQuestion) map[models.Difficulty][]WeightedQuestion {
	groups := make(map[models.Difficulty][]WeightedQuestion)
	for _, q := range questions {
		level := models.ParseDifficulty(string(q.Question.Difficulty))
		groups[level] = append(groups[level], q)
	}
	return groups
}

// selectWithDistribution selects per tier following the target distribution,
// then fills any shortfall from whatever is left.
func (s *WeightedSelector) selectWithDistribution(
	groups map[models.Difficulty][]WeightedQuestion,
	distribution map[models.Difficulty]float64,
	totalCount int,
) []WeightedQuestion {
	selected := make([]WeightedQuestion, 0, totalCount)
	levelCounts := calculateLevelCounts(distribution, totalCount)

	for _, level := range models.Difficulties {
		count := levelCounts[level]
		levelQuestions := groups[level]
		if count <= 0 || len(levelQuestions) == 0 {
			continue
		}
		selected = append(selected, s.weightedRandomSelect(levelQuestions, min(count, len(levelQuestions)))...)
	}

	if len(selected) < totalCount {
		remaining := getAllRemainingQuestions(groups, selected)
		if len(remaining) > 0 {
			selected = append(selected, s.weightedRandomSelect(remaining, totalCount-len(selected))...)
		}
	}
	return selected
}

// calculateLevelCounts determines how many questions to take from each tier.
// Rounding drift is absorbed by the tier with the largest share.
func calculateLevelCounts(distribution map[models.Difficulty]float64, total int) map[models.Difficulty]int {
	counts := make(map[models.Difficulty]int)
	allocated := 0
	sum := 0.0
	for _, level := range models.Difficulties {
		if p := distribution[level]; p > 0 {
			sum += p
		}
	}
	if sum <= 0 {
		return counts
	}

	maxLevel := models.Difficulty("")
	maxPercentage := 0.0
	for _, level := range models.Difficulties {
		percentage := distribution[level]
		if percentage <= 0 {
			continue
		}
		count := int(math.Round(percentage / sum * float64(total)))
		counts[level] = count
		allocated += count
		if percentage > maxPercentage {
			maxPercentage = percentage
			maxLevel = level
		}
	}

	if allocated != total && maxLevel != "" {
		counts[maxLevel] += total - allocated
		if counts[maxLevel] < 0 {
			counts[maxLevel] = 0
		}
	}
	return counts
}

// weightedRandomSelect performs weighted random selection without replacement
func (s *WeightedSelector) weightedRandomSelect(weighted []WeightedQuestion, count int) []WeightedQuestion {
	if len(weighted) <= count {
		return append([]WeightedQuestion{}, weighted...)
	}

	selected := make([]WeightedQuestion, 0, count)
	remaining := make([]WeightedQuestion, len(weighted))
	copy(remaining, weighted)

	for i := 0; i < count && len(remaining) > 0; i++ {
		totalWeight := 0.0
		for _, wq := range remaining {
			totalWeight += wq.Weight
		}

		idx := len(remaining) - 1
		if totalWeight == 0 {
			idx = s.rand.Intn(len(remaining))
		} else {
			r := s.rand.Float64() * totalWeight
			cumulative := 0.0
			for j, wq := range remaining {
				cumulative += wq.Weight
				if r <= cumulative {
					idx = j
					break
				}
			}
		}

		selected = append(selected, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	return selected
}

func getAllRemainingQuestions(groups map[models.Difficulty][]WeightedQuestion, selected []WeightedQuestion) []WeightedQuestion {
	selectedIDs := make(map[string]bool, len(selected))
	for _, q := range selected {
		selectedIDs[q.Question.ID] = true
	}

	var remaining []WeightedQuestion
	for _, level := range models.Difficulties {
		for _, q := range groups[level] {
			if !selectedIDs[q.Question.ID] {
				remaining = append(remaining, q)
			}
		}
	}
	return remaining
}
